package config

import (
	"time"

	"github.com/spf13/viper"
)

// Remote REST API that stores users, credentials and talks to the chain
type Backend struct {
	// Base url of the API, without trailing slash
	Url string

	// Time limit for requests. The timeout includes connection time, any
	// redirects, and reading the response body
	RequestTimeout time.Duration

	// Maximum amount of time a dial will wait for a connect to complete.
	DialerTimeout time.Duration

	// Interval between keep-alive probes for an active network connection.
	DialerKeepAlive time.Duration

	// Maximum amount of time an idle (keep-alive) connection will remain idle before closing itself.
	IdleConnTimeout time.Duration

	// Maximum amount of time waiting to wait for a TLS handshake
	TLSHandshakeTimeout time.Duration

	// Number of retries upon 5xx responses. 0 disables retrying.
	RetryCount int

	// Time in which max num of requests is enforced
	LimiterInterval time.Duration

	// Max num requests to particular host per interval
	LimiterBurstSize int
}

func setBackendDefaults() {
	viper.SetDefault("Backend.Url", "http://localhost:8000")
	viper.SetDefault("Backend.RequestTimeout", "30s")
	viper.SetDefault("Backend.DialerTimeout", "30s")
	viper.SetDefault("Backend.DialerKeepAlive", "15s")
	viper.SetDefault("Backend.IdleConnTimeout", "31s")
	viper.SetDefault("Backend.TLSHandshakeTimeout", "10s")
	viper.SetDefault("Backend.RetryCount", "0")
	viper.SetDefault("Backend.LimiterInterval", "100ms")
	viper.SetDefault("Backend.LimiterBurstSize", "20")
}
