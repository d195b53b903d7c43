package config

import (
	"github.com/spf13/viper"
)

type Monitor struct {
	// Is the REST server with counters started
	Enabled bool

	// Consecutive failed bulk entries after which /v1/health reports 503. 0 disables the check
	MaxConsecutiveFailures int64
}

func setMonitorDefaults() {
	viper.SetDefault("Monitor.Enabled", "false")
	viper.SetDefault("Monitor.MaxConsecutiveFailures", "0")
}
