package config

import (
	"github.com/spf13/viper"
)

// Secrets used to authorize calls to the backend. Never logged.
type Credentials struct {
	// Institution API key, sent as x-api-key. Empty means the first active key of the account is used.
	ApiKey string

	// Session token, sent as Authorization: Bearer
	BearerToken string
}

func setCredentialsDefaults() {
	viper.SetDefault("Credentials.ApiKey", "")
	viper.SetDefault("Credentials.BearerToken", "")
}
