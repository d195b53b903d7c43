package backend

import "github.com/skillchain/issuer/src/utils/config"

// Explicit authorization passed into every call
type Credentials struct {
	ApiKey      string
	BearerToken string
}

func CredentialsFromConfig(config *config.Credentials) Credentials {
	return Credentials{
		ApiKey:      config.ApiKey,
		BearerToken: config.BearerToken,
	}
}

func (self Credentials) WithApiKey(apiKey string) Credentials {
	self.ApiKey = apiKey
	return self
}

func (self Credentials) HasApiKey() bool {
	return self.ApiKey != ""
}
