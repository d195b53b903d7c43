package config

import (
	"time"

	"github.com/spf13/viper"
)

// Local sqlite journal of issued credentials
type Journal struct {
	Enabled bool

	// Path to the sqlite file
	Path string

	// Busy database retry configuration, 0 is no limit
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration
}

func setJournalDefaults() {
	viper.SetDefault("Journal.Enabled", "false")
	viper.SetDefault("Journal.Path", "issuer-journal.db")
	viper.SetDefault("Journal.MaxElapsedTime", "10s")
	viper.SetDefault("Journal.MaxInterval", "1s")
}
