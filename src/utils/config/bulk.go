package config

import (
	"time"

	"github.com/spf13/viper"
)

type Bulk struct {
	// Number of entries processed at the same time
	WorkerPoolSize int

	// Max number of entries waiting in the worker's queue
	WorkerQueueSize int

	// Pause after an entry finishes, before the next one starts
	PauseBetweenEntries time.Duration

	// How often progress of running batches is logged. Zero disables it.
	ReportInterval time.Duration
}

func setBulkDefaults() {
	viper.SetDefault("Bulk.WorkerPoolSize", "1")
	viper.SetDefault("Bulk.WorkerQueueSize", "1000")
	viper.SetDefault("Bulk.PauseBetweenEntries", "500ms")
	viper.SetDefault("Bulk.ReportInterval", "10s")
}
