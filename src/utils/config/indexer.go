package config

import (
	"time"

	"github.com/spf13/viper"
)

type Indexer struct {
	// Save receipts to the SQL database
	Enabled bool

	// Number of decoded receipts that triggers a flush
	BatchSize int

	// Flush is triggered at least this often
	FlushInterval time.Duration

	// Retrying failed flushes. 0 is no limit
	MaxElapsedTime time.Duration
	MaxInterval    time.Duration
}

func setIndexerDefaults() {
	viper.SetDefault("Indexer.Enabled", "true")
	viper.SetDefault("Indexer.BatchSize", "100")
	viper.SetDefault("Indexer.FlushInterval", "1s")
	viper.SetDefault("Indexer.MaxElapsedTime", "5m")
	viper.SetDefault("Indexer.MaxInterval", "15s")
}
