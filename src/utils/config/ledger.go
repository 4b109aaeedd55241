package config

import (
	"github.com/spf13/viper"
)

type Ledger struct {
	// Directory of the badger database holding accounts. Ignored when InMemory is set
	Path string

	// Keep all accounts in memory, nothing survives a restart
	InMemory bool

	// Fsync every commit
	SyncWrites bool

	// Rent parameters used to compute the rent exempt minimum of new records
	LamportsPerByteYear uint64
	ExemptionThreshold  float64

	// Size of the channel receipts are sent to after each executed transaction
	OutputBufferSize int
}

func setLedgerDefaults() {
	viper.SetDefault("Ledger.Path", "data/ledger")
	viper.SetDefault("Ledger.InMemory", "false")
	viper.SetDefault("Ledger.SyncWrites", "true")
	viper.SetDefault("Ledger.LamportsPerByteYear", "3480")
	viper.SetDefault("Ledger.ExemptionThreshold", "2.0")
	viper.SetDefault("Ledger.OutputBufferSize", "100")
}
