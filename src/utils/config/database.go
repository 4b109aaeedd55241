package config

import (
	"time"

	"github.com/spf13/viper"
)

type Database struct {
	// postgres or sqlite
	Driver string

	Port     uint16
	Host     string
	User     string
	Password string
	Name     string
	SslMode  string

	// Sqlite file, ":memory:" keeps the index in memory
	Path string

	PingTimeout time.Duration

	// Connection pool
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration

	// Migrations are skipped if those aren't set
	MigrationUser     string
	MigrationPassword string
}

func setDatabaseDefaults() {
	viper.SetDefault("Database.Driver", "postgres")
	viper.SetDefault("Database.Port", "5432")
	viper.SetDefault("Database.Host", "127.0.0.1")
	viper.SetDefault("Database.User", "postgres")
	viper.SetDefault("Database.Password", "postgres")
	viper.SetDefault("Database.Name", "crowdfund")
	viper.SetDefault("Database.SslMode", "disable")
	viper.SetDefault("Database.Path", "data/index.db")
	viper.SetDefault("Database.PingTimeout", "15s")
	viper.SetDefault("Database.MaxOpenConns", "50")
	viper.SetDefault("Database.MaxIdleConns", "10")
	viper.SetDefault("Database.ConnMaxIdleTime", "10m")
	viper.SetDefault("Database.ConnMaxLifetime", "2h")
	viper.SetDefault("Database.MigrationUser", "postgres")
	viper.SetDefault("Database.MigrationPassword", "postgres")
}
