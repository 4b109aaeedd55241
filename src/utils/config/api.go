package config

import (
	"time"

	"github.com/spf13/viper"
)

type Api struct {
	// How long decoded projects are served from cache
	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration

	// Max time a single request may take
	RequestTimeout time.Duration

	// Submitted transactions per second allowed for a single client, burst on top of it
	RateLimit      float64
	RateLimitBurst int
}

func setApiDefaults() {
	viper.SetDefault("Api.CacheTTL", "5s")
	viper.SetDefault("Api.CacheCleanupInterval", "1m")
	viper.SetDefault("Api.RequestTimeout", "30s")
	viper.SetDefault("Api.RateLimit", "20")
	viper.SetDefault("Api.RateLimitBurst", "40")
}
