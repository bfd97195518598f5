// internal/workers/product/search-product/config.go
package searchproduct

import (
	"time"

	"deal-hunter/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	CleanupTimeout time.Duration
	DefaultSort    SortStrategy
	Market         config.MarketConfig
	MaxUploadBytes int64
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:        config.GetDuration(wcfg.Timeout),
		CleanupTimeout: 5 * time.Second,
		DefaultSort:    SortTrustDescending,
		Market:         cfg.Market,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}
}
