// internal/workers/product/extract-page-image/config.go
package extractpageimage

import (
	"time"

	"deal-hunter/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	CacheTTL      time.Duration
	MinImageWidth int
	HintTokens    []string
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:       config.GetDuration(wcfg.Timeout),
		CacheTTL:      time.Duration(cfg.Scraper.CacheTTL) * time.Second,
		MinImageWidth: cfg.Scraper.MinImageWidth,
		HintTokens:    cfg.Scraper.HintTokens,
	}
}
