// internal/workers/ai-copy/generate-product-vibe/config.go
package generateproductvibe

import (
	"time"

	"deal-hunter/internal/common/config"
)

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	timeout := config.GetDuration(cfg.GenAI.Timeout)
	if jobTimeout := config.GetDuration(wcfg.Timeout); jobTimeout > 0 && jobTimeout < timeout {
		timeout = jobTimeout
	}
	return &Config{
		Timeout:  timeout,
		CacheTTL: time.Duration(cfg.GenAI.CacheTTL) * time.Second,
	}
}
