// internal/workers/deals/refresh-daily-deals/config.go
package refreshdailydeals

import (
	"time"

	"deal-hunter/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	Query        string
	GoogleDomain string
	Language     string
	Limit        int
	Currency     string
	TopicARN     string
}

func LoadConfig(cfg *config.Config) *Config {
	wcfg := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:      config.GetDuration(wcfg.Timeout),
		Query:        cfg.Deals.Query,
		GoogleDomain: cfg.Deals.GoogleDomain,
		Language:     cfg.Deals.Language,
		Limit:        cfg.Deals.Limit,
		Currency:     cfg.Market.CurrencyCode,
		TopicARN:     cfg.Deals.NotifyTopicARN,
	}
}
