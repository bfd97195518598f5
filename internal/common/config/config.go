// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig               `mapstructure:"app"`
	Camunda  CamundaConfig           `mapstructure:"camunda"`
	Server   ServerConfig            `mapstructure:"server"`
	Market   MarketConfig            `mapstructure:"market"`
	Trust    TrustConfig             `mapstructure:"trust"`
	Storage  StorageConfig           `mapstructure:"storage"`
	SerpAPI  SerpAPIConfig           `mapstructure:"serpapi"`
	Scraper  ScraperConfig           `mapstructure:"scraper"`
	Deals    DealsConfig             `mapstructure:"deals"`
	GenAI    GenAIConfig             `mapstructure:"genai"`
	Database DatabaseConfig          `mapstructure:"database"`
	Workers  map[string]WorkerConfig `mapstructure:"workers"`
	Logging  LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MarketConfig pins the single market every search is run against.
type MarketConfig struct {
	Country        string `mapstructure:"country"`
	CurrencyCode   string `mapstructure:"currency_code"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	// StrictCurrency rejects matches that carry no currency at all.
	StrictCurrency bool `mapstructure:"strict_currency"`
}

type TrustConfig struct {
	RegistryPath string   `mapstructure:"registry_path"`
	Keywords     []string `mapstructure:"keywords"`
}

type StorageConfig struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	KeyPrefix      string `mapstructure:"key_prefix"`
	UsePathStyle   bool   `mapstructure:"use_path_style"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type SerpAPIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type ScraperConfig struct {
	UserAgent     string   `mapstructure:"user_agent"`
	Timeout       int      `mapstructure:"timeout"`   // milliseconds
	CacheTTL      int      `mapstructure:"cache_ttl"` // seconds
	MinImageWidth int      `mapstructure:"min_image_width"`
	MaxPageBytes  int64    `mapstructure:"max_page_bytes"`
	HintTokens    []string `mapstructure:"hint_tokens"`
}

type DealsConfig struct {
	Query          string `mapstructure:"query"`
	GoogleDomain   string `mapstructure:"google_domain"`
	Language       string `mapstructure:"language"`
	Limit          int    `mapstructure:"limit"`
	Schedule       string `mapstructure:"schedule"`
	NotifyTopicARN string `mapstructure:"notify_topic_arn"`
}

type GenAIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Timeout  int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
