// Package config loads leads-cli configuration from config.yaml, .env and
// the environment.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Apollo         ApolloConfig         `yaml:"apollo" mapstructure:"apollo"`
	CompaniesHouse CompaniesHouseConfig `yaml:"companies_house" mapstructure:"companies_house"`
	Classifier     ClassifierConfig     `yaml:"classifier" mapstructure:"classifier"`
	Enrichment     EnrichmentConfig     `yaml:"enrichment" mapstructure:"enrichment"`
	Store          StoreConfig          `yaml:"store" mapstructure:"store"`
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Log            LogConfig            `yaml:"log" mapstructure:"log"`
}

// ApolloConfig holds Apollo people-match API settings.
type ApolloConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// CompaniesHouseConfig holds Companies House public data API settings.
type CompaniesHouseConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	RequestDelayMs int    `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	PageSize       int    `yaml:"page_size" mapstructure:"page_size"`
	MaxResults     int    `yaml:"max_results" mapstructure:"max_results"`
	RetryAttempts  int    `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// ClassifierConfig selects and configures the SIC classifier.
type ClassifierConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"`
	GeminiKey      string `yaml:"gemini_key" mapstructure:"gemini_key"`
	GeminiModel    string `yaml:"gemini_model" mapstructure:"gemini_model"`
	AnthropicKey   string `yaml:"anthropic_key" mapstructure:"anthropic_key"`
	AnthropicModel string `yaml:"anthropic_model" mapstructure:"anthropic_model"`
	CodesPath      string `yaml:"codes_path" mapstructure:"codes_path"`
}

// EnrichmentConfig paces bulk enrichment.
type EnrichmentConfig struct {
	BatchSize         int    `yaml:"batch_size" mapstructure:"batch_size"`
	RequestDelayMs    int    `yaml:"request_delay_ms" mapstructure:"request_delay_ms"`
	BatchDelayMs      int    `yaml:"batch_delay_ms" mapstructure:"batch_delay_ms"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	AuditLogPath      string `yaml:"audit_log_path" mapstructure:"audit_log_path"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps config keys to the unprefixed variable names older
// deployments export.
var legacyEnv = map[string]string{
	"apollo.key":               "APOLLO_API_KEY",
	"companies_house.key":      "COMPANIES_HOUSE_API_KEY",
	"classifier.gemini_key":    "GOOGLE_AI_API_KEY",
	"classifier.anthropic_key": "ANTHROPIC_API_KEY",
}

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded first when present; it never overrides
// variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "LEADS_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("apollo.base_url", "https://api.apollo.io")
	v.SetDefault("apollo.timeout_secs", 30)
	v.SetDefault("companies_house.base_url", "https://api.company-information.service.gov.uk")
	v.SetDefault("companies_house.request_delay_ms", 100)
	v.SetDefault("companies_house.page_size", 5000)
	v.SetDefault("companies_house.max_results", 50000)
	v.SetDefault("companies_house.retry_attempts", 3)
	v.SetDefault("classifier.provider", "gemini")
	v.SetDefault("classifier.gemini_model", "gemini-1.5-flash")
	v.SetDefault("classifier.anthropic_model", "claude-haiku-4-5-20251001")
	v.SetDefault("classifier.codes_path", "")
	v.SetDefault("enrichment.batch_size", 5)
	v.SetDefault("enrichment.request_delay_ms", 1200)
	v.SetDefault("enrichment.batch_delay_ms", 0)
	v.SetDefault("enrichment.requests_per_minute", 50)
	v.SetDefault("enrichment.audit_log_path", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Timeout returns the Apollo HTTP timeout.
func (c ApolloConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RequestDelay returns the spacing between registry requests.
func (c CompaniesHouseConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

// RequestDelay returns the pause after each enrichment call.
func (c EnrichmentConfig) RequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMs) * time.Millisecond
}

// BatchDelay returns the pause between batches. Zero means twice the
// request delay.
func (c EnrichmentConfig) BatchDelay() time.Duration {
	if c.BatchDelayMs <= 0 {
		return 2 * c.RequestDelay()
	}
	return time.Duration(c.BatchDelayMs) * time.Millisecond
}
