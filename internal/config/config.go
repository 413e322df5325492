// Package config handles configuration loading for loanlens.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. LOANLENS_API_PORT.
const EnvPrefix = "LOANLENS"

// Config represents the complete application configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"   yaml:"engine"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// EngineConfig holds reference data locations and schedule defaults.
type EngineConfig struct {
	MarketRatesFile string `mapstructure:"market_rates_file" yaml:"market_rates_file"`
	RiskFactorsFile string `mapstructure:"risk_factors_file" yaml:"risk_factors_file"`
	StartDate       string `mapstructure:"start_date"        yaml:"start_date"` // YYYY-MM-DD, empty = today
	DefaultCurrency string `mapstructure:"default_currency"  yaml:"default_currency"`
}

// AnalysisConfig holds analysis pipeline settings.
type AnalysisConfig struct {
	CacheTTL    int `mapstructure:"cache_ttl"   yaml:"cache_ttl"` // seconds
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/loanlens.yaml (project root)
//  2. ~/.loanlens/loanlens.yaml (home directory)
//  3. /etc/loanlens/loanlens.yaml (system)
//
// Environment variables override config file values.
// Format: LOANLENS_<SECTION>_<KEY>, e.g., LOANLENS_ENGINE_MARKET_RATES_FILE
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("loanlens")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".loanlens"))
	v.AddConfigPath("/etc/loanlens")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Engine defaults
	v.SetDefault("engine.market_rates_file", "")
	v.SetDefault("engine.risk_factors_file", "")
	v.SetDefault("engine.start_date", "")
	v.SetDefault("engine.default_currency", "USD")

	// Analysis defaults
	v.SetDefault("analysis.cache_ttl", 300) // 5 minutes
	v.SetDefault("analysis.concurrency", 4)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads the CORS origin list from a comma-separated
// environment variable, which viper would otherwise keep as one string.
func overrideFromEnv(cfg *Config) {
	if raw := os.Getenv(EnvPrefix + "_API_CORS_ORIGINS"); raw != "" {
		var origins []string
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.API.CORSOrigins = origins
	}
}

// Start parses engine.start_date. An empty value yields the zero time, which
// the amortization engine treats as today.
func (c EngineConfig) Start() (time.Time, error) {
	if c.StartDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("engine.start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}

// CacheDuration returns analysis.cache_ttl as a duration.
func (c AnalysisConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Workers returns the analysis concurrency, at least 1.
func (c AnalysisConfig) Workers() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}

// Addr returns the host:port the API listens on.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
