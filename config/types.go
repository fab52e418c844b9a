package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Filter     FilterConfig     `mapstructure:"filter"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// APIConfig holds upstream API connection details
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	UserAgent  string        `mapstructure:"user_agent"`
	RateLimit  float64       `mapstructure:"rate_limit"`
	RateBurst  int           `mapstructure:"rate_burst"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig controls the circuit breaker around upstream calls
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// PaginationConfig controls the client-facing page size
type PaginationConfig struct {
	ItemsPerPage int `mapstructure:"items_per_page"`
}

// FilterConfig contains named filter presets. Viper lowercases preset names.
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
