// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Benchmarks BenchmarksConfig `mapstructure:"benchmarks"`
	Narrative  NarrativeConfig  `mapstructure:"narrative"`
	Reports    ReportsConfig    `mapstructure:"reports"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // seconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // seconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds
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

// GetDSN returns the PostgreSQL connection string.
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

// --- Forecasting Engine Config ---

// EngineConfig holds the structural bounds and numeric safety bands for the
// forecasting engine. These are operational limits, not market data; market
// data lives in the benchmark tables.
type EngineConfig struct {
	MinBudget     float64 `mapstructure:"min_budget"`
	MaxBudget     float64 `mapstructure:"max_budget"`
	MinPlatforms  int     `mapstructure:"min_platforms"`
	MaxPlatforms  int     `mapstructure:"max_platforms"`
	MaxIterations int     `mapstructure:"max_iterations"` // allocation clamp-and-redistribute cap
	ModifierFloor float64 `mapstructure:"modifier_floor"` // composed multiplier clamp band
	ModifierCeil  float64 `mapstructure:"modifier_ceil"`
}

type BenchmarksConfig struct {
	Path        string `mapstructure:"path"`
	CatalogPath string `mapstructure:"catalog_path"`
}

// NarrativeConfig configures the external text-generation collaborator.
type NarrativeConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
	MaxTokens  int    `mapstructure:"max_tokens"`
}

type ReportsConfig struct {
	CacheTTL int `mapstructure:"cache_ttl"` // seconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
