// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like FORECASTER_SERVER_PORT.
	viper.SetEnvPrefix("forecaster")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root so
// the binary and the tests resolve the same secrets.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "campaign-forecaster"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	if cfg.Engine.MinBudget == 0 {
		cfg.Engine.MinBudget = 1000
	}
	if cfg.Engine.MaxBudget == 0 {
		cfg.Engine.MaxBudget = 10_000_000
	}
	if cfg.Engine.MinPlatforms == 0 {
		cfg.Engine.MinPlatforms = 1
	}
	if cfg.Engine.MaxPlatforms == 0 {
		cfg.Engine.MaxPlatforms = 6
	}
	if cfg.Engine.MaxIterations == 0 {
		cfg.Engine.MaxIterations = 10
	}
	if cfg.Engine.ModifierFloor == 0 {
		cfg.Engine.ModifierFloor = 0.3
	}
	if cfg.Engine.ModifierCeil == 0 {
		cfg.Engine.ModifierCeil = 3.0
	}

	if cfg.Benchmarks.Path == "" {
		cfg.Benchmarks.Path = "configs/benchmarks.yaml"
	}
	if cfg.Benchmarks.CatalogPath == "" {
		cfg.Benchmarks.CatalogPath = "configs/catalog.json"
	}

	if cfg.Narrative.Timeout == 0 {
		cfg.Narrative.Timeout = 5000
	}
	if cfg.Narrative.MaxRetries == 0 {
		cfg.Narrative.MaxRetries = 2
	}
	if cfg.Narrative.MaxTokens == 0 {
		cfg.Narrative.MaxTokens = 256
	}

	if cfg.Reports.CacheTTL == 0 {
		cfg.Reports.CacheTTL = 300
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Engine.MinBudget <= 0 || cfg.Engine.MaxBudget <= cfg.Engine.MinBudget {
		return fmt.Errorf("engine budget bounds invalid: min=%.2f max=%.2f",
			cfg.Engine.MinBudget, cfg.Engine.MaxBudget)
	}
	if cfg.Engine.MinPlatforms < 1 || cfg.Engine.MaxPlatforms < cfg.Engine.MinPlatforms {
		return fmt.Errorf("engine platform bounds invalid: min=%d max=%d",
			cfg.Engine.MinPlatforms, cfg.Engine.MaxPlatforms)
	}
	if cfg.Engine.ModifierFloor <= 0 || cfg.Engine.ModifierCeil <= cfg.Engine.ModifierFloor {
		return fmt.Errorf("modifier clamp band invalid: floor=%.2f ceil=%.2f",
			cfg.Engine.ModifierFloor, cfg.Engine.ModifierCeil)
	}
	if cfg.Narrative.Enabled && cfg.Narrative.BaseURL == "" {
		return fmt.Errorf("narrative enabled but base_url is empty")
	}
	return nil
}
