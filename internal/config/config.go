package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	Gemini   Gemini   `mapstructure:"gemini"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Cache    Cache    `mapstructure:"cache"`
	Sources  Sources  `mapstructure:"sources"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	DataDir  string `mapstructure:"data_dir"`
	Language string `mapstructure:"language"`
}

// Gemini holds model client configuration
type Gemini struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Pipeline holds orchestration thresholds and limits
type Pipeline struct {
	QualityThreshold     float64 `mapstructure:"quality_threshold"`
	InterestThreshold    float64 `mapstructure:"interest_threshold"`
	MaxSourcesPerArticle int     `mapstructure:"max_sources_per_article"`
	MaxConcurrent        int     `mapstructure:"max_concurrent"`
	TargetLength         int     `mapstructure:"target_length"`
	Style                string  `mapstructure:"style"`
}

// Cache holds cache configuration
type Cache struct {
	Directory string    `mapstructure:"directory"`
	TTL       TTLConfig `mapstructure:"ttl"`
}

// TTLConfig holds per-stage cache lifetimes
type TTLConfig struct {
	Quality  string `mapstructure:"quality"`
	Interest string `mapstructure:"interest"`
	Category string `mapstructure:"category"`
	Tags     string `mapstructure:"tags"`
}

// Sources holds collection configuration
type Sources struct {
	MaxConcurrency  int    `mapstructure:"max_concurrency"`
	MaxItemsPerKind int    `mapstructure:"max_items_per_kind"`
	Timeout         string `mapstructure:"timeout"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load loads the configuration from .env, config file, environment,
// and defaults, in that order of increasing precedence for env vars.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".curator")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.SetEnvPrefix("CURATOR")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".curator-cache")
	viper.SetDefault("app.language", "English")

	viper.SetDefault("gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("gemini.timeout", "30s")
	viper.SetDefault("gemini.max_tokens", 8192)
	viper.SetDefault("gemini.temperature", 0.7)

	viper.SetDefault("pipeline.quality_threshold", 6.0)
	viper.SetDefault("pipeline.interest_threshold", 5.0)
	viper.SetDefault("pipeline.max_sources_per_article", 5)
	viper.SetDefault("pipeline.max_concurrent", 4)
	viper.SetDefault("pipeline.target_length", 800)
	viper.SetDefault("pipeline.style", "")

	viper.SetDefault("cache.directory", ".curator-cache")
	viper.SetDefault("cache.ttl.quality", "24h")
	viper.SetDefault("cache.ttl.interest", "12h")
	viper.SetDefault("cache.ttl.category", "24h")
	viper.SetDefault("cache.ttl.tags", "12h")

	viper.SetDefault("sources.max_concurrency", 4)
	viper.SetDefault("sources.max_items_per_kind", 50)
	viper.SetDefault("sources.timeout", "5m")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

func bindEnvironmentVariables() {
	bindEnvKeys("gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"CURATOR_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}

	durations := map[string]string{
		"gemini.timeout":     config.Gemini.Timeout,
		"cache.ttl.quality":  config.Cache.TTL.Quality,
		"cache.ttl.interest": config.Cache.TTL.Interest,
		"cache.ttl.category": config.Cache.TTL.Category,
		"cache.ttl.tags":     config.Cache.TTL.Tags,
		"sources.timeout":    config.Sources.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

func validateConfig(config *Config) error {
	var errors []string

	if config.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or gemini.api_key in config file.")
	}

	if config.Pipeline.QualityThreshold < 1 || config.Pipeline.QualityThreshold > 10 {
		errors = append(errors, fmt.Sprintf("pipeline.quality_threshold must be in [1,10], got %v", config.Pipeline.QualityThreshold))
	}
	if config.Pipeline.InterestThreshold < 1 || config.Pipeline.InterestThreshold > 10 {
		errors = append(errors, fmt.Sprintf("pipeline.interest_threshold must be in [1,10], got %v", config.Pipeline.InterestThreshold))
	}
	if config.Pipeline.MaxSourcesPerArticle < 1 {
		errors = append(errors, "pipeline.max_sources_per_article must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// TTLOrDefault parses a TTL string, falling back when empty or invalid.
func TTLOrDefault(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Convenience getters for commonly used configuration values
func GetGeminiAPIKey() string    { return Get().Gemini.APIKey }
func GetGeminiModel() string     { return Get().Gemini.Model }
func GetDataDir() string         { return Get().App.DataDir }
func GetCacheDirectory() string  { return Get().Cache.Directory }
func IsDebugMode() bool          { return Get().App.Debug }
func GetPipeline() Pipeline      { return Get().Pipeline }

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
