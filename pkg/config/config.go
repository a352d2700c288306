package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Season selection. Zero means derive from the run date.
	TargetSeason int `mapstructure:"TARGET_SEASON"`

	// Paths
	CacheDir  string `mapstructure:"CACHE_DIR"`
	OutputDir string `mapstructure:"OUTPUT_DIR"`
	// Prometheus textfile written after each run, empty disables
	MetricsFile string `mapstructure:"METRICS_FILE"`

	// Raw payload cache
	CacheBackend string        `mapstructure:"CACHE_BACKEND"` // "file", "redis"
	RedisURL     string        `mapstructure:"REDIS_URL"`
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`

	// Scheduled reruns, cron syntax
	Schedule string `mapstructure:"SCHEDULE"`

	// External APIs
	HTTPTimeout             time.Duration `mapstructure:"HTTP_TIMEOUT"`
	RetryAttempts           int           `mapstructure:"RETRY_ATTEMPTS"`
	RetryDelay              time.Duration `mapstructure:"RETRY_DELAY"`
	RequestsPerSecond       float64       `mapstructure:"REQUESTS_PER_SECOND"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
	CircuitBreakerTimeout   time.Duration `mapstructure:"CIRCUIT_BREAKER_TIMEOUT"`
	UserAgent               string        `mapstructure:"USER_AGENT"`
	PlayerInfoBatchSize     int           `mapstructure:"PLAYER_INFO_BATCH_SIZE"`

	// Leaderboard qualifiers
	MinPA      int `mapstructure:"MIN_PA"`
	MinIP      int `mapstructure:"MIN_IP"`
	MinXWOBAPA int `mapstructure:"MIN_XWOBA_PA"`

	// Feature flags
	SkipPitchers bool `mapstructure:"SKIP_PITCHERS"`
	SkipPlot     bool `mapstructure:"SKIP_PLOT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	SetDefaults(viper.GetViper())

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(viper.GetViper())
}

// SetDefaults registers every key so AutomaticEnv and Unmarshal see it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("LOG_FORMAT", "") // json outside development

	v.SetDefault("TARGET_SEASON", 0)

	v.SetDefault("CACHE_DIR", "projection_cache")
	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("METRICS_FILE", "")

	v.SetDefault("CACHE_BACKEND", "file")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("CACHE_TTL", "0s") // never expire
	v.SetDefault("SCHEDULE", "0 6 * * *")

	v.SetDefault("HTTP_TIMEOUT", "15s")
	v.SetDefault("RETRY_ATTEMPTS", 3)
	v.SetDefault("RETRY_DELAY", "3s")
	v.SetDefault("REQUESTS_PER_SECOND", 5.0)
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
	v.SetDefault("CIRCUIT_BREAKER_TIMEOUT", "30s")
	v.SetDefault("USER_AGENT", "Mozilla/5.0 (compatible; FantasyProjections/1.0)")
	v.SetDefault("PLAYER_INFO_BATCH_SIZE", 200)

	v.SetDefault("MIN_PA", 200)
	v.SetDefault("MIN_IP", 30)
	v.SetDefault("MIN_XWOBA_PA", 25)

	v.SetDefault("SKIP_PITCHERS", false)
	v.SetDefault("SKIP_PLOT", false)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.CacheBackend = strings.ToLower(strings.TrimSpace(config.CacheBackend))
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q (want file or redis)", c.CacheBackend)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1, got %d", c.RetryAttempts)
	}
	if c.PlayerInfoBatchSize < 1 {
		return fmt.Errorf("PLAYER_INFO_BATCH_SIZE must be at least 1, got %d", c.PlayerInfoBatchSize)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must be positive, got %v", c.RequestsPerSecond)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
