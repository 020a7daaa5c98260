package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Inspection InspectionConfig `mapstructure:"inspection"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Enabled      bool          `mapstructure:"enabled"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// DispatchConfig carries defaults applied when a webhook target leaves a
// policy field unset, plus the contact gateway endpoint.
type DispatchConfig struct {
	GatewayURL         string        `mapstructure:"gateway_url"`
	DefaultTimeout     time.Duration `mapstructure:"default_timeout"`
	DefaultMaxAttempts int           `mapstructure:"default_max_attempts"`
	DefaultRetryDelay  time.Duration `mapstructure:"default_retry_delay"`
	TargetCacheTTL     time.Duration `mapstructure:"target_cache_ttl"`
}

type WorkerConfig struct {
	BatchSize    int           `mapstructure:"batch_size" split_words:"true"`
	PollInterval time.Duration `mapstructure:"poll_interval" split_words:"true"`
	MinOrderAge  time.Duration `mapstructure:"min_order_age" split_words:"true"`
	HealthPort   int           `mapstructure:"health_port" split_words:"true"`
}

type InspectionConfig struct {
	// WaterThreshold is the water quantity (liters) above which a tank
	// reading raises an alert.
	WaterThreshold    float64 `mapstructure:"water_threshold"`
	CriticalThreshold float64 `mapstructure:"critical_threshold"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("fuelogic")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.rate_limit", 50.0)
	viper.SetDefault("server.rate_burst", 100)
	viper.SetDefault("server.metrics_enabled", true)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "fuelogic")
	viper.SetDefault("database.name", "fuelogic")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)

	viper.SetDefault("dispatch.default_timeout", 30*time.Second)
	viper.SetDefault("dispatch.default_max_attempts", 3)
	viper.SetDefault("dispatch.default_retry_delay", 5*time.Second)
	viper.SetDefault("dispatch.target_cache_ttl", 5*time.Minute)

	viper.SetDefault("worker.batch_size", 100)
	viper.SetDefault("worker.poll_interval", 30*time.Second)
	viper.SetDefault("worker.min_order_age", 2*time.Minute)
	viper.SetDefault("worker.health_port", 8081)

	viper.SetDefault("inspection.water_threshold", 2.0)
	viper.SetDefault("inspection.critical_threshold", 10.0)
}
