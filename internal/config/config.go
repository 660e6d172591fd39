package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	Database  *DatabaseConfig  `mapstructure:"database"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	MySQL     *MySQLConfig     `mapstructure:"mysql"`
	SQLite    *SQLiteConfig    `mapstructure:"sqlite"`
	Booking   *BookingConfig   `mapstructure:"booking"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	RateLimit *RateLimitConfig `mapstructure:"rate_limit"`
	RabbitMQ  *RabbitMQConfig  `mapstructure:"rabbitmq"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	AccessTokenTTL     time.Duration `mapstructure:"access_token_ttl"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	// AdminSignupKey gates admin registration. Empty disables it.
	AdminSignupKey string `mapstructure:"admin_signup_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	// Driver is one of postgres, mysql, sqlite or memory.
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type BookingConfig struct {
	LockTimeout  time.Duration `mapstructure:"lock_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Prefix         string        `mapstructure:"prefix"`
	Capacity       int           `mapstructure:"capacity"`
	RefillTokens   int           `mapstructure:"refill_tokens"`
	RefillInterval time.Duration `mapstructure:"refill_interval"`
	TTL            time.Duration `mapstructure:"ttl"`
}

type RabbitMQConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.access_token_ttl", 24*time.Hour)
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("mysql.host", "localhost")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("sqlite.path", "eventbooking.db")
	v.SetDefault("booking.lock_timeout", 5*time.Second)
	v.SetDefault("booking.max_retries", 3)
	v.SetDefault("booking.retry_backoff", 50*time.Millisecond)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("rate_limit.prefix", "rl")
	v.SetDefault("rate_limit.capacity", 10)
	v.SetDefault("rate_limit.refill_tokens", 1)
	v.SetDefault("rate_limit.refill_interval", time.Second)
	v.SetDefault("rate_limit.ttl", 10*time.Minute)
	v.SetDefault("rabbitmq.queue", "booking.confirmed")
}

// Load reads the config file at path. Every key can be overridden by an
// environment variable, e.g. BOOKING_LOCK_TIMEOUT for booking.lock_timeout.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	loaded = v

	return conf, nil
}

var loaded *viper.Viper

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.API == nil || conf.API.JWTSigningKey == "" {
		return nil, fmt.Errorf("api.jwt_signing_key is required")
	}

	return conf, nil
}

// WatchBooking calls onChange with the booking section every time the
// config file loaded by Load is written.
func WatchBooking(onChange func(BookingConfig)) {
	if loaded == nil {
		return
	}

	v := loaded
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		var booking BookingConfig
		if err := v.UnmarshalKey("booking", &booking); err != nil {
			return
		}
		onChange(booking)
	})
	v.WatchConfig()
}
