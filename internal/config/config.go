package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Security   SecurityConfig   `mapstructure:"security"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"`
	MongoURI    string `mapstructure:"mongo_uri"`
	PostgresURL string `mapstructure:"postgres_url"`
	BoltPath    string `mapstructure:"bolt_path"`
}

type CacheConfig struct {
	Driver   string        `mapstructure:"driver"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisURL string        `mapstructure:"redis_url"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	HSTS           bool     `mapstructure:"hsts"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// environment holds the variables that override file configuration.
// Empty values leave the file or default value in place.
type environment struct {
	Env         string `envconfig:"APP_ENV"`
	Port        int    `envconfig:"PORT"`
	MongoURI    string `envconfig:"MONGODB_URI"`
	DBDriver    string `envconfig:"DB_DRIVER"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	BoltPath    string `envconfig:"BOLT_PATH"`
	CacheDriver string `envconfig:"CACHE_DRIVER"`
	RedisURL    string `envconfig:"REDIS_URL"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017/appointment-scheduler")
	v.SetDefault("database.bolt_path", "appointments.db")

	v.SetDefault("cache.driver", CacheNone)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("security.allowed_origins", []string{"*"})

	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")

	v.SetDefault("log.level", "info")
}

// Load builds the configuration from defaults, an optional config.yaml, an
// optional .env file and finally the process environment. dirs are searched
// for both files; the current directory and ./config are used when none are
// given.
func Load(dirs ...string) (*Config, error) {
	if len(dirs) == 0 {
		dirs = []string{".", "./config"}
	}

	if err := loadDotEnv(dirs); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env environment
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.apply(env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads the first .env found. Variables already set in the
// process environment win.
func loadDotEnv(dirs []string) error {
	for _, dir := range dirs {
		err := godotenv.Load(filepath.Join(dir, ".env"))
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

func (c *Config) apply(env environment) {
	override := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}

	override(&c.Env, env.Env)
	override(&c.Database.Driver, env.DBDriver)
	override(&c.Database.MongoURI, env.MongoURI)
	override(&c.Database.PostgresURL, env.DatabaseURL)
	override(&c.Database.BoltPath, env.BoltPath)
	override(&c.Cache.Driver, env.CacheDriver)
	override(&c.Cache.RedisURL, env.RedisURL)
	override(&c.Log.Level, env.LogLevel)
	if env.Port != 0 {
		c.Server.Port = env.Port
	}

	c.Env = strings.ToLower(c.Env)
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	c.Cache.Driver = strings.ToLower(c.Cache.Driver)
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("invalid APP_ENV %q: must be %s or %s", c.Env, EnvDevelopment, EnvProduction)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return errors.New("MONGODB_URI is required for the mongodb driver")
		}
	case DriverPostgres:
		if c.Database.PostgresURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case DriverBolt:
		if c.Database.BoltPath == "" {
			return errors.New("BOLT_PATH is required for the bolt driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache driver %q", c.Cache.Driver)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
