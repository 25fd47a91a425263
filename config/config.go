package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Token      TokenConfig      `yaml:"token"`
	Pagination PaginationConfig `yaml:"pagination"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Security   SecurityConfig   `yaml:"security"`
	Log        LogConfig        `yaml:"log"`
}

type AppConfig struct {
	Name        string        `yaml:"name"`
	Environment string        `yaml:"environment"`
	Debug       bool          `yaml:"debug"`
	Timeout     time.Duration `yaml:"timeout"`
	Port        string        `yaml:"port"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	SQLitePath      string        `yaml:"sqlite_path"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	Database     int           `yaml:"database"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolTimeout  time.Duration `yaml:"pool_timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// TokenConfig controls the lifetime of auth tokens. ExpirationDays is the
// TTL in whole days.
type TokenConfig struct {
	ExpirationDays int `yaml:"expiration_days"`
}

// TTL returns the token lifetime as a duration.
func (t TokenConfig) TTL() time.Duration {
	return time.Duration(t.ExpirationDays) * 24 * time.Hour
}

type PaginationConfig struct {
	PageSize    int `yaml:"page_size"`
	MaxPageSize int `yaml:"max_page_size"`
}

type RateLimitConfig struct {
	Request  int `yaml:"request"`
	Duration int `yaml:"duration"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type LogConfig struct {
	Path   string `yaml:"path"`
	ToFile bool   `yaml:"to_file"`
}

// Default returns the configuration used when neither a config file nor
// environment variables provide a value.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:        "customer-service",
			Environment: constants.DefaultEnvironment,
			Port:        constants.DefaultPort,
			Debug:       true,
			Timeout:     30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			Name:            "customer_db",
			User:            "postgres",
			Password:        "postgres",
			SSLMode:         "disable",
			SQLitePath:      "customer.db",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Redis: RedisConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         6379,
			PoolSize:     10,
			MinIdleConns: 5,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolTimeout:  4 * time.Second,
			CacheTTL:     5 * time.Minute,
		},
		Token: TokenConfig{
			ExpirationDays: 1,
		},
		Pagination: PaginationConfig{
			PageSize:    30,
			MaxPageSize: 1000,
		},
		RateLimit: RateLimitConfig{
			Request:  100,
			Duration: 60,
		},
		Security: SecurityConfig{
			BcryptCost: 10,
		},
		Log: LogConfig{
			Path:   "./logs",
			ToFile: false,
		},
	}
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine, the process environment is used as is
	_ = godotenv.Load()

	config := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, err
		}
	}

	config.App = AppConfig{
		Name:        getEnv("APP_NAME", config.App.Name),
		Environment: getEnv("APP_ENV", config.App.Environment),
		Port:        getEnv("APP_PORT", config.App.Port),
		Debug:       getEnvAsBool("APP_DEBUG", config.App.Debug),
		Timeout:     getEnvAsDuration("APP_TIMEOUT", config.App.Timeout),
	}
	config.Database = DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", config.Database.Driver),
		Host:            getEnv("DB_HOST", config.Database.Host),
		Port:            getEnvAsInt("DB_PORT", config.Database.Port),
		Name:            getEnv("DB_NAME", config.Database.Name),
		User:            getEnv("DB_USER", config.Database.User),
		Password:        getEnv("DB_PASSWORD", config.Database.Password),
		SSLMode:         getEnv("DB_SSL_MODE", config.Database.SSLMode),
		SQLitePath:      getEnv("DB_SQLITE_PATH", config.Database.SQLitePath),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", config.Database.MaxIdleConns),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", config.Database.MaxOpenConns),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", config.Database.ConnMaxLifetime),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", config.Database.ConnMaxIdleTime),
	}
	config.Redis = RedisConfig{
		Enabled:      getEnvAsBool("REDIS_ENABLED", config.Redis.Enabled),
		Host:         getEnv("REDIS_HOST", config.Redis.Host),
		Port:         getEnvAsInt("REDIS_PORT", config.Redis.Port),
		Password:     getEnv("REDIS_PASSWORD", config.Redis.Password),
		Database:     getEnvAsInt("REDIS_DB", config.Redis.Database),
		PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", config.Redis.PoolSize),
		MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", config.Redis.MinIdleConns),
		DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", config.Redis.DialTimeout),
		ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", config.Redis.ReadTimeout),
		WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", config.Redis.WriteTimeout),
		PoolTimeout:  getEnvAsDuration("REDIS_POOL_TIMEOUT", config.Redis.PoolTimeout),
		CacheTTL:     getEnvAsDuration("REDIS_CACHE_TTL", config.Redis.CacheTTL),
	}
	config.Token = TokenConfig{
		ExpirationDays: getEnvAsInt("TOKEN_EXPIRATION_DAYS", config.Token.ExpirationDays),
	}
	config.Pagination = PaginationConfig{
		PageSize:    getEnvAsInt("PAGE_SIZE", config.Pagination.PageSize),
		MaxPageSize: getEnvAsInt("MAX_PAGE_SIZE", config.Pagination.MaxPageSize),
	}
	config.RateLimit = RateLimitConfig{
		Request:  getEnvAsInt("RATE_LIMIT_MAX_REQUEST", config.RateLimit.Request),
		Duration: getEnvAsInt("RATE_LIMIT_DURATION", config.RateLimit.Duration),
	}
	config.Security = SecurityConfig{
		BcryptCost: getEnvAsInt("BCRYPT_COST", config.Security.BcryptCost),
	}
	config.Log = LogConfig{
		Path:   getEnv("LOGS_PATH", config.Log.Path),
		ToFile: getEnvAsBool("LOG_TO_FILE", config.Log.ToFile),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Token.ExpirationDays < 0 {
		return fmt.Errorf("TOKEN_EXPIRATION_DAYS must not be negative, got %d", c.Token.ExpirationDays)
	}
	if c.Pagination.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.Pagination.PageSize)
	}
	if c.Pagination.MaxPageSize < c.Pagination.PageSize {
		return fmt.Errorf("MAX_PAGE_SIZE (%d) must be >= PAGE_SIZE (%d)", c.Pagination.MaxPageSize, c.Pagination.PageSize)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	return nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
