package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	DevAPI  DevAPIConfig
}

// APIConfig points at the remote admin API.
type APIConfig struct {
	BaseURL        string        `env:"API_BASE_URL,     default=http://127.0.0.1:8081/api"`
	StorageBaseURL string        `env:"STORAGE_BASE_URL, default=http://127.0.0.1:8081/storage"`
	Timeout        time.Duration `env:"API_TIMEOUT,      default=15s"`
}

type SessionConfig struct {
	// Backend selects where session slots live: redis, mongo or memory.
	Backend      string        `env:"STORE_BACKEND, default=redis"`
	TTL          time.Duration `env:"SESSION_TTL,   default=720h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=admin_console"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=20"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

// DevAPIConfig configures the local stand-in API.
type DevAPIConfig struct {
	Port          string        `env:"DEVAPI_PORT,           default=8081"`
	JWTSecret     string        `env:"DEVAPI_JWT_SECRET,     default=dev-secret"`
	TokenTTL      time.Duration `env:"DEVAPI_TOKEN_TTL,      default=24h"`
	AdminPhone    string        `env:"DEVAPI_ADMIN_PHONE,    default=01700000000"`
	AdminPassword string        `env:"DEVAPI_ADMIN_PASSWORD, default=password"`
}

// IsDevelopment reports whether pretty logging and other local defaults apply.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case StoreRedis, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("config: unknown STORE_BACKEND %q", c.Session.Backend)
	}
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: API_BASE_URL is required")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// LoadFrom reads configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
