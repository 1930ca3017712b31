package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Store backends and lock backends accepted in STORE_BACKEND / LOCK_BACKEND.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)

// StoreConfig selects where the three collections live and how their
// advisory locks are taken.
type StoreConfig struct {
	Backend     string
	DataDir     string
	LockBackend string
	LockTimeout time.Duration
	LockTTL     time.Duration
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

// RateLimitConfig allows at most Max requests per client IP per Window.
type RateLimitConfig struct {
	Enabled  bool
	UseRedis bool
	Max      int
	Window   time.Duration
}

// RPS is the steady refill rate used by the in-memory token bucket.
func (r RateLimitConfig) RPS() float64 {
	if r.Window <= 0 {
		return float64(r.Max)
	}
	return float64(r.Max) / r.Window.Seconds()
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("STORE_BACKEND", BackendFile)
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("LOCK_BACKEND", BackendFile)
	viper.SetDefault("LOCK_TIMEOUT_MS", 5000)
	viper.SetDefault("LOCK_TTL_MS", 30000)
	viper.SetDefault("MONGODB_DATABASE", "coursehub")
	viper.SetDefault("MONGODB_COLLECTION", "collections")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_MAX", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 900)
	viper.SetDefault("MINIO_BUCKET", "coursehub-snapshots")
	viper.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(viper.GetString("STORE_BACKEND")),
			DataDir:     viper.GetString("DATA_DIR"),
			LockBackend: strings.ToLower(viper.GetString("LOCK_BACKEND")),
			LockTimeout: time.Duration(viper.GetInt("LOCK_TIMEOUT_MS")) * time.Millisecond,
			LockTTL:     time.Duration(viper.GetInt("LOCK_TTL_MS")) * time.Millisecond,
		},
		MongoDB: MongoDBConfig{
			URI:        viper.GetString("MONGODB_URI"),
			Database:   viper.GetString("MONGODB_DATABASE"),
			Collection: viper.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis: viper.GetBool("RATE_LIMIT_USE_REDIS"),
			Max:      viper.GetInt("RATE_LIMIT_MAX"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendMemory:
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("STORE_BACKEND=mongo requires MONGODB_URI")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Store.LockBackend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Redis.Host == "" {
			return fmt.Errorf("LOCK_BACKEND=redis requires REDIS_HOST")
		}
		// redis locks are not renewed, so a holder must finish well inside the TTL
		if c.Store.LockTTL < 2*c.Store.LockTimeout {
			return fmt.Errorf("LOCK_TTL_MS (%s) must be at least twice LOCK_TIMEOUT_MS (%s)", c.Store.LockTTL, c.Store.LockTimeout)
		}
	default:
		return fmt.Errorf("unknown LOCK_BACKEND %q", c.Store.LockBackend)
	}
	if c.RateLimit.Enabled && c.RateLimit.Max <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", c.RateLimit.Max)
	}
	return nil
}
