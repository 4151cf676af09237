package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	StoreDriver   string
	DatabaseURL   string
	BoltPath      string
	AdminPassword string
	CacheTTL      time.Duration
	RateLimit     int

	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3PublicURL string

	// cursor-follow tween passed to the client script
	FollowDuration float64
	FollowEase     string

	LogLevel  string
	LogFormat string
}

// Load reads the environment, after loading envFile (if it exists) without
// overriding variables that are already set.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		StoreDriver:    getEnv("STORE_DRIVER", "bolt"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		BoltPath:       getEnv("BOLT_PATH", "hovergallery.bolt"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		CacheTTL:       getDuration("CACHE_TTL", 60*time.Minute),
		RateLimit:      getInt("RATE_LIMIT", 500),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       os.Getenv("S3_REGION"),
		S3Prefix:       getEnv("S3_PREFIX", "uploads/"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),
		FollowDuration: getFloat("FOLLOW_DURATION", 0.4),
		FollowEase:     getEnv("FOLLOW_EASE", "power3"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL != "" && os.Getenv("STORE_DRIVER") == "" {
		cfg.StoreDriver = "postgres"
	}
	return cfg, nil
}

// Logger builds the process logger from LogLevel and LogFormat.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("Ignoring invalid integer", "key", key, "value", v)
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
		slog.Warn("Ignoring invalid number", "key", key, "value", v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		slog.Warn("Ignoring invalid duration", "key", key, "value", v)
	}
	return fallback
}
