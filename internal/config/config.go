package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver     string
		DSN        string
		Host       string
		Port       string
		User       string
		Password   string
		Name       string
		SQLitePath string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	HTTP struct {
		Addr string
	}

	// Engine holds the browse throttling and exclusion windows.
	Engine struct {
		BrowseCooldown time.Duration
		BrowseWindow   time.Duration
		BrowseQuota    int
		SkipTTL        time.Duration
		OnlineWindow   time.Duration
	}

	Notify struct {
		PoolSize     int
		Rate         float64
		Burst        int
		Timeout      time.Duration
		KafkaBrokers []string
		KafkaTopic   string
	}

	Admin struct {
		TokenHash string
	}
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matchmaker")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.SQLitePath = getEnvDefault("SQLITE_PATH", "matchmaker.db")
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "matchmaker")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// ops HTTP (health + metrics)
	cfg.HTTP.Addr = getEnvDefault("HTTP_ADDR", "127.0.0.1:8080")

	// Engine
	cfg.Engine.BrowseCooldown = getEnvDuration("BROWSE_COOLDOWN", 5*time.Second)
	cfg.Engine.BrowseWindow = getEnvDuration("BROWSE_WINDOW", time.Hour)
	cfg.Engine.BrowseQuota = getEnvInt("BROWSE_QUOTA", 50)
	cfg.Engine.SkipTTL = getEnvDuration("SKIP_TTL", 7*24*time.Hour)
	cfg.Engine.OnlineWindow = getEnvDuration("ONLINE_WINDOW", 15*time.Minute)

	// Notifications
	cfg.Notify.PoolSize = getEnvInt("NOTIFY_POOL_SIZE", 64)
	cfg.Notify.Rate = getEnvFloat("NOTIFY_RATE", 25)
	cfg.Notify.Burst = getEnvInt("NOTIFY_BURST", 30)
	cfg.Notify.Timeout = getEnvDuration("NOTIFY_TIMEOUT", 5*time.Second)
	cfg.Notify.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.Notify.KafkaTopic = getEnvDefault("KAFKA_TOPIC", "matchmaker.notifications")

	cfg.Admin.TokenHash = getEnvDefault("ADMIN_TOKEN_HASH", "")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if n, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return n
	}
	return def
}

func getEnvFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(getEnvDefault(k, ""), 64); err == nil {
		return f
	}
	return def
}

// getEnvDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvDuration(k string, def time.Duration) time.Duration {
	v := getEnvDefault(k, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
