package config

import (
	"os"
	"time"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMySQLDSN        = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	defaultRedisAddr       = "localhost:6379"
	defaultShutdownTimeout = 5 * time.Second
)

type Config struct {
	HTTPAddr        string
	MySQLDSN        string
	RedisAddr       string
	ShutdownTimeout time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", defaultHTTPAddr),
		MySQLDSN:        getEnv("MYSQL_DSN", defaultMySQLDSN),
		RedisAddr:       getEnv("REDIS_ADDR", defaultRedisAddr),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
