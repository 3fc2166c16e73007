package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Analytics engine.
	AnalyticsCacheSize int           `mapstructure:"ANALYTICS_CACHE_SIZE"`
	AnalyticsCacheTTL  time.Duration `mapstructure:"ANALYTICS_CACHE_TTL"`
	BenchmarkCacheTTL  time.Duration `mapstructure:"BENCHMARK_CACHE_TTL"`
	DashboardCacheTTL  time.Duration `mapstructure:"DASHBOARD_CACHE_TTL"`

	// Persisted analytics snapshots.
	SnapshotTTL               time.Duration `mapstructure:"SNAPSHOT_TTL"`
	SnapshotWorkerConcurrency int           `mapstructure:"SNAPSHOT_WORKER_CONCURRENCY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "timeslice")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("ANALYTICS_CACHE_SIZE", 1000)
	viper.SetDefault("ANALYTICS_CACHE_TTL", 5*time.Minute)
	viper.SetDefault("BENCHMARK_CACHE_TTL", 30*time.Minute)
	viper.SetDefault("DASHBOARD_CACHE_TTL", time.Minute)
	viper.SetDefault("SNAPSHOT_TTL", 24*time.Hour)
	viper.SetDefault("SNAPSHOT_WORKER_CONCURRENCY", 5)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
