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
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisGeoDB    int    `mapstructure:"REDIS_GEO_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Geocoding provider.
	GeoAPIKey         string `mapstructure:"GEO_API_KEY"`
	GeoBaseURL        string `mapstructure:"GEO_BASE_URL"`
	GeoTimeoutSec     int    `mapstructure:"GEO_TIMEOUT_SEC"`
	GeoVerifyCutoffKm float64 `mapstructure:"GEO_VERIFY_CUTOFF_KM"`
	GeoToleranceKm    float64 `mapstructure:"GEO_TOLERANCE_KM"`

	// Matching defaults.
	MatchMaxDistanceKm float64 `mapstructure:"MATCH_MAX_DISTANCE_KM"`
	MatchLimit         int     `mapstructure:"MATCH_LIMIT"`
	MatchCacheTTLSec   int     `mapstructure:"MATCH_CACHE_TTL_SEC"`

	// Floating-task rematch worker.
	RematchIntervalMin int `mapstructure:"REMATCH_INTERVAL_MIN"`
	RematchBatchSize   int `mapstructure:"REMATCH_BATCH_SIZE"`
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

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "workhive")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_GEO_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("GEO_API_KEY", "")
	viper.SetDefault("GEO_BASE_URL", "https://maps.googleapis.com/maps/api")
	viper.SetDefault("GEO_TIMEOUT_SEC", 5)
	viper.SetDefault("GEO_VERIFY_CUTOFF_KM", 5.0)
	viper.SetDefault("GEO_TOLERANCE_KM", 2.0)
	viper.SetDefault("MATCH_MAX_DISTANCE_KM", 25.0)
	viper.SetDefault("MATCH_LIMIT", 20)
	viper.SetDefault("MATCH_CACHE_TTL_SEC", 300)
	viper.SetDefault("REMATCH_INTERVAL_MIN", 15)
	viper.SetDefault("REMATCH_BATCH_SIZE", 50)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// GeoTimeout returns the bounded timeout applied to geocoding calls.
func GeoTimeout() time.Duration {
	return time.Duration(AppConfig.GeoTimeoutSec) * time.Second
}

// MatchCacheTTL returns how long cached match results stay fresh.
func MatchCacheTTL() time.Duration {
	return time.Duration(AppConfig.MatchCacheTTLSec) * time.Second
}
