package config

import (
	"fmt"
	"sync"

	"slotwise/core/constants"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Server    ServerConfig
		Database  DatabaseConfig
		Redis     RedisConfig
		JWT       JWTConfig
		GoogleAPI GoogleAPIConfig
		Booking   BookingConfig
		LogLevel  string
	}

	ServerConfig struct {
		Host string
		Port int
	}

	DatabaseConfig struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}

	JWTConfig struct {
		Secret        string
		ExpiryMinutes int
	}

	GoogleAPIConfig struct {
		ClientID     string
		ClientSecret string
		RedirectURL  string
	}

	// BookingConfig holds the engine policy knobs. Zero values fall back to
	// the defaults in core/constants.
	BookingConfig struct {
		WorkDayStartHour int
		WorkDayEndHour   int
		BucketMinutes    int
	}
)

var (
	instance *Config
	mu       sync.RWMutex
)

// Load reads .env (when present) and environment variables into the global
// config. Call once at startup before Get.
func Load() error {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 7070)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "slotwise")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_EXPIRY_MINUTES", 60)
	v.SetDefault("WORK_DAY_START_HOUR", constants.WorkDayStartHour)
	v.SetDefault("WORK_DAY_END_HOUR", constants.WorkDayEndHour)
	v.SetDefault("BUCKET_MINUTES", int(constants.DefaultBucketSize.Minutes()))
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			ExpiryMinutes: v.GetInt("JWT_EXPIRY_MINUTES"),
		},
		GoogleAPI: GoogleAPIConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		},
		Booking: BookingConfig{
			WorkDayStartHour: v.GetInt("WORK_DAY_START_HOUR"),
			WorkDayEndHour:   v.GetInt("WORK_DAY_END_HOUR"),
			BucketMinutes:    v.GetInt("BUCKET_MINUTES"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.Booking.WorkDayStartHour >= cfg.Booking.WorkDayEndHour {
		return fmt.Errorf("config: WORK_DAY_START_HOUR (%d) must be before WORK_DAY_END_HOUR (%d)",
			cfg.Booking.WorkDayStartHour, cfg.Booking.WorkDayEndHour)
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()
	return nil
}

// Get returns the loaded config. Panics when Load was never called; prefer
// GetSafe in code paths that can run before startup finishes.
func Get() *Config {
	cfg, ok := GetSafe()
	if !ok {
		panic("config: not initialized")
	}
	return cfg
}

func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}
