package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	AuthSecret  string   `mapstructure:"AUTH_SECRET"`

	// Scheduling policy. The slot grid and shift-duration bounds are clinic
	// policy, not engine constants, so they are injected from configuration.
	SlotGridMinutes int `mapstructure:"SLOT_GRID_MINUTES"`
	MinShiftHours   int `mapstructure:"MIN_SHIFT_HOURS"`
	MaxShiftHours   int `mapstructure:"MAX_SHIFT_HOURS"`

	// Number of (employee, month) shift buckets kept in the calendar cache.
	ShiftCacheSize int `mapstructure:"SHIFT_CACHE_SIZE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SLOT_GRID_MINUTES", 15)
	v.SetDefault("MIN_SHIFT_HOURS", 3)
	v.SetDefault("MAX_SHIFT_HOURS", 8)
	v.SetDefault("SHIFT_CACHE_SIZE", 512)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("SLOT_GRID_MINUTES")
	v.BindEnv("MIN_SHIFT_HOURS")
	v.BindEnv("MAX_SHIFT_HOURS")
	v.BindEnv("SHIFT_CACHE_SIZE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SlotGridMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_GRID_MINUTES must be positive, got %d", cfg.SlotGridMinutes)
	}
	if cfg.MinShiftHours <= 0 || cfg.MaxShiftHours < cfg.MinShiftHours {
		return nil, fmt.Errorf("invalid shift duration bounds: min=%d max=%d", cfg.MinShiftHours, cfg.MaxShiftHours)
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
