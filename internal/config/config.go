// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process-level settings the service binary needs.
type Config struct {
	Addr        string
	DatabaseURL string
	LogLevel    string
	LogFormat   string
	// Currency is the display currency used when formatting minor-unit
	// integers at the boundary. The engine itself is currency-agnostic.
	Currency string
	DevSeed  bool
}

// Load reads settings from the environment, falling back to a .env file when
// present. Environment variables always win.
func Load() Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CURRENCY", "USD")

	return Config{
		Addr:        v.GetString("ADDR"),
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
		Currency:    strings.ToUpper(strings.TrimSpace(v.GetString("CURRENCY"))),
		DevSeed:     v.GetBool("DEV_SEED"),
	}
}
