package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port           string
	RedisURL       string
	ConfigPath     string
	ReloadInterval time.Duration
	IsProduction   bool

	// Upstream provider base URLs, overridable for tests and mirrors.
	CBRAPIURL      string
	CurrencyAPIURL string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("CONFIG_PATH", "config.yml")
	viper.SetDefault("CONFIG_RELOAD_INTERVAL", "5s")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("CBR_API_URL", "https://www.cbr-xml-daily.ru")
	viper.SetDefault("CURRENCY_API_URL", "https://cdn.jsdelivr.net")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.RedisURL = viper.GetString("REDIS_URL")
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL environment variable not set. Cache will be disabled.")
	}

	cfg.ConfigPath = viper.GetString("CONFIG_PATH")

	reloadStr := viper.GetString("CONFIG_RELOAD_INTERVAL")
	reloadInterval, err := time.ParseDuration(reloadStr)
	if err != nil {
		reloadInterval = 5 * time.Second
		if reloadStr != "" {
			log.Printf("Warning: Invalid value for CONFIG_RELOAD_INTERVAL ('%s'). Defaulting to %s.\n", reloadStr, reloadInterval)
		}
	}
	cfg.ReloadInterval = reloadInterval

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.CBRAPIURL = viper.GetString("CBR_API_URL")
	cfg.CurrencyAPIURL = viper.GetString("CURRENCY_API_URL")

	return cfg, nil
}
