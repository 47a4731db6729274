package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort        string        `mapstructure:"SERVER_PORT"`
	RateAPIURL        string        `mapstructure:"RATE_API_URL"`
	SeriesCacheTTL    time.Duration `mapstructure:"SERIES_CACHE_TTL"`
	RefreshInterval   time.Duration `mapstructure:"REFRESH_INTERVAL"`
	HistoryWindowDays int           `mapstructure:"HISTORY_WINDOW_DAYS"`
	ExchangePairs     string        `mapstructure:"EXCHANGE_PAIRS"`
	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("RATE_API_URL", "https://api.frankfurter.app/")
	viper.SetDefault("SERIES_CACHE_TTL", "24h")
	viper.SetDefault("REFRESH_INTERVAL", "1h")
	viper.SetDefault("HISTORY_WINDOW_DAYS", 365)
	viper.SetDefault("EXCHANGE_PAIRS", "EUR:USD,USD:JPY,EUR:GBP")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.AutomaticEnv()

	cfg := &Config{}
	cfg.ServerPort = viper.GetString("SERVER_PORT")
	cfg.RateAPIURL = viper.GetString("RATE_API_URL")
	cfg.ExchangePairs = viper.GetString("EXCHANGE_PAIRS")
	cfg.SeriesCacheTTL, _ = time.ParseDuration(viper.GetString("SERIES_CACHE_TTL"))
	cfg.RefreshInterval, _ = time.ParseDuration(viper.GetString("REFRESH_INTERVAL"))
	cfg.HistoryWindowDays = viper.GetInt("HISTORY_WINDOW_DAYS")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	log.Printf("Config loaded: %+v", cfg)
	return cfg, nil
}
