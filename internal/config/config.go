package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv        string `mapstructure:"APP_ENV"`
	Port          string `mapstructure:"PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RedisURL      string `mapstructure:"REDIS_URL"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// HTTP geolocation lookup
	GeoAPIURL          string `mapstructure:"GEO_API_URL"`
	GeoLookupTimeoutMS int    `mapstructure:"GEO_LOOKUP_TIMEOUT_MS"`
	GeoCacheTTLMin     int    `mapstructure:"GEO_CACHE_TTL_MIN"`

	// Optional local MaxMind database fast path
	MaxMindAccountID  string `mapstructure:"MAXMIND_ACCOUNT_ID"`
	MaxMindLicenseKey string `mapstructure:"MAXMIND_LICENSE_KEY"`
	MaxMindEditionIDs string `mapstructure:"MAXMIND_EDITION_IDS"`
	MaxMindDBPath     string `mapstructure:"GEOIP_DB_PATH"`
}

func LoadConfig() (config Config, err error) {
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_URL", "sqlite://linktrail.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("GEO_API_URL", "http://ip-api.com/json")
	viper.SetDefault("GEO_LOOKUP_TIMEOUT_MS", 2000)
	viper.SetDefault("GEO_CACHE_TTL_MIN", 60)
	viper.SetDefault("GEOIP_DB_PATH", "./geoip/GeoLite2-City.mmdb")
	viper.SetDefault("MAXMIND_EDITION_IDS", "GeoLite2-City")

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	return
}
