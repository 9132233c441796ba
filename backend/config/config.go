package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Env       string
	Debug     bool
	LogFormat string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	StoreDriver         string
	JWTSecret           string
	ServerPort          string
	RollbarToken        string
	AnalyticsWindowDays int
}

// DSN returns the postgres connection string for gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:                 strings.ToUpper(v.GetString("ENV")),
		Debug:               v.GetBool("DEBUG"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		DBHost:              v.GetString("DB_HOST"),
		DBPort:              v.GetString("DB_PORT"),
		DBUser:              v.GetString("DB_USER"),
		DBPassword:          v.GetString("DB_PASSWORD"),
		DBName:              v.GetString("DB_NAME"),
		DBSSLMode:           v.GetString("DB_SSLMODE"),
		StoreDriver:         strings.ToLower(v.GetString("STORE_DRIVER")),
		JWTSecret:           v.GetString("JWT_SECRET"),
		ServerPort:          v.GetString("SERVER_PORT"),
		RollbarToken:        v.GetString("ROLLBAR_TOKEN"),
		AnalyticsWindowDays: v.GetInt("ANALYTICS_WINDOW_DAYS"),
	}

	switch cfg.StoreDriver {
	case StoreMemory, StorePostgres:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.AnalyticsWindowDays <= 0 {
		cfg.AnalyticsWindowDays = 30
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "DEV")
	v.SetDefault("DEBUG", true)
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "lms_console")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("JWT_SECRET", "secret")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ROLLBAR_TOKEN", "")
	v.SetDefault("ANALYTICS_WINDOW_DAYS", 30)
}
