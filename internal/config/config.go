package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env         string
	AppSecret   string
	DBDriver    string // postgres 或 sqlite
	DatabaseURL string
	Port        string
	SiteName    string
	LogLevel    string

	AdminPIN         string
	AdminTokenExpiry time.Duration

	TMDBAPIKey  string
	TMDBToken   string
	TMDBBaseURL string
	TMDBRegion  string
	TMDBTimeout time.Duration

	ViewRetentionDays int
}

// Load 加载配置
func Load() *Config {
	tokenHours := getEnvInt("ADMIN_TOKEN_HOURS", 72)
	tmdbTimeout := getEnvInt("TMDB_TIMEOUT_SECONDS", 8)

	driver := getEnv("DB_DRIVER", "postgres")
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL == "" {
		if driver == "sqlite" {
			dbURL = getEnv("SQLITE_PATH", "where2watch.db")
		} else {
			dbUser := getEnv("DB_USER", "postgres")
			dbPass := getEnv("DB_PASSWORD", "postgres")
			dbHost := getEnv("DB_HOST", "localhost")
			dbPort := getEnv("DB_PORT", "5432")
			dbName := getEnv("DB_NAME", "where2watch")
			dbSSL := getEnv("DB_SSLMODE", "disable")
			dbURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)
		}
	}

	env := getEnv("APP_ENV", "development")
	appSecret := getEnv("APP_SECRET", defaultSecret)

	return &Config{
		Env:               env,
		AppSecret:         appSecret,
		DBDriver:          driver,
		DatabaseURL:       dbURL,
		Port:              getEnv("PORT", "5005"),
		SiteName:          getEnv("SITE_NAME", "Where 2 Watch"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AdminPIN:          getEnv("ADMIN_PIN", "1234"),
		AdminTokenExpiry:  time.Duration(tokenHours) * time.Hour,
		TMDBAPIKey:        getEnv("TMDB_API_KEY", ""),
		TMDBToken:         getEnv("TMDB_TOKEN", ""),
		TMDBBaseURL:       getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBRegion:        getEnv("TMDB_REGION", "US"),
		TMDBTimeout:       time.Duration(tmdbTimeout) * time.Second,
		ViewRetentionDays: getEnvInt("VIEW_RETENTION_DAYS", 90),
	}
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDefaultSecret 生产环境仍使用默认密钥时需要告警
func (c *Config) UsesDefaultSecret() bool {
	return c.AppSecret == defaultSecret
}

// TMDBConfigured 是否配置了 TMDB 凭证
func (c *Config) TMDBConfigured() bool {
	return c.TMDBAPIKey != "" || c.TMDBToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}
