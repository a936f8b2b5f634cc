package config

import (
	"os"
	"strings"
)

// Config collects the environment settings the server needs at startup.
type Config struct {
	Port           string
	DatabaseURL    string
	ModelServerURL string
	AdminJWTSecret string
	MediaBucket    string
	AWSRegion      string
	AllowedOrigins []string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "5050"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ModelServerURL: getEnv("MODEL_SERVER_URL", "http://localhost:8501"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		MediaBucket:    os.Getenv("MEDIA_BUCKET"),
		AWSRegion:      getEnv("AWS_REGION", "eu-central-1"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
