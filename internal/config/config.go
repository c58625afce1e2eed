package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all runtime configuration for the server.
type Config struct {
	Port        string
	MongoURI    string
	MongoDBName string
	JWTSecret   string
	TokenExpiry time.Duration
	UploadDir   string
}

// LoadConfig reads configuration from the environment, loading a .env file if present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	expiryHours, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "24"))
	if err != nil {
		log.WithError(err).Warn("Invalid TOKEN_EXPIRY_HOURS, defaulting to 24")
		expiryHours = 24
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "freight_marketplace"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: time.Duration(expiryHours) * time.Hour,
		UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
