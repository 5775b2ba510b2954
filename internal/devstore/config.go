package devstore

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the devstore settings read from DEVSTORE_* variables
type Config struct {
	Addr      string
	DSN       string
	JWTSecret string
	TokenTTL  time.Duration
	UploadDir string
	LogLevel  string
	LogFile   string
	// MaxUploadMB bounds one multipart request
	MaxUploadMB int64
}

// LoadConfig reads .env files (missing files are ignored) and then the
// environment
func LoadConfig(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)

	return Config{
		Addr:        getEnvOrDefault("DEVSTORE_ADDR", ":5000"),
		DSN:         getEnvOrDefault("DEVSTORE_DSN", "devstore.db"),
		JWTSecret:   getEnvOrDefault("DEVSTORE_JWT_SECRET", "devstore-insecure-secret"),
		TokenTTL:    time.Duration(getEnvInt("DEVSTORE_TOKEN_TTL_HOURS", 24)) * time.Hour,
		UploadDir:   getEnvOrDefault("DEVSTORE_UPLOAD_DIR", "uploads"),
		LogLevel:    getEnvOrDefault("DEVSTORE_LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("DEVSTORE_LOG_FILE", "devstore.log"),
		MaxUploadMB: int64(getEnvInt("DEVSTORE_MAX_UPLOAD_MB", 50)),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return defaultValue
}
