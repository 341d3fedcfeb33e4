package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort         string
	FirebaseProject    string
	FirebaseAPIKey     string
	ServiceAccountPath string
	ServiceAccountJSON string
	StorageBucket      string
	Environment        string
	StoreBackend       string
	LogLevel           string
	UploadFolder       string
	MaxUploadFiles     int
	MessagesPerMinute  int
	AllowedOrigins     []string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FirebaseProject:    getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseAPIKey:     getEnv("FIREBASE_API_KEY", ""),
		ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", ""),
		Environment:        getEnv("ENVIRONMENT", "development"),
		StoreBackend:       getEnv("STORE_BACKEND", "firestore"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		UploadFolder:       getEnv("UPLOAD_FOLDER", "listings"),
		MaxUploadFiles:     getEnvAsInt("MAX_UPLOAD_FILES", 10),
		MessagesPerMinute:  getEnvAsInt("MESSAGES_PER_MINUTE", 10),
		AllowedOrigins:     getEnvAsList("ALLOWED_ORIGINS"),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// UseMemoryStore selects the in-process document store instead of Firestore.
func (c *Config) UseMemoryStore() bool {
	return c.StoreBackend == "memory"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
