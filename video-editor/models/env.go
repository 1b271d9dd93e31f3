package models

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ServiceEnv holds the settings the binaries read from the environment.
type ServiceEnv struct {
	Port              string
	MongoURI          string
	MongoDB           string
	ElevenLabsAPIKey  string
	VoiceID           string
	OutputDir         string
	ConfigPath        string
	LogLevel          string
	MaxConcurrentJobs int
}

// LoadServiceEnv loads the given .env files (".env" when none are named),
// skipping missing ones, then reads the environment. Variables already set
// in the process win over file values.
func LoadServiceEnv(files ...string) (ServiceEnv, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return ServiceEnv{}, err
		}
	}

	return ServiceEnv{
		Port:              GetEnv("PORT", "8080"),
		MongoURI:          GetEnv("MONGO_URI", ""),
		MongoDB:           GetEnv("MONGO_DB", "storyreel"),
		ElevenLabsAPIKey:  GetEnv("ELEVENLABS_API_KEY", ""),
		VoiceID:           GetEnv("VOICE_ID", ""),
		OutputDir:         GetEnv("OUTPUT_DIR", "output"),
		ConfigPath:        GetEnv("CONFIG_PATH", ""),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		MaxConcurrentJobs: GetEnvInt("MAX_CONCURRENT_JOBS", 2),
	}, nil
}

// ProjectConfig loads CONFIG_PATH, or returns the defaults when it is unset.
func (e ServiceEnv) ProjectConfig() (*ProjectConfig, error) {
	if e.ConfigPath == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(e.ConfigPath)
}

// GetEnv gets an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an environment variable as integer with a default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
