package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	GitLab   GitLabConfig
	DingTalk DingTalkConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GitLabConfig struct {
	BaseURL       string
	AccessToken   string
	ProjectID     int
	WebhookSecret string
	Timeout       time.Duration
}

type DingTalkConfig struct {
	WebhookURL string
	Secret     string
	Timeout    time.Duration
	BatchMode  bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
// Credential keys are allowed to be empty here; the pipeline rejects runs
// that need them, so a misconfigured process fails a request, not startup.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnvWithDefault("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvWithDefault("SERVER_PORT", "3000"),
			ReadTimeout:  getDurationFromEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationFromEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		GitLab: GitLabConfig{
			BaseURL:       getEnvWithDefault("GITLAB_URL", "https://gitlab.com"),
			AccessToken:   getEnvWithDefault("GITLAB_ACCESS_TOKEN", ""),
			ProjectID:     getIntFromEnv("GITLAB_PROJECT_ID", 0),
			WebhookSecret: getEnvWithDefault("GITLAB_WEBHOOK_SECRET", ""),
			Timeout:       getDurationFromEnv("GITLAB_TIMEOUT", 30*time.Second),
		},
		DingTalk: DingTalkConfig{
			WebhookURL: getEnvWithDefault("DINGTALK_WEBHOOK_URL", ""),
			Secret:     getEnvWithDefault("DINGTALK_SECRET", ""),
			Timeout:    getDurationFromEnv("DINGTALK_TIMEOUT", 30*time.Second),
			BatchMode:  getBoolFromEnv("DINGTALK_BATCH", false),
		},
		Logging: LoggingConfig{
			Level:  getEnvWithDefault("LOG_LEVEL", "info"),
			Format: getEnvWithDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntFromEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolFromEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationFromEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
