package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppMode       string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	JWTSecret     string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// WhatsApp bridge (WPPConnect-style HTTP service)
	BridgeURL        string
	BridgeSecretKey  string
	BridgeTimeoutSec int

	// Media storage
	S3Bucket           string
	S3Region           string
	MediaBaseURL       string
	MediaRetentionDays int

	// Global default applied to tickets whose AI mode is "inherit"
	AIEnabledDefault bool

	// Agent identities eligible for queue auto-assignment
	AgentIDs []string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:            getEnv("APP_PORT", "8080"),
		AppMode:            getEnv("APP_MODE", "debug"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBUser:             getEnv("DB_USER", "postgres"),
		DBPassword:         getEnv("DB_PASSWORD", "postgres"),
		DBName:             getEnv("DB_NAME", "atendezap"),
		DBPort:             getEnv("DB_PORT", "5432"),
		JWTSecret:          getEnv("JWT_SECRET", "change-me"),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		BridgeURL:          getEnv("BRIDGE_URL", "http://localhost:21465"),
		BridgeSecretKey:    getEnv("BRIDGE_SECRET_KEY", ""),
		BridgeTimeoutSec:   getEnvAsInt("BRIDGE_TIMEOUT_SEC", 15),
		S3Bucket:           getEnv("S3_BUCKET", "atendezap-media"),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		MediaBaseURL:       getEnv("MEDIA_BASE_URL", ""),
		MediaRetentionDays: getEnvAsInt("MEDIA_RETENTION_DAYS", 7),
		AIEnabledDefault:   getEnvAsBool("AI_ENABLED_DEFAULT", true),
		AgentIDs:           getEnvAsSlice("AGENT_IDS"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
