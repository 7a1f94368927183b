package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers    []string
	KafkaEventTopic string

	// Collaborator services
	NERServiceURL  string
	NERTimeout     time.Duration
	EntityCacheTTL time.Duration
	XRayServiceURL string
	XRayTimeout    time.Duration

	// Auth
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Redaction
	RedactionRulesPath string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 60*time.Second),
		MaxUploadBytes: int64(getIntEnv("MAX_UPLOAD_BYTES", 16*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "medanalyzer"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "medanalyzer123"),
		PostgresDB:       getEnv("POSTGRES_DB", "medanalyzer"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:    getStringSliceEnv("KAFKA_BROKERS", nil),
		KafkaEventTopic: getEnv("KAFKA_EVENT_TOPIC", "analyzer-events"),

		NERServiceURL:  getEnv("NER_SERVICE_URL", "http://localhost:5001"),
		NERTimeout:     getDuration("NER_TIMEOUT", 30*time.Second),
		EntityCacheTTL: getDuration("ENTITY_CACHE_TTL", 15*time.Minute),
		XRayServiceURL: getEnv("XRAY_SERVICE_URL", "http://localhost:5002"),
		XRayTimeout:    getDuration("XRAY_TIMEOUT", 60*time.Second),

		JWTSecret: getEnv("JWT_SECRET", "a_very_insecure_default_key_for_development_only"),
		JWTIssuer: getEnv("JWT_ISSUER", "medanalyzer"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		RedactionRulesPath: getEnv("REDACTION_RULES_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
