package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	IndexName     string // GSI1 - nickname lookups
	EventBusName  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// WebSocket configuration
	WebSocketEndpoint string
	ConnectionsTable  string
	ConnectionTTL     time.Duration

	// Storage backend: "dynamodb" or "memory" (local development)
	StorageBackend string
	StoreTimeout   time.Duration

	// Domain configuration
	MinimumResponses int
	RetentionDays    int

	// Rate limiting (requests per one-minute window)
	RateLimitLinkGeneration int
	RateLimitVoting         int
	RateLimitAPI            int

	// Cleanup endpoint shared secret
	CronSecret string

	// Logging
	LogLevel string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables. In development
// a .env file is read first so local runs need no exported variables.
func LoadConfig() (*Config, error) {
	if getEnv("ENVIRONMENT", "development") == "development" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "ap-northeast-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "prism"),
		IndexName:     getEnv("INDEX_NAME", "NicknameIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "prism-events"),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		// WebSocket configuration
		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),
		ConnectionsTable:  getEnv("CONNECTIONS_TABLE", "prism-connections"),
		ConnectionTTL:     getEnvDuration("CONNECTION_TTL", 2*time.Hour),

		StorageBackend: getEnv("STORAGE_BACKEND", "dynamodb"),
		StoreTimeout:   getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		// Domain configuration
		MinimumResponses: getEnvInt("MINIMUM_RESPONSES", 5),
		RetentionDays:    getEnvInt("RETENTION_DAYS", 7),

		// Rate limiting
		RateLimitLinkGeneration: getEnvInt("RATE_LIMIT_LINK_GENERATION", 5),
		RateLimitVoting:         getEnvInt("RATE_LIMIT_VOTING", 10),
		RateLimitAPI:            getEnvInt("RATE_LIMIT_API", 30),

		CronSecret: getEnv("CRON_SECRET", ""),

		// Logging and features
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "dynamodb", "memory":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be dynamodb or memory, got %q", c.StorageBackend)
	}

	if c.MinimumResponses < 1 {
		return fmt.Errorf("MINIMUM_RESPONSES must be at least 1")
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("RETENTION_DAYS must be at least 1")
	}

	if c.Environment == "production" {
		if c.StorageBackend != "dynamodb" {
			return fmt.Errorf("STORAGE_BACKEND must be dynamodb in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
		if c.CronSecret == "" {
			return fmt.Errorf("CRON_SECRET is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
