package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/4-in-a-row/engine/internal/service/bot"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string
	FrontendURL    string

	JWTSecret  string
	TokenTTL   time.Duration
	APIClients string

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	CleanupInterval      time.Duration
	RetentionDays        int

	RedisURL         string
	RedisPassword    string
	DecisionCacheTTL time.Duration

	KafkaBrokers     []string
	KafkaTopicEvents string
	KafkaUsername    string
	KafkaPassword    string

	BoardRows      int
	BoardColumns   int
	WinLength      int
	MoveTime       time.Duration
	ParallelSearch bool
	DefaultProfile string
}

const defaultJWTSecret = "your-secret-key-change-this-in-production"

// LoadConfig reads .env (if present) and then the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")

	// Frontend URL first, then any CSV extras
	allowedOrigins := []string{frontendURL}
	allowedOrigins = append(allowedOrigins, splitCSV(GetEnv("ALLOWED_ORIGINS", ""))...)

	return &Config{
		Port:           GetEnv("PORT", "8080"),
		Env:            GetEnv("ENV", "development"),
		AllowedOrigins: allowedOrigins,
		FrontendURL:    frontendURL,

		JWTSecret:  GetEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:   time.Duration(GetEnvAsInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		APIClients: GetEnv("API_CLIENTS", ""),

		DatabaseURL:          GetEnv("DATABASE_URL", GetEnv("DATABASE_URI", "")),
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		CleanupInterval:      GetEnvAsDuration("CLEANUP_INTERVAL", time.Hour),
		RetentionDays:        GetEnvAsInt("TOURNAMENT_RETENTION_DAYS", 30),

		RedisURL:         GetEnv("REDIS_URL", ""),
		RedisPassword:    GetEnv("REDIS_PASSWORD", ""),
		DecisionCacheTTL: time.Duration(GetEnvAsInt("DECISION_CACHE_TTL_SECONDS", 600)) * time.Second,

		KafkaBrokers:     splitCSV(GetEnv("KAFKA_BROKERS", "")),
		KafkaTopicEvents: GetEnv("KAFKA_TOPIC_EVENTS", "bot.events"),
		KafkaUsername:    GetEnv("KAFKA_USERNAME", ""),
		KafkaPassword:    GetEnv("KAFKA_PASSWORD", ""),

		BoardRows:      GetEnvAsInt("BOARD_ROWS", 6),
		BoardColumns:   GetEnvAsInt("BOARD_COLUMNS", 7),
		WinLength:      GetEnvAsInt("WIN_LENGTH", 4),
		MoveTime:       time.Duration(GetEnvAsInt("MOVE_TIME_MS", 800)) * time.Millisecond,
		ParallelSearch: GetEnvAsBool("PARALLEL_SEARCH", false),
		DefaultProfile: GetEnv("DEFAULT_PROFILE", bot.ProfileHard),
	}
}

// Validate catches settings that would only fail later at request time.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if _, err := bot.ParseProfile(c.DefaultProfile); err != nil {
		return fmt.Errorf("DEFAULT_PROFILE: %w", err)
	}
	if _, err := auth.ParseClients(c.APIClients); err != nil {
		return fmt.Errorf("API_CLIENTS: %w", err)
	}
	if c.MoveTime < 0 {
		return fmt.Errorf("MOVE_TIME_MS must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// EngineConfig maps the board and search settings onto the engine.
func (c *Config) EngineConfig() bot.EngineConfig {
	cfg := bot.DefaultEngineConfig()
	cfg.Rows = c.BoardRows
	cfg.Columns = c.BoardColumns
	cfg.WinLength = c.WinLength
	cfg.MoveTime = c.MoveTime
	cfg.Parallel = c.ParallelSearch
	return cfg
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsDuration accepts Go duration strings such as "90s" or "1h".
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration value for %s: %s, using default: %s", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
