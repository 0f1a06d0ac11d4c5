package config

import (
	"os"
	"strconv"

	"bussen_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Request limits
	APIRateLimit   int
	APIRateWindow  int
	AuthRateLimit  int
	AuthRateWindow int
	RoomRateLimit  int
	RoomRateWindow int

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment, with .env as a fallback.
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		APIRateLimit:   intEnv("API_RATE_LIMIT", 60),
		APIRateWindow:  intEnv("API_RATE_WINDOW_SECONDS", 60),
		AuthRateLimit:  intEnv("AUTH_RATE_LIMIT", 5),
		AuthRateWindow: intEnv("AUTH_RATE_WINDOW_SECONDS", 60),
		RoomRateLimit:  intEnv("ROOM_RATE_LIMIT", 20),
		RoomRateWindow: intEnv("ROOM_RATE_WINDOW_SECONDS", 60),

		LogLevel: stringEnv("LOG_LEVEL", "info"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",
	}
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
