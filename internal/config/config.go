package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr           string
	MongoURI           string
	MongoDatabase      string
	JWTSecret          string
	JWTIssuer          string
	TokenTTL           time.Duration
	StoreTimeout       time.Duration
	RedisAddr          string
	RedisPassword      string
	LoginMaxAttempts   int
	LoginAttemptWindow time.Duration
	Environment        string
}

func Load() Config {
	return Config{
		HTTPAddr:           getenv("HTTP_ADDR", ":3000"),
		MongoURI:           getenv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:      getenv("MONGODB_DATABASE", "openlearn"),
		JWTSecret:          getenv("JWT_SECRET", "dev-secret"),
		JWTIssuer:          getenv("JWT_ISSUER", "openlearn-auth"),
		TokenTTL:           getenvDuration("TOKEN_TTL", 24*time.Hour),
		StoreTimeout:       getenvDuration("STORE_TIMEOUT", 5*time.Second),
		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		LoginMaxAttempts:   getenvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginAttemptWindow: getenvDuration("LOGIN_ATTEMPT_WINDOW", 15*time.Minute),
		Environment:        getenv("ENVIRONMENT", "development"),
	}
}

// Development reports whether internal error detail may be echoed to clients.
func (c Config) Development() bool {
	return c.Environment == "development"
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
