package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	// Store selects the persistence backend: "postgres" or "memory".
	Store string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret       string
	JWTExpiration   time.Duration
	SweepInterval   time.Duration
	ShutdownTimeout time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env file: %v", err)
	}

	dbPort := getEnvInt("DB_PORT", 5432)
	jwtExpHours := getEnvInt("JWT_EXPIRATION_HOURS", 24)
	sweepSeconds := getEnvInt("RESERVATION_SWEEP_SECONDS", 60)
	shutdownSeconds := getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 5)

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		Store: getEnv("STORE", "postgres"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpiration:   time.Duration(jwtExpHours) * time.Hour,
		SweepInterval:   time.Duration(sweepSeconds) * time.Second,
		ShutdownTimeout: time.Duration(shutdownSeconds) * time.Second,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt falls back on a malformed or non-positive value; every integer
// setting here is a port or a duration, and a zero interval would panic the
// sweep ticker.
func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("warning: invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}
