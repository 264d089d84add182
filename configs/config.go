package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	RedisAddr       string
	JWTSecret       string
	ProblemsPath    string
	OctavePath      string
	OctaveWorkDir   string
	OctaveTimeout   time.Duration
	NumberOfWorkers int
}

// LoadConfig reads configuration from a .env file (if present) and
// environment variables, applying defaults for anything missing.
func LoadConfig() *Config {
	// Missing .env is fine in production, everything can come from the environment.
	_ = godotenv.Load()

	return &Config{
		ServerPort:      envOr("SERVER_PORT", "3000"),
		DBHost:          envOr("DB_HOST", "localhost"),
		DBPort:          envOr("DB_PORT", "3306"),
		DBUser:          envOr("DB_USER", "bananaprep"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          envOr("DB_NAME", "bananaprep"),
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ProblemsPath:    envOr("PROBLEMS_PATH", "data/problems.json"),
		OctavePath:      envOr("OCTAVE_PATH", "octave"),
		OctaveWorkDir:   envOr("OCTAVE_WORK_DIR", "/tmp/bananaprep-octave"),
		OctaveTimeout:   time.Duration(envIntOr("OCTAVE_TIMEOUT_SECONDS", 10)) * time.Second,
		NumberOfWorkers: envIntOr("NUM_OF_WORKERS", 2),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
