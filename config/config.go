package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	ServerPort  string
	MongoURI    string
	MongoDBName string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	LogFile     string
	LogLevel    string
	LogStdout   bool
	Store       string
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is fine; real deployments set variables directly.
	_ = godotenv.Load(envFiles...)
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "4000"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDBName: getEnv("MONGO_DB_NAME", "taskboard"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogFile:     getEnv("LOG_FILE", "logs/taskboard.log"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Store:       strings.ToLower(getEnv("STORE", StoreMongo)),
	}

	var errs []error

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "120h"))
	if err != nil || ttl <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be a positive duration"))
	}
	cfg.TokenTTL = ttl

	stdout, err := strconv.ParseBool(getEnv("LOG_STDOUT", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_STDOUT must be a boolean"))
	}
	cfg.LogStdout = stdout

	for _, origin := range strings.Split(getEnv("CORS_ORIGIN", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be numeric, got %q", cfg.ServerPort))
	}
	switch cfg.Store {
	case StoreMongo:
		if cfg.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when STORE=mongo"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreMongo, StoreMemory, cfg.Store))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.ServerPort
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
