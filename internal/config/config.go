package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN       string
	JWTSecret   string
	HTTPAddr    string
	StaticDir   string
	Environment string
}

func Load() (*Config, error) {
	// Try to load a .env file; fall back to plain environment variables.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:       os.Getenv("DB_DSN"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		StaticDir:   os.Getenv("STATIC_DIR"),
		Environment: os.Getenv("ENV"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":3000"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "./public"
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	return cfg, nil
}
