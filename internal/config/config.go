package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	DBDSN     string `envconfig:"DB_DSN" default:"storefront.db"`
	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
	LogFile   string `envconfig:"LOG_FILE" default:""`
}

func Load() Config {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("[config] %v", err)
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.LogFile)
	return cfg
}
