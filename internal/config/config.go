package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the API server and the analyzer service.
type Config struct {
	Env               string        `env:"COLORMATCH_ENV"                 envDefault:"development"`
	HTTPAddr          string        `env:"COLORMATCH_HTTP_ADDR"           envDefault:":8080"`
	GRPCAddr          string        `env:"COLORMATCH_GRPC_ADDR"           envDefault:":50051"`
	AnalyzerAddr      string        `env:"COLORMATCH_ANALYZER_ADDR"`
	RedisAddr         string        `env:"COLORMATCH_REDIS_ADDR"`
	CacheTTL          time.Duration `env:"COLORMATCH_CACHE_TTL"           envDefault:"10m"`
	MaxUploadBytes    int64         `env:"COLORMATCH_MAX_UPLOAD_BYTES"    envDefault:"5242880"`
	MaxImageDimension int           `env:"COLORMATCH_MAX_IMAGE_DIMENSION" envDefault:"1024"`
	AnalysisTimeout   time.Duration `env:"COLORMATCH_ANALYSIS_TIMEOUT"    envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"COLORMATCH_SHUTDOWN_TIMEOUT"    envDefault:"15s"`
	LogLevel          string        `env:"COLORMATCH_LOG_LEVEL"           envDefault:"info"`
	OTelEndpoint      string        `env:"COLORMATCH_OTEL_ENDPOINT"`
	OTelEnabled       bool          `env:"COLORMATCH_OTEL_ENABLED"        envDefault:"true"`
}

// Production reports whether the process runs with production settings.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads the configuration from the environment. Outside production a .env file in
// the working directory is loaded first; its absence is not an error.
func Load() (Config, error) {
	if os.Getenv("COLORMATCH_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the servers cannot run with.
func (c Config) Validate() error {
	switch {
	case c.HTTPAddr == "":
		return errors.New("COLORMATCH_HTTP_ADDR must not be empty")
	case c.MaxUploadBytes <= 0:
		return errors.New("COLORMATCH_MAX_UPLOAD_BYTES must be positive")
	case c.MaxImageDimension < 64:
		return errors.New("COLORMATCH_MAX_IMAGE_DIMENSION must be at least 64")
	case c.AnalysisTimeout <= 0:
		return errors.New("COLORMATCH_ANALYSIS_TIMEOUT must be positive")
	case c.CacheTTL <= 0:
		return errors.New("COLORMATCH_CACHE_TTL must be positive")
	}
	return nil
}
