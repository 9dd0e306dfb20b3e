// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the process configuration. The signing secret is read once here
// and injected into the token service.
type Config struct {
	SecretKey           string        `env:"SECRET_KEY" validate:"required"`
	ServerAddr          string        `env:"SERVER_ADDR,default=:8080" validate:"required"`
	DatabasePath        string        `env:"DATABASE_PATH,default=messagely.db" validate:"required"`
	LogLevel            string        `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	TokenTTL            time.Duration `env:"TOKEN_TTL,default=24h" validate:"gte=0"`
	BcryptCost          int           `env:"BCRYPT_COST,default=12" validate:"min=4,max=31"`
	AuthRateLimit       int           `env:"AUTH_RATE_LIMIT,default=10" validate:"gt=0"`
	AuthRateWindow      time.Duration `env:"AUTH_RATE_WINDOW,default=1m" validate:"gt=0"`
	HideMissingMessages bool          `env:"HIDE_MISSING_MESSAGES,default=false"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
}

// Load reads an optional .env file from the working directory, then the
// process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return Parse(es)
}

// Parse builds a Config from an explicit set of variables.
func Parse(es env.EnvSet) (*Config, error) {
	var cfg Config
	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), redact(fe))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func redact(fe validator.FieldError) any {
	if fe.Field() == "SecretKey" {
		return "***"
	}
	return fe.Value()
}
