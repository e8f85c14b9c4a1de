package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `env:"ENV"          envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT"         envDefault:"5000"  validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"  validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10" validate:"min=1"`

	JWTSecret  string        `env:"JWT_SECRET,required" validate:"required,min=32"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10" validate:"min=4,max=31"`

	MailProvider    string        `env:"MAIL_PROVIDER"         envDefault:"log" validate:"oneof=log resend ses"`
	MailFrom        string        `env:"MAIL_FROM"                              validate:"required_unless=MailProvider log"`
	MailSendTimeout time.Duration `env:"MAIL_SEND_TIMEOUT"     envDefault:"30s" validate:"min=1s"`
	ResendAPIKey    string        `env:"RESEND_API_KEY"                         validate:"required_if=MailProvider resend"`
	AWSRegion       string        `env:"AWS_REGION"                             validate:"required_if=MailProvider ses"`
	AWSAccessKeyID  string        `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey    string        `env:"AWS_SECRET_ACCESS_KEY"                  validate:"required_with=AWSAccessKeyID"`

	HealthProbeSpec string `env:"HEALTH_PROBE_SPEC" envDefault:"@every 30s" validate:"required"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// The log provider writes message bodies, temporary passwords included,
	// to the logs and delivers nothing.
	if cfg.MailProvider == "log" && cfg.Env != "local" {
		return nil, fmt.Errorf("invalid config: MAIL_PROVIDER=log is only allowed with ENV=local, got ENV=%s", cfg.Env)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
