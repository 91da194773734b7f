package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// CORSDisabled turns the CORS middleware off when used as the origin.
const CORSDisabled = "none"

type Config struct {
	Port        int           `env:"NOTEPAD_PORT"         envDefault:"5000"`
	DatabaseURL string        `env:"NOTEPAD_DATABASE_URL" envDefault:"notepad.db"`
	JWTSecret   string        `env:"NOTEPAD_JWT_SECRET,required,notEmpty"`
	TokenTTL    time.Duration `env:"NOTEPAD_TOKEN_TTL"    envDefault:"168h"`
	BcryptCost  int           `env:"NOTEPAD_BCRYPT_COST"  envDefault:"12"`
	LogLevel    string        `env:"NOTEPAD_LOG_LEVEL"    envDefault:"info"`
	LogFormat   string        `env:"NOTEPAD_LOG_FORMAT"   envDefault:"text"`
	CORSOrigin  string        `env:"NOTEPAD_CORS_ORIGIN"  envDefault:"*"`

	Backup Backup `envPrefix:"NOTEPAD_"`
}

// Backup is only needed by the backup and restore commands.
type Backup struct {
	Endpoint   string `env:"S3_ENDPOINT"`
	Bucket     string `env:"S3_BUCKET"`
	Region     string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKey  string `env:"S3_ACCESS_KEY"`
	SecretKey  string `env:"S3_SECRET_KEY"`
	Passphrase string `env:"BACKUP_PASSPHRASE"`
}

// Load reads the configuration from the process environment, falling back
// to values in the given dotenv files. Missing files are skipped and real
// environment variables always win.
func Load(dotenvFiles ...string) (*Config, error) {
	return loadWith(dotenvFiles, os.Environ())
}

func loadWith(dotenvFiles, environ []string) (*Config, error) {
	vars := make(map[string]string)
	for _, path := range dotenvFiles {
		fileVars, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		maps.Copy(vars, fileVars)
	}
	maps.Copy(vars, env.ToMap(environ))
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("NOTEPAD_PORT %d out of range", c.Port))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("NOTEPAD_DATABASE_URL must not be empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("NOTEPAD_JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("NOTEPAD_TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("NOTEPAD_BCRYPT_COST %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("NOTEPAD_LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("NOTEPAD_LOG_FORMAT %q is not one of text, json", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowedOrigin is the CORS origin to advertise, or "" when disabled.
func (c *Config) AllowedOrigin() string {
	if c.CORSOrigin == CORSDisabled {
		return ""
	}
	return c.CORSOrigin
}

// Validate reports what is missing for the backup commands to run.
func (b Backup) Validate() error {
	var errs []error
	if b.Bucket == "" {
		errs = append(errs, errors.New("NOTEPAD_S3_BUCKET is required"))
	}
	if (b.AccessKey == "") != (b.SecretKey == "") {
		errs = append(errs, errors.New("NOTEPAD_S3_ACCESS_KEY and NOTEPAD_S3_SECRET_KEY must be set together"))
	}
	if b.Passphrase == "" {
		errs = append(errs, errors.New("NOTEPAD_BACKUP_PASSPHRASE is required"))
	}
	return errors.Join(errs...)
}
