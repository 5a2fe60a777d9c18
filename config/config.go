package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Name        string `yaml:"name" validate:"required"`
		Environment string `yaml:"environment" validate:"oneof=development staging production"`
	} `yaml:"app"`
	Server struct {
		Host                   string   `yaml:"host"`
		Port                   string   `yaml:"port" validate:"required,numeric"`
		Mode                   string   `yaml:"mode" validate:"oneof=debug release test"`
		RequestTimeoutSeconds  int      `yaml:"request_timeout_seconds" validate:"gte=0"`
		ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds" validate:"gte=0"`
		CORSOrigins            []string `yaml:"cors_origins"`
	} `yaml:"server"`
	DB struct {
		Driver                string `yaml:"driver" validate:"oneof=sqlite postgres"`
		Path                  string `yaml:"path" validate:"required_if=Driver sqlite"`
		URL                   string `yaml:"url"`
		Host                  string `yaml:"host"`
		Port                  string `yaml:"port"`
		User                  string `yaml:"user"`
		Password              string `yaml:"password"`
		Name                  string `yaml:"name"`
		ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds" validate:"gte=0"`
	} `yaml:"db"`
	JWT struct {
		Secret            string `yaml:"secret" validate:"required,min_bytes=32"`
		Algorithm         string `yaml:"algorithm" validate:"oneof=HS256 HS384 HS512"`
		ExpirationMinutes int    `yaml:"expiration_minutes" validate:"gt=0"`
		LeewaySeconds     int    `yaml:"leeway_seconds" validate:"gte=0"`
		Issuer            string `yaml:"issuer"`
	} `yaml:"jwt"`
	Password struct {
		BcryptCost    int `yaml:"bcrypt_cost" validate:"gte=4,lte=31"`
		MaxConcurrent int `yaml:"max_concurrent" validate:"gte=0"`
	} `yaml:"password"`
	Log struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
	} `yaml:"log"`
}

func Default() *Config {
	var cfg Config
	cfg.App.Name = "DFWorX Auth Service"
	cfg.App.Environment = "development"
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "8000"
	cfg.Server.Mode = "release"
	cfg.Server.RequestTimeoutSeconds = 10
	cfg.Server.ShutdownTimeoutSeconds = 15
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = "./data/auth.db"
	cfg.DB.ConnectTimeoutSeconds = 30
	cfg.JWT.Algorithm = "HS256"
	cfg.JWT.ExpirationMinutes = 60
	cfg.Password.BcryptCost = 12
	cfg.Log.Level = "info"
	return &cfg
}

// Load reads config/envs/<env>.yaml on top of the defaults, then applies
// .env and process environment overrides, then validates.
func Load(env string) (*Config, error) {
	if env == "" {
		env = "local"
	}

	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	configPath := filepath.Join("config", "envs", env+".yaml")
	if err := cfg.decodeFile(configPath); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("loaded configuration", "env", env, "path", configPath)
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("ENVIRONMENT", &c.App.Environment)
	setString("SERVER_HOST", &c.Server.Host)
	setString("SERVER_PORT", &c.Server.Port)
	setString("SERVER_MODE", &c.Server.Mode)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = splitList(origins)
	}

	setString("DB_DRIVER", &c.DB.Driver)
	setString("DB_PATH", &c.DB.Path)
	setString("DATABASE_URL", &c.DB.URL)
	setString("DB_HOST", &c.DB.Host)
	setString("DB_PORT", &c.DB.Port)
	setString("DB_USER", &c.DB.User)
	setString("DB_PASSWORD", &c.DB.Password)
	setString("DB_NAME", &c.DB.Name)

	setString("JWT_SECRET_KEY", &c.JWT.Secret)
	setString("JWT_ALGORITHM", &c.JWT.Algorithm)
	setString("JWT_ISSUER", &c.JWT.Issuer)
	setString("LOG_LEVEL", &c.Log.Level)

	for key, dst := range map[string]*int{
		"JWT_EXPIRATION_MINUTES": &c.JWT.ExpirationMinutes,
		"JWT_LEEWAY_SECONDS":     &c.JWT.LeewaySeconds,
		"BCRYPT_COST":            &c.Password.BcryptCost,
		"HASH_MAX_CONCURRENT":    &c.Password.MaxConcurrent,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	return nil
}

var configValidator = newValidator()

// newValidator adds min_bytes, which bounds len() of a string. The built-in
// min counts runes, while HMAC key strength is measured in bytes.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("min_bytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) >= n
	})
	return v
}

func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DB.Driver == "postgres" && c.DB.URL == "" && c.DB.Host == "" {
		return fmt.Errorf("invalid config: postgres requires db.url or db.host")
	}
	return nil
}

func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.JWT.ExpirationMinutes) * time.Minute
}

func (c *Config) TokenLeeway() time.Duration {
	return time.Duration(c.JWT.LeewaySeconds) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.DB.ConnectTimeoutSeconds) * time.Second
}

// PostgresDSN prefers DATABASE_URL and falls back to the discrete fields.
func (c *Config) PostgresDSN() string {
	if c.DB.URL != "" {
		return c.DB.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DB.Host,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.Port,
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
