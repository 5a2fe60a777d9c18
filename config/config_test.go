package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dfworx/auth-service/config"
	"github.com/dfworx/auth-service/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  environment: staging
server:
  port: "9000"
  mode: test
jwt:
  secret: yaml_secret_that_is_long_enough_0123456789
  expiration_minutes: 30
password:
  bcrypt_cost: 4
`

func writeEnv(t *testing.T, name, content string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config", "envs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "envs", name+".yaml"), []byte(content), 0o600))
	t.Chdir(dir)
}

func TestLoad_FileOverDefaults(t *testing.T) {
	writeEnv(t, "test", testYAML)

	cfg, err := config.Load("test")

	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm, "default kept")
	assert.Equal(t, 30*time.Minute, cfg.TokenExpiry())
	assert.Equal(t, 4, cfg.Password.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	writeEnv(t, "test", testYAML)
	t.Setenv("JWT_SECRET_KEY", "env_secret_that_is_definitely_32_chars_long")
	t.Setenv("JWT_EXPIRATION_MINUTES", "15")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://auth:auth@db:5432/auth")

	cfg, err := config.Load("test")

	require.NoError(t, err)
	assert.Equal(t, "env_secret_that_is_definitely_32_chars_long", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.TokenExpiry())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres://auth:auth@db:5432/auth", cfg.PostgresDSN())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "short secret", env: map[string]string{"JWT_SECRET_KEY": "short"}},
		{name: "31 byte secret", env: map[string]string{"JWT_SECRET_KEY": strings.Repeat("a", 31)}},
		{name: "unsupported algorithm", env: map[string]string{"JWT_ALGORITHM": "RS256"}},
		{name: "non numeric expiry", env: map[string]string{"JWT_EXPIRATION_MINUTES": "soon"}},
		{name: "zero expiry", env: map[string]string{"JWT_EXPIRATION_MINUTES": "0"}},
		{name: "unknown environment", env: map[string]string{"ENVIRONMENT": "qa"}},
		{name: "postgres without host", env: map[string]string{"DB_DRIVER": "postgres"}},
		{name: "bcrypt cost too high", env: map[string]string{"BCRYPT_COST": "40"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			writeEnv(t, "test", testYAML)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load("test")
			assert.Nil(t, cfg)
			assert.Error(t, err)
		})
	}
}

func TestLoad_SecretMeasuredInBytes(t *testing.T) {
	writeEnv(t, "test", testYAML)
	// 16 runes, 32 bytes.
	secret := strings.Repeat("é", 16)
	t.Setenv("JWT_SECRET_KEY", secret)

	cfg, err := config.Load("test")
	require.NoError(t, err)

	_, err = auth.NewTokenService(auth.TokenConfig{
		Secret:    cfg.JWT.Secret,
		Algorithm: cfg.JWT.Algorithm,
		Expiry:    cfg.TokenExpiry(),
	})
	assert.NoError(t, err, "a secret the config accepts must build a token service")

	t.Setenv("JWT_SECRET_KEY", strings.Repeat("é", 15)+"a")
	_, err = config.Load("test")
	assert.Error(t, err, "31 bytes")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.Load("nope")
	assert.Error(t, err)
}

func TestPostgresDSN_FromFields(t *testing.T) {
	cfg := config.Default()
	cfg.DB.Host = "db"
	cfg.DB.Port = "5432"
	cfg.DB.User = "auth"
	cfg.DB.Password = "pw"
	cfg.DB.Name = "auth"

	assert.Equal(t, "host=db user=auth password=pw dbname=auth port=5432 sslmode=disable TimeZone=UTC", cfg.PostgresDSN())
}
