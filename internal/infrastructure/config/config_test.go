package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "appsnxt-platform", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "authenticated", cfg.Auth.JWTAudience)
	assert.Equal(t, 10*time.Second, cfg.Auth.RequestTimeout)
	assert.Equal(t, "platform:tasks", cfg.Tasks.QueueKey)
	assert.Equal(t, 5*time.Second, cfg.Tasks.PollInterval)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodySize)
	assert.Equal(t, 5, cfg.HTTP.AuthRateLimitRequests)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
}

func TestValidate_PoolSettings(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.MaxIdleConns = 50

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_conns")
}

func TestValidate_ProductionRequiresSecrets(t *testing.T) {
	cfg := defaultConfig()
	cfg.App.Env = "production"

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.jwt_secret")
}

func productionConfig() *Config {
	cfg := defaultConfig()
	cfg.App.Env = "production"
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.Auth.AnonKey = "anon-key"
	cfg.Database.Password = "secret"
	cfg.Database.SSLMode = "require"
	cfg.Swagger.Enabled = false
	return cfg
}

func TestValidate_ProductionOK(t *testing.T) {
	require.NoError(t, productionConfig().validate())
}

func TestValidate_ProductionShortSecret(t *testing.T) {
	cfg := productionConfig()
	cfg.Auth.JWTSecret = "short"

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func TestValidate_ProductionWildcardCORS(t *testing.T) {
	cfg := productionConfig()
	cfg.HTTP.CORSAllowOrigins = []string{"*"}

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cors_allow_origins")
}

func TestValidate_ProductionUnprotectedSwagger(t *testing.T) {
	cfg := productionConfig()
	cfg.Swagger.Enabled = true

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "swagger")
}

func TestValidate_SamplingRatio(t *testing.T) {
	cfg := defaultConfig()
	cfg.Telemetry.SamplingRatio = 1.5

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sampling_ratio")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "svc",
		Password: "p@ss/word",
		DBName:   "platform",
		SSLMode:  "require",
	}

	dsn := d.DSN()

	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5433")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}
