package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultsConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := defaultsConfig()

	assert.Equal(t, "portal-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 10*time.Hour, cfg.Cache.MasterDataTTL)
	assert.Equal(t, 3000, cfg.Reconcile.RowCap)
	assert.Equal(t, 30, cfg.Reconcile.ChunkSize)
	assert.Equal(t, 15, cfg.Reconcile.WorkerLimit)
	assert.Equal(t, 10*time.Minute, cfg.Reconcile.RunGuardTTL)
	assert.Equal(t, int64(20<<20), cfg.HTTP.MaxBodySize)
	assert.Equal(t, "", cfg.Redis.Host, "Redis stays off unless configured")
}

func TestApplyDefaults_DoesNotOverrideSetValues(t *testing.T) {
	cfg := &Config{}
	cfg.Reconcile.RowCap = 500
	cfg.App.Port = "9000"
	applyDefaults(cfg)

	assert.Equal(t, 500, cfg.Reconcile.RowCap)
	assert.Equal(t, "9000", cfg.App.Port)
}

func TestValidate(t *testing.T) {
	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, defaultsConfig().validate())
	})

	t.Run("idle conns cannot exceed open conns", func(t *testing.T) {
		cfg := defaultsConfig()
		cfg.Database.MaxIdleConns = 100
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("reconcile limits must be positive", func(t *testing.T) {
		cfg := defaultsConfig()
		cfg.Reconcile.ChunkSize = -1
		assert.Error(t, cfg.validate())

		cfg = defaultsConfig()
		cfg.Reconcile.WorkerLimit = -1
		assert.Error(t, cfg.validate())
	})

	t.Run("production requires a strong JWT secret", func(t *testing.T) {
		cfg := defaultsConfig()
		cfg.App.Env = "production"
		cfg.Database.Password = "secret"
		cfg.Database.SSLMode = "require"

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")

		cfg.JWT.Secret = "short"
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32 characters")

		cfg.JWT.Secret = strings.Repeat("s", 32)
		assert.NoError(t, cfg.validate())
	})

	t.Run("production rejects disabled SSL and empty password", func(t *testing.T) {
		cfg := defaultsConfig()
		cfg.App.Env = "production"
		cfg.JWT.Secret = strings.Repeat("s", 32)

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")

		cfg.Database.Password = "secret"
		err = cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "portal",
		Password: "p@ss/word",
		DBName:   "portal",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	assert.NotContains(t, dsn, "p@ss/word", "password must be escaped")
}
