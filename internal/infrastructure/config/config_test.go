package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearHubEnv blanks the variables these tests touch; viper treats empty
// variables as unset.
func clearHubEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HUB_APP_NAME", "HUB_APP_ENV", "HUB_APP_PORT",
		"HUB_DATABASE_DRIVER", "HUB_DATABASE_HOST", "HUB_DATABASE_PORT",
		"HUB_DATABASE_PASSWORD", "HUB_DATABASE_MAX_OPEN_CONNS", "HUB_DATABASE_MAX_IDLE_CONNS",
		"HUB_ADAPTERS_CDE_ENABLED", "HUB_ADAPTERS_CDE_BASE_URL", "HUB_ADAPTERS_CDE_TIMEOUT",
		"HUB_ADAPTERS_CDE_ACCEPT_ALL", "HUB_ADAPTERS_ABC_ENABLED",
		"HUB_AGGREGATOR_ADAPTER_TIMEOUT", "HUB_BREAKER_MAX_FAILURES",
		"HUB_RECONCILER_SOURCE", "HUB_RECONCILER_REMOTE_URL",
		"HUB_HTTP_CORS_ALLOW_ORIGINS", "HUB_TELEMETRY_SAMPLING_RATIO",
		"HUB_TELEMETRY_DB_LOG_FULL_SQL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearHubEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "adapter-hub", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "products", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "http://localhost:5001", cfg.Adapters.Cde.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.Adapters.Cde.Timeout)
		assert.False(t, cfg.Adapters.Cde.AcceptAll)
		assert.Equal(t, 10*time.Second, cfg.Aggregator.AdapterTimeout)
		assert.Equal(t, uint32(3), cfg.Breaker.MaxFailures)
		assert.Equal(t, 30*time.Second, cfg.Breaker.OpenTimeout)
		assert.Equal(t, "local", cfg.Reconciler.Source)
		assert.Equal(t, 24*time.Hour, cfg.Sale.IdempotencyTTL)
		assert.Equal(t, "adapter-hub", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with HUB prefix", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_APP_PORT", "9000")
		t.Setenv("HUB_DATABASE_DRIVER", "sqlite")
		t.Setenv("HUB_ADAPTERS_CDE_ENABLED", "true")
		t.Setenv("HUB_ADAPTERS_CDE_BASE_URL", "https://cde.example.com")
		t.Setenv("HUB_ADAPTERS_CDE_TIMEOUT", "3s")
		t.Setenv("HUB_ADAPTERS_CDE_ACCEPT_ALL", "true")
		t.Setenv("HUB_AGGREGATOR_ADAPTER_TIMEOUT", "750ms")
		t.Setenv("HUB_BREAKER_MAX_FAILURES", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.True(t, cfg.Adapters.Cde.Enabled)
		assert.Equal(t, "https://cde.example.com", cfg.Adapters.Cde.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.Adapters.Cde.Timeout)
		assert.True(t, cfg.Adapters.Cde.AcceptAll)
		assert.Equal(t, 750*time.Millisecond, cfg.Aggregator.AdapterTimeout)
		assert.Equal(t, uint32(5), cfg.Breaker.MaxFailures)
	})

	t.Run("loads variables from a .env file", func(t *testing.T) {
		clearHubEnv(t)
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HUB_RECONCILER_INTERVAL=2m\n"), 0o600))
		t.Chdir(dir)
		t.Cleanup(func() { os.Unsetenv("HUB_RECONCILER_INTERVAL") })

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Minute, cfg.Reconciler.Interval)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("HUB_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects relative partner URL when enabled", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_ADAPTERS_CDE_ENABLED", "true")
		t.Setenv("HUB_ADAPTERS_CDE_BASE_URL", "cde.local")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "adapters.cde.base_url")
	})

	t.Run("remote reconciler source requires URL", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_RECONCILER_SOURCE", "remote")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconciler.remote_url")
	})

	t.Run("rejects unknown reconciler source", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_RECONCILER_SOURCE", "ftp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reconciler.source")
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("requires database.password in production", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("sqlite does not need a password", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_APP_ENV", "production")
		t.Setenv("HUB_DATABASE_DRIVER", "sqlite")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("rejects wildcard CORS in production", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_APP_ENV", "production")
		t.Setenv("HUB_DATABASE_PASSWORD", "secret")
		t.Setenv("HUB_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("rejects full SQL logging in production", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_APP_ENV", "production")
		t.Setenv("HUB_DATABASE_PASSWORD", "secret")
		t.Setenv("HUB_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("passes with valid production config", func(t *testing.T) {
		clearHubEnv(t)
		t.Setenv("HUB_APP_ENV", "production")
		t.Setenv("HUB_DATABASE_PASSWORD", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "hub", Password: "pw", DBName: "products", SSLMode: "disable"}

		dsn := cfg.DSN()
		assert.Equal(t, "postgres://hub:pw@localhost:5432/products?sslmode=disable", dsn)
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", cfg.Addr())
}
