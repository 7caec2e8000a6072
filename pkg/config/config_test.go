package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/stockledger/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.App.StoreDriver)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.False(t, cfg.Ledger.AllowNegativeBackfill)
	assert.Equal(t, 1.5, cfg.Reorder.SafetyMultiplier)
	assert.Equal(t, 30*time.Second, cfg.Substitution.Timeout)
	assert.Equal(t, "weighted_average", cfg.Import.DefaultCostingMethod)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LEDGER_ALLOW_NEGATIVE_BACKFILL", "true")
	t.Setenv("LEDGER_MAX_RETRIES", "5")
	t.Setenv("SUBSTITUTION_TIMEOUT", "2s")
	t.Setenv("LEDGER_RETRY_BASE_DELAY", "50")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.Ledger.AllowNegativeBackfill)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Substitution.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Ledger.RetryBaseDelay)
}

func TestLoad_StoreDriverInvalido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mysql")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/ledger?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
