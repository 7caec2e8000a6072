package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/infrastructure/cache"
	"github.com/jhoicas/stockledger/pkg/config"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisCache(t *testing.T) *cache.RedisExplosionCache {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con Redis omitida en -short")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client, err := cache.NewRedisClient(ctx, config.RedisConfig{Addr: endpoint})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisExplosionCache(client, time.Minute, logger.Nop())
}

func TestRedisExplosionCache_GetSetInvalidate(t *testing.T) {
	c := newRedisCache(t)
	ctx := context.Background()
	reqs := []inventory.Requirement{
		{ComponentID: "A", QuantityPerParentUnit: decimal.RequireFromString("2.5"), Depth: 1, Leaf: true},
		{ComponentID: "B", QuantityPerParentUnit: decimal.NewFromInt(4), Depth: 2, Leaf: true},
	}

	gen, ok := c.Generation(ctx, "t1")
	require.True(t, ok)
	_, ok = c.Get(ctx, "t1", gen, "v1")
	assert.False(t, ok, "sin entrada es miss")

	c.Set(ctx, "t1", gen, "v1", reqs)
	got, ok := c.Get(ctx, "t1", gen, "v1")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ComponentID)
	assert.True(t, got[0].QuantityPerParentUnit.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 2, got[1].Depth)

	gen2, ok := c.Generation(ctx, "t2")
	require.True(t, ok)
	_, ok = c.Get(ctx, "t2", gen2, "v1")
	assert.False(t, ok, "las claves son por tenant")

	require.NoError(t, c.InvalidateTenant(ctx, "t1"))
	next, ok := c.Generation(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, gen+1, next)
	_, ok = c.Get(ctx, "t1", next, "v1")
	assert.False(t, ok, "la invalidación descarta las entradas del tenant")
}

func TestRedisExplosionCache_SetDescartaExplosionCalculadaAntesDeInvalidar(t *testing.T) {
	c := newRedisCache(t)
	ctx := context.Background()
	viejo := []inventory.Requirement{{ComponentID: "VIEJO", QuantityPerParentUnit: decimal.NewFromInt(1), Depth: 1, Leaf: true}}

	// Lectura previa a la mutación de la BOM.
	gen, ok := c.Generation(ctx, "t1")
	require.True(t, ok)
	_, ok = c.Get(ctx, "t1", gen, "v1")
	require.False(t, ok)

	// La mutación confirma e invalida mientras la explosión vieja se calculaba.
	require.NoError(t, c.InvalidateTenant(ctx, "t1"))
	c.Set(ctx, "t1", gen, "v1", viejo)

	next, ok := c.Generation(ctx, "t1")
	require.True(t, ok)
	_, ok = c.Get(ctx, "t1", next, "v1")
	assert.False(t, ok, "la explosión vieja no queda visible en la generación nueva")
	_, ok = c.Get(ctx, "t1", gen, "v1")
	assert.False(t, ok, "tampoco se escribe en la generación vencida")
}
