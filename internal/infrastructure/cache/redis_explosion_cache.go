package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stockledger/internal/application/ports"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/pkg/config"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var _ ports.ExplosionCache = (*RedisExplosionCache)(nil)

const keyPrefix = "stockledger:explosion"

var errStaleGeneration = errors.New("generación de caché vencida")

// RedisExplosionCache guarda explosiones de BOM en Redis. Cada tenant tiene un contador
// de generación que forma parte de la clave: invalidar es un INCR y las entradas viejas
// quedan huérfanas hasta que vence su TTL.
type RedisExplosionCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisClient conecta y verifica Redis.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return client, nil
}

// NewRedisExplosionCache construye la caché sobre un cliente existente (el llamador lo cierra).
func NewRedisExplosionCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisExplosionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisExplosionCache{client: client, ttl: ttl, log: log.Component("explosion_cache")}
}

func generationKey(tenantID string) string {
	return fmt.Sprintf("%s:%s:gen", keyPrefix, tenantID)
}

func entryKey(tenantID string, gen int64, versionID string) string {
	return fmt.Sprintf("%s:%s:%d:%s", keyPrefix, tenantID, gen, versionID)
}

// getter lo cumplen el cliente y la transacción de WATCH.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *RedisExplosionCache) generation(ctx context.Context, g getter, tenantID string) (int64, error) {
	gen, err := g.Get(ctx, generationKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Generation devuelve la generación vigente del tenant.
func (c *RedisExplosionCache) Generation(ctx context.Context, tenantID string) (int64, bool) {
	gen, err := c.generation(ctx, c.client, tenantID)
	if err != nil {
		c.log.Warn().Err(err).Str("tenant_id", tenantID).Msg("leer generación de caché")
		return 0, false
	}
	return gen, true
}

// Get devuelve la explosión cacheada en la generación gen; cualquier falla cuenta como miss.
func (c *RedisExplosionCache) Get(ctx context.Context, tenantID string, gen int64, versionID string) ([]inventory.Requirement, bool) {
	data, err := c.client.Get(ctx, entryKey(tenantID, gen, versionID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("bom_version_id", versionID).Msg("leer explosión cacheada")
		}
		return nil, false
	}
	var reqs []inventory.Requirement
	if err := json.Unmarshal(data, &reqs); err != nil {
		c.log.Warn().Err(err).Str("bom_version_id", versionID).Msg("explosión cacheada corrupta")
		_ = c.client.Del(ctx, entryKey(tenantID, gen, versionID)).Err()
		return nil, false
	}
	return reqs, true
}

// Set guarda la explosión solo si la generación del tenant sigue siendo gen.
// WATCH sobre la clave de generación hace que un INCR concurrente aborte el EXEC.
func (c *RedisExplosionCache) Set(ctx context.Context, tenantID string, gen int64, versionID string, reqs []inventory.Requirement) {
	data, err := json.Marshal(reqs)
	if err != nil {
		return
	}
	genKey := generationKey(tenantID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, tenantID)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, entryKey(tenantID, gen, versionID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		c.log.Debug().Str("tenant_id", tenantID).Str("bom_version_id", versionID).Msg("explosión descartada: caché invalidada")
	default:
		c.log.Warn().Err(err).Str("bom_version_id", versionID).Msg("guardar explosión en caché")
	}
}

// InvalidateTenant avanza la generación del tenant.
func (c *RedisExplosionCache) InvalidateTenant(ctx context.Context, tenantID string) error {
	if err := c.client.Incr(ctx, generationKey(tenantID)).Err(); err != nil {
		return fmt.Errorf("invalidar caché de explosiones: %w", err)
	}
	return nil
}
