package ports

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/inventory"
)

// ExplosionCache guarda explosiones de BOM por versión. Una versión no cambia salvo
// por sustitución masiva, que invalida el tenant completo.
//
// Cada tenant tiene una generación. El llamador la lee con Generation antes de leer
// la BOM y la pasa a Get y Set: Set descarta la escritura si la generación avanzó,
// así una explosión calculada antes de una invalidación nunca queda cacheada.
// Generation devuelve ok=false si la caché no está disponible; Get devuelve ok=false
// ante cache miss o cualquier falla y el llamador recalcula.
type ExplosionCache interface {
	Generation(ctx context.Context, tenantID string) (gen int64, ok bool)
	Get(ctx context.Context, tenantID string, gen int64, versionID string) ([]inventory.Requirement, bool)
	Set(ctx context.Context, tenantID string, gen int64, versionID string, reqs []inventory.Requirement)
	InvalidateTenant(ctx context.Context, tenantID string) error
}

// NoopExplosionCache no guarda nada (Redis deshabilitado).
type NoopExplosionCache struct{}

func (NoopExplosionCache) Generation(context.Context, string) (int64, bool) { return 0, false }

func (NoopExplosionCache) Get(context.Context, string, int64, string) ([]inventory.Requirement, bool) {
	return nil, false
}

func (NoopExplosionCache) Set(context.Context, string, int64, string, []inventory.Requirement) {}

func (NoopExplosionCache) InvalidateTenant(context.Context, string) error { return nil }
