// Package substitution reemplaza un componente por otro en todas las BOMs activas
// que lo usan, de forma atómica.
package substitution

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/stockledger/internal/application/ports"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/jhoicas/stockledger/pkg/retry"
)

// Config límites de la sustitución masiva.
type Config struct {
	Timeout     time.Duration
	MaxPageSize int
	Retry       retry.Config
}

// UseCase vista previa y ejecución de sustituciones masivas.
type UseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	cache    ports.ExplosionCache
	cfg      Config
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, cache ports.ExplosionCache, cfg Config, log *logger.Logger) *UseCase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cache == nil {
		cache = ports.NoopExplosionCache{}
	}
	return &UseCase{txRunner: txRunner, store: store, cache: cache, cfg: cfg, log: log.Component("substitution")}
}

// PreviewPage página de BOMs activas afectadas.
type PreviewPage struct {
	Items  []repository.AffectedBOM
	Total  int
	Limit  int
	Offset int
}

// Preview lista las versiones activas que usan el componente. scope vacío = todas las ubicaciones.
func (uc *UseCase) Preview(ctx context.Context, tenantID, oldComponentID, scope string, limit, offset int) (*PreviewPage, error) {
	if tenantID == "" || oldComponentID == "" || offset < 0 {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > uc.cfg.MaxPageSize {
		limit = uc.cfg.MaxPageSize
	}
	if _, err := uc.store.Products.GetByID(ctx, tenantID, oldComponentID); err != nil {
		return nil, domain.Wrap("substitution preview", oldComponentID, scope, err)
	}
	items, total, err := uc.store.BOMs.FindByComponent(ctx, tenantID, oldComponentID, scope, limit, offset)
	if err != nil {
		return nil, domain.Wrap("substitution preview", oldComponentID, scope, err)
	}
	return &PreviewPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// Input sustitución a ejecutar.
type Input struct {
	TenantID       string
	ActorID        string
	OldComponentID string
	NewComponentID string
	Scope          string
}

// Result resumen de la sustitución.
type Result struct {
	AffectedLines int64
	AffectedBOMs  int
}

// Execute bloquea solo las líneas afectadas, valida que ningún padre quede en ciclo con
// el componente nuevo y reemplaza en un único UPDATE. Un ciclo en cualquier padre
// rechaza el lote completo. El plazo Timeout cancela y revierte.
func (uc *UseCase) Execute(ctx context.Context, in Input) (*Result, error) {
	if in.TenantID == "" || in.OldComponentID == "" || in.NewComponentID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.OldComponentID == in.NewComponentID {
		return nil, domain.ErrInvalidInput
	}
	if _, err := uc.store.Products.GetByID(ctx, in.TenantID, in.OldComponentID); err != nil {
		return nil, domain.Wrap("substitution", in.OldComponentID, in.Scope, err)
	}
	replacement, err := uc.store.Products.GetByID(ctx, in.TenantID, in.NewComponentID)
	if err != nil {
		return nil, domain.Wrap("substitution", in.NewComponentID, in.Scope, err)
	}
	if replacement.Retired {
		return nil, domain.Wrap("substitution", in.NewComponentID, in.Scope, domain.ErrInvalidInput)
	}
	if in.Scope != "" {
		if _, err := uc.store.Locations.GetByID(ctx, in.TenantID, in.Scope); err != nil {
			return nil, domain.Wrap("substitution", in.OldComponentID, in.Scope, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	var res Result
	attempts, err := retry.Do(ctx, uc.cfg.Retry, domain.IsRetryable, func(int) error {
		return uc.txRunner.RunSerializable(ctx, func(store repository.Store) error {
			r, err := uc.execute(ctx, store, in)
			if err == nil {
				res = r
			}
			return err
		})
	})
	if errors.Is(err, context.DeadlineExceeded) {
		uc.log.Warn().
			Str("tenant_id", in.TenantID).
			Str("old_component_id", in.OldComponentID).
			Dur("timeout", uc.cfg.Timeout).
			Msg("sustitución cancelada por tiempo")
	}
	if err != nil {
		return nil, domain.Wrap("substitution", in.OldComponentID, in.Scope, err)
	}
	if res.AffectedLines > 0 {
		if err := uc.cache.InvalidateTenant(context.WithoutCancel(ctx), in.TenantID); err != nil {
			uc.log.Warn().Err(err).Str("tenant_id", in.TenantID).Msg("no se pudo invalidar cache de explosiones")
		}
	}
	uc.log.Info().
		Str("tenant_id", in.TenantID).
		Str("actor_id", in.ActorID).
		Str("old_component_id", in.OldComponentID).
		Str("new_component_id", in.NewComponentID).
		Str("scope", in.Scope).
		Int64("affected_lines", res.AffectedLines).
		Int("affected_boms", res.AffectedBOMs).
		Int("attempts", attempts).
		Msg("sustitución aplicada")
	return &res, nil
}

func (uc *UseCase) execute(ctx context.Context, store repository.Store, in Input) (Result, error) {
	locked, err := store.BOMs.LockLinesByComponent(ctx, in.TenantID, in.OldComponentID, in.Scope)
	if err != nil {
		return Result{}, err
	}
	if len(locked) == 0 {
		return Result{}, nil
	}
	lineIDs := make([]string, 0, len(locked))
	seen := make(map[string]bool)
	var parents []string
	for _, l := range locked {
		lineIDs = append(lineIDs, l.ID)
		if !seen[l.ParentProductID] {
			seen[l.ParentProductID] = true
			parents = append(parents, l.ParentProductID)
		}
	}
	sort.Strings(parents)

	active, err := store.BOMs.ListActiveLines(ctx, in.TenantID)
	if err != nil {
		return Result{}, err
	}
	graph := inventory.NewGraph(active)
	if in.Scope == "" {
		graph.Substitute(in.OldComponentID, in.NewComponentID, parents)
	} else {
		// Las líneas de otras ubicaciones conservan el componente anterior.
		for _, p := range parents {
			graph.AddComponents(p, []string{in.NewComponentID})
		}
	}
	for _, p := range parents {
		if err := graph.ValidateAcyclic(p, []string{in.NewComponentID}); err != nil {
			return Result{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	n, err := store.BOMs.ReplaceComponent(ctx, in.TenantID, lineIDs, in.NewComponentID)
	if err != nil {
		return Result{}, err
	}
	return Result{AffectedLines: n, AffectedBOMs: len(parents)}, nil
}
