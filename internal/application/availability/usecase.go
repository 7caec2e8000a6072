// Package availability calcula cuánto se puede fabricar con el stock actual.
package availability

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// BOMReader requerimientos directos de una versión (implementado por bom.UseCase).
type BOMReader interface {
	DirectRequirements(ctx context.Context, tenantID, productID, versionID, locationID string) (*entity.BOMVersion, []inventory.Requirement, error)
}

// Config política de disponibilidad.
type Config struct {
	// AllocationTracking descuenta lo reservado de la existencia.
	AllocationTracking bool
}

// UseCase cálculo ATP (available-to-promise) sobre un snapshot de niveles de stock.
// Solo lee: corre en paralelo con las escrituras del ledger.
type UseCase struct {
	boms  BOMReader
	store repository.Store
	cfg   Config
}

// NewUseCase construye el caso de uso.
func NewUseCase(boms BOMReader, store repository.Store, cfg Config) *UseCase {
	return &UseCase{boms: boms, store: store, cfg: cfg}
}

// Input parámetros del cálculo. LocationID vacío suma todas las ubicaciones;
// BOMVersionID vacío usa la versión activa; TargetBuild nil usa el máximo fabricable.
type Input struct {
	TenantID     string
	ProductID    string
	BOMVersionID string
	LocationID   string
	TargetBuild  *decimal.Decimal
}

// Result resultado con la versión usada.
type Result struct {
	inventory.ATPResult
	BOMVersionID string
}

// Calculate aplica la regla del cuello de botella sobre los componentes directos.
func (uc *UseCase) Calculate(ctx context.Context, in Input) (*Result, error) {
	if in.TenantID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.TargetBuild != nil && in.TargetBuild.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	if _, err := uc.store.Products.GetByID(ctx, in.TenantID, in.ProductID); err != nil {
		return nil, domain.Wrap("atp", in.ProductID, in.LocationID, err)
	}
	if in.LocationID != "" {
		if _, err := uc.store.Locations.GetByID(ctx, in.TenantID, in.LocationID); err != nil {
			return nil, domain.Wrap("atp", in.ProductID, in.LocationID, err)
		}
	}
	version, reqs, err := uc.boms.DirectRequirements(ctx, in.TenantID, in.ProductID, in.BOMVersionID, in.LocationID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ComponentID)
	}
	levels, err := uc.store.Levels.List(ctx, in.TenantID, repository.StockLevelFilter{
		LocationID: in.LocationID,
		ProductIDs: ids,
	})
	if err != nil {
		return nil, domain.Wrap("atp", in.ProductID, in.LocationID, err)
	}
	available := make(map[string]decimal.Decimal, len(ids))
	for _, l := range levels {
		available[l.ProductID] = available[l.ProductID].Add(l.Available(uc.cfg.AllocationTracking))
	}

	res, err := inventory.CalculateATP(reqs, available, in.TargetBuild)
	if err != nil {
		return nil, domain.Wrap("atp", in.ProductID, in.LocationID, err)
	}
	return &Result{ATPResult: res, BOMVersionID: version.ID}, nil
}
