package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReorderConfig parámetros por defecto del asesor de reposición.
type ReorderConfig struct {
	SafetyMultiplier    decimal.Decimal
	DefaultLeadTimeDays int
	VelocityWindowDays  int
}

// ReplenishmentUseCase asesor de reposición: combina velocidad de consumo (salidas del
// ledger), tiempo de entrega y stock de seguridad para sugerir cantidades y urgencia.
type ReplenishmentUseCase struct {
	store repository.Store
	cfg   ReorderConfig
	now   func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(store repository.Store, cfg ReorderConfig) *ReplenishmentUseCase {
	if cfg.SafetyMultiplier.IsZero() {
		cfg.SafetyMultiplier = decimal.NewFromFloat(inventory.DefaultSafetyMultiplier)
	}
	if cfg.DefaultLeadTimeDays <= 0 {
		cfg.DefaultLeadTimeDays = inventory.DefaultLeadTimeDays
	}
	if cfg.VelocityWindowDays <= 0 {
		cfg.VelocityWindowDays = 30
	}
	return &ReplenishmentUseCase{store: store, cfg: cfg, now: time.Now}
}

// Suggest cálculo puro; aplica el multiplicador configurado si no viene en la entrada.
func (uc *ReplenishmentUseCase) Suggest(in inventory.ReorderInput) entity.ReorderSuggestion {
	if in.SafetyMultiplier == nil {
		m := uc.cfg.SafetyMultiplier
		in.SafetyMultiplier = &m
	}
	return inventory.Suggest(in)
}

// ProductSuggestion sugerencia con los datos de entrada derivados del ledger.
type ProductSuggestion struct {
	entity.ReorderSuggestion
	Product       *entity.Product
	CurrentStock  decimal.Decimal
	DailyVelocity decimal.Decimal
	LeadTimeDays  int
}

// SuggestForProduct deriva la velocidad de las salidas de los últimos VelocityWindowDays.
// locationID vacío usa la existencia total del producto.
func (uc *ReplenishmentUseCase) SuggestForProduct(ctx context.Context, tenantID, productID, locationID string) (*ProductSuggestion, error) {
	product, err := uc.store.Products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, domain.Wrap("reorder", productID, locationID, err)
	}
	current := product.OnHandQuantity
	if locationID != "" {
		if _, err := uc.store.Locations.GetByID(ctx, tenantID, locationID); err != nil {
			return nil, domain.Wrap("reorder", productID, locationID, err)
		}
		level, err := uc.store.Levels.Get(ctx, tenantID, productID, locationID)
		if err != nil {
			return nil, err
		}
		current = level.OnHand
	}
	return uc.suggestFor(ctx, product, locationID, current)
}

func (uc *ReplenishmentUseCase) suggestFor(ctx context.Context, product *entity.Product, locationID string, current decimal.Decimal) (*ProductSuggestion, error) {
	since := uc.now().AddDate(0, 0, -uc.cfg.VelocityWindowDays)
	out, err := uc.store.Transactions.SumOutgoingSince(ctx, product.TenantID, product.ID, locationID, since)
	if err != nil {
		return nil, err
	}
	velocity := out.Div(decimal.NewFromInt(int64(uc.cfg.VelocityWindowDays)))
	lead := product.LeadTimeDays
	if lead <= 0 {
		lead = uc.cfg.DefaultLeadTimeDays
	}
	s := uc.Suggest(inventory.ReorderInput{
		ProductID:         product.ID,
		CurrentStock:      current,
		MinimumStockLevel: product.MinimumStockLevel,
		DailyVelocity:     velocity,
		LeadTimeDays:      lead,
	})
	return &ProductSuggestion{
		ReorderSuggestion: s,
		Product:           product,
		CurrentStock:      current,
		DailyVelocity:     velocity,
		LeadTimeDays:      lead,
	}, nil
}

// GenerateReplenishmentList devuelve los productos activos con sugerencia > 0,
// ordenados por urgencia, luego mayor déficit contra el objetivo y por SKU.
// locationID puede ser vacío para considerar el stock global del tenant.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, tenantID, locationID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	products, err := uc.store.Products.ListByTenant(ctx, tenantID, 0, 0)
	if err != nil {
		return nil, err
	}
	stockByProduct := map[string]decimal.Decimal{}
	avgCost := map[string]decimal.Decimal{}
	if locationID != "" {
		levels, err := uc.store.Levels.List(ctx, tenantID, repository.StockLevelFilter{LocationID: locationID})
		if err != nil {
			return nil, err
		}
		for _, l := range levels {
			stockByProduct[l.ProductID] = l.OnHand
			avgCost[l.ProductID] = l.AverageCost
		}
	} else {
		levels, err := uc.store.Levels.List(ctx, tenantID, repository.StockLevelFilter{})
		if err != nil {
			return nil, err
		}
		for _, l := range levels {
			if l.OnHand.IsPositive() && l.AverageCost.GreaterThan(avgCost[l.ProductID]) {
				avgCost[l.ProductID] = l.AverageCost
			}
		}
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, p := range products {
		if p.Retired {
			continue
		}
		current := p.OnHandQuantity
		if locationID != "" {
			current = stockByProduct[p.ID]
		}
		ps, err := uc.suggestFor(ctx, p, locationID, current)
		if err != nil {
			return nil, err
		}
		if !ps.SuggestedQuantity.IsPositive() {
			continue
		}
		unitCost := avgCost[p.ID]
		if p.CostingMethod == entity.CostingStandard {
			unitCost = p.StandardCost
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          p.ID,
			SKU:                p.SKU,
			ProductName:        p.Name,
			CurrentStock:       current,
			MinimumStockLevel:  p.MinimumStockLevel,
			DailyVelocity:      ps.DailyVelocity.Round(4),
			TargetStockLevel:   ps.TargetStockLevel,
			SuggestedOrderQty:  ps.SuggestedQuantity,
			Urgency:            string(ps.Urgency),
			DaysUntilRunout:    ps.DaysUntilRunout,
			UnitCost:           unitCost,
			EstimatedOrderCost: ps.SuggestedQuantity.Mul(unitCost).Round(2),
			Reasoning:          ps.Reasoning,
		})
	}

	// Orden: urgencia, déficit contra el objetivo, SKU.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		ra, rb := entity.Urgency(a.Urgency).Rank(), entity.Urgency(b.Urgency).Rank()
		if ra != rb {
			return ra > rb
		}
		defA := a.TargetStockLevel.Sub(a.CurrentStock)
		defB := b.TargetStockLevel.Sub(b.CurrentStock)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.SKU < b.SKU
	})

	// Prioridad (1 = más urgente)
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
