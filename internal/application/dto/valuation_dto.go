package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationResponse valorización de un producto a una fecha.
type ValuationResponse struct {
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id,omitempty"`
	CostingMethod string          `json:"costing_method"`
	AsOf          time.Time       `json:"as_of"`
	Quantity      decimal.Decimal `json:"quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	AvgUnitCost   decimal.Decimal `json:"avg_unit_cost"`
}

// CostPreviewRequest body para POST /api/valuation/cost-preview.
type CostPreviewRequest struct {
	ProductID  string           `json:"product_id" validate:"required,uuid"`
	LocationID string           `json:"location_id" validate:"required,uuid"`
	Type       string           `json:"type" validate:"required,oneof=incoming outgoing manual_adjustment backfill"`
	Quantity   decimal.Decimal  `json:"quantity"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	Method     string           `json:"method" validate:"omitempty,oneof=fifo lifo weighted_average standard"`
}

// CostPreviewResponse costo que tendría el movimiento sin registrarlo.
type CostPreviewResponse struct {
	Method    string          `json:"method"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}
