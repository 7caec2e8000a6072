package dto

import (
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AppendTransactionRequest body para POST /api/ledger/transactions.
// incoming/outgoing llevan cantidad positiva; manual_adjustment/backfill con signo.
type AppendTransactionRequest struct {
	ProductID       string           `json:"product_id" validate:"required,uuid"`
	LocationID      string           `json:"location_id" validate:"required,uuid"`
	Type            string           `json:"type" validate:"required,oneof=incoming outgoing manual_adjustment backfill"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	OccurredAt      *time.Time       `json:"occurred_at,omitempty"`
	ReferenceNumber string           `json:"reference_number" validate:"max=100"`
	VariantID       *string          `json:"variant_id,omitempty"`
	AllowNegative   bool             `json:"allow_negative"`
}

// TransactionResponse transacción del ledger.
type TransactionResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	LocationID      string          `json:"location_id"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	QuantityAfter   decimal.Decimal `json:"quantity_after"`
	OccurredAt      time.Time       `json:"occurred_at"`
	ActorID         string          `json:"actor_id"`
	ReferenceNumber string          `json:"reference_number"`
	VariantID       *string         `json:"variant_id,omitempty"`
	Sequence        int64           `json:"sequence"`
}

// ToTransactionResponse convierte la entidad en DTO.
func ToTransactionResponse(t *entity.StockTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		LocationID:      t.LocationID,
		Type:            string(t.Type),
		Quantity:        t.Quantity,
		UnitCost:        t.UnitCost,
		TotalCost:       t.TotalCost,
		QuantityAfter:   t.QuantityAfter,
		OccurredAt:      t.OccurredAt,
		ActorID:         t.ActorID,
		ReferenceNumber: t.ReferenceNumber,
		VariantID:       t.VariantID,
		Sequence:        t.Sequence,
	}
}

// TransactionPageResponse página del ledger; NextCursor 0 indica fin.
type TransactionPageResponse struct {
	Items      []TransactionResponse `json:"items"`
	NextCursor int64                 `json:"next_cursor"`
}

// ReplayResponse auditoría de la secuencia de saldos.
type ReplayResponse struct {
	Transactions      int             `json:"transactions"`
	Consistent        bool            `json:"consistent"`
	FirstMismatch     int64           `json:"first_mismatch,omitempty"`
	Expected          decimal.Decimal `json:"expected,omitempty"`
	Stored            decimal.Decimal `json:"stored,omitempty"`
	LastQuantityAfter decimal.Decimal `json:"last_quantity_after"`
	CachedOnHand      decimal.Decimal `json:"cached_on_hand"`
	CacheConsistent   bool            `json:"cache_consistent"`

	// Proyección del producto contra la suma de sus ubicaciones.
	ProductOnHand          decimal.Decimal `json:"product_on_hand"`
	LocationsOnHand        decimal.Decimal `json:"locations_on_hand"`
	ProductCacheConsistent bool            `json:"product_cache_consistent"`
}

// ReservationRequest body para POST /api/ledger/reservations.
type ReservationRequest struct {
	ProductID  string          `json:"product_id" validate:"required,uuid"`
	LocationID string          `json:"location_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"`
	Release    bool            `json:"release"`
}

// StockLevelResponse proyección de stock de un producto en una ubicación.
type StockLevelResponse struct {
	ProductID   string          `json:"product_id"`
	LocationID  string          `json:"location_id"`
	OnHand      decimal.Decimal `json:"on_hand"`
	Reserved    decimal.Decimal `json:"reserved"`
	AverageCost decimal.Decimal `json:"average_cost"`
	Version     int64           `json:"version"`
}

// ToStockLevelResponse convierte la entidad en DTO.
func ToStockLevelResponse(l *entity.StockLevel) StockLevelResponse {
	return StockLevelResponse{
		ProductID:   l.ProductID,
		LocationID:  l.LocationID,
		OnHand:      l.OnHand,
		Reserved:    l.Reserved,
		AverageCost: l.AverageCost,
		Version:     l.Version,
	}
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU con déficit
// contra su nivel objetivo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinimumStockLevel  decimal.Decimal `json:"minimum_stock_level"`
	DailyVelocity      decimal.Decimal `json:"daily_velocity"`
	TargetStockLevel   decimal.Decimal `json:"target_stock_level"`
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`
	Urgency            string          `json:"urgency"`
	DaysUntilRunout    *int64          `json:"days_until_runout,omitempty"`
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio o estándar
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Reasoning          []string        `json:"reasoning"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// ReorderSuggestRequest body para POST /api/reorder/suggest (cálculo puro).
type ReorderSuggestRequest struct {
	CurrentStock      decimal.Decimal  `json:"current_stock"`
	MinimumStockLevel decimal.Decimal  `json:"minimum_stock_level"`
	DailyVelocity     decimal.Decimal  `json:"daily_velocity"`
	LeadTimeDays      int              `json:"lead_time_days" validate:"min=0,max=365"`
	SafetyMultiplier  *decimal.Decimal `json:"safety_multiplier,omitempty"`
}

// ReorderSuggestionResponse sugerencia de reposición.
type ReorderSuggestionResponse struct {
	ProductID         string          `json:"product_id,omitempty"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
	Urgency           string          `json:"urgency"`
	TargetStockLevel  decimal.Decimal `json:"target_stock_level"`
	DaysUntilRunout   *int64          `json:"days_until_runout,omitempty"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	DailyVelocity     decimal.Decimal `json:"daily_velocity"`
	LeadTimeDays      int             `json:"lead_time_days,omitempty"`
	Reasoning         []string        `json:"reasoning"`
}
