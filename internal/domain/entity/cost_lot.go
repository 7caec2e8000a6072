package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostLot es un lote recibido a un costo, consumido en orden FIFO o LIFO.
type CostLot struct {
	ID                  string
	TenantID            string
	ProductID           string
	LocationID          string
	SourceTransactionID string
	ReceivedAt          time.Time
	Sequence            int64
	OriginalQuantity    decimal.Decimal
	RemainingQuantity   decimal.Decimal
	UnitCost            decimal.Decimal
}

// CostVariance diferencia entre costo estándar y costo real de una entrada.
// Se registra pero no afecta la valorización.
type CostVariance struct {
	ID            string
	TenantID      string
	TransactionID string
	ProductID     string
	LocationID    string
	StandardCost  decimal.Decimal
	ActualCost    decimal.Decimal
	Quantity      decimal.Decimal
	Variance      decimal.Decimal // (real - estándar) * cantidad
	CreatedAt     time.Time
}
