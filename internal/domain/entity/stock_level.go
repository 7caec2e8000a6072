package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel es la proyección cacheada del ledger para un producto en una ubicación.
// Version habilita compare-and-swap; LastSequence es la última transacción aplicada.
type StockLevel struct {
	TenantID     string
	ProductID    string
	LocationID   string
	OnHand       decimal.Decimal
	Reserved     decimal.Decimal
	AverageCost  decimal.Decimal
	LastSequence int64
	Version      int64
	UpdatedAt    time.Time
}

// Available devuelve la cantidad disponible: OnHand - Reserved si hay control de
// asignaciones, si no OnHand. Nunca negativa.
func (l *StockLevel) Available(allocationTracking bool) decimal.Decimal {
	avail := l.OnHand
	if allocationTracking {
		avail = avail.Sub(l.Reserved)
	}
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}
