package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipo de movimiento del ledger.
type TransactionType string

const (
	TxIncoming         TransactionType = "incoming"          // recepción, cantidad sin signo
	TxOutgoing         TransactionType = "outgoing"          // despacho, cantidad sin signo
	TxManualAdjustment TransactionType = "manual_adjustment" // ajuste con signo
	TxBackfill         TransactionType = "backfill"          // conciliación/carga inicial con signo
)

// Valid indica si el tipo es conocido.
func (t TransactionType) Valid() bool {
	switch t {
	case TxIncoming, TxOutgoing, TxManualAdjustment, TxBackfill:
		return true
	}
	return false
}

// Signed indica si la cantidad del tipo lleva su propio signo.
func (t TransactionType) Signed() bool {
	return t == TxManualAdjustment || t == TxBackfill
}

// AllowsNegativeBalance indica los tipos que pueden dejar saldo negativo cuando la
// solicitud lo pide y la política de backfill lo habilita.
func (t TransactionType) AllowsNegativeBalance() bool {
	switch t {
	case TxManualAdjustment, TxBackfill, TxOutgoing:
		return true
	}
	return false
}

// StockTransaction es un evento inmutable del ledger por (producto, ubicación).
// QuantityAfter es el saldo en la ubicación inmediatamente después del evento.
// Sequence es el orden de inserción (desempate de OccurredAt y cursor de lectura).
type StockTransaction struct {
	ID              string
	TenantID        string
	ProductID       string
	LocationID      string
	Type            TransactionType
	Quantity        decimal.Decimal
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	QuantityAfter   decimal.Decimal
	OccurredAt      time.Time
	ActorID         string
	ReferenceNumber string
	VariantID       *string
	Sequence        int64
	CreatedAt       time.Time
}

// SignedDelta devuelve la variación de saldo que produce el movimiento.
func (t *StockTransaction) SignedDelta() decimal.Decimal {
	switch t.Type {
	case TxIncoming:
		return t.Quantity.Abs()
	case TxOutgoing:
		return t.Quantity.Abs().Neg()
	default:
		return t.Quantity
	}
}
