package inventory

import (
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ValidateTransaction valida tipo y cantidad de un movimiento antes de aplicarlo.
// Entradas y salidas llevan cantidad positiva; ajustes y backfill llevan signo.
func ValidateTransaction(tx *entity.StockTransaction) error {
	if !tx.Type.Valid() {
		return domain.ErrInvalidInput
	}
	if tx.Quantity.IsZero() {
		return domain.ErrInvalidQuantity
	}
	if !tx.Type.Signed() && tx.Quantity.IsNegative() {
		return domain.ErrInvalidQuantity
	}
	if tx.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// NextBalance calcula quantityAfter para el movimiento partiendo del saldo actual.
// Una disminución que deje el saldo negativo falla con ErrInsufficientStock salvo
// que allowNegative esté explícitamente activo (conciliación de backfill).
func NextBalance(current decimal.Decimal, tx *entity.StockTransaction, allowNegative bool) (decimal.Decimal, error) {
	if err := ValidateTransaction(tx); err != nil {
		return decimal.Zero, err
	}
	delta := tx.SignedDelta()
	after := current.Add(delta)
	if delta.IsNegative() && after.IsNegative() && !allowNegative {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	return after, nil
}

// ReplayReport resultado de recalcular la secuencia de saldos desde cero.
type ReplayReport struct {
	Transactions      int
	Consistent        bool
	FirstMismatch     int64 // Sequence de la primera transacción inconsistente (0 si ninguna)
	Expected          decimal.Decimal
	Stored            decimal.Decimal
	LastQuantityAfter decimal.Decimal
}

// Replayer recalcula quantityAfter transacción por transacción.
// Se alimenta en orden (OccurredAt, Sequence); sirve para auditoría incremental.
type Replayer struct {
	balance decimal.Decimal
	report  ReplayReport
}

// NewReplayer construye un Replayer con saldo inicial cero.
func NewReplayer() *Replayer {
	return &Replayer{report: ReplayReport{Consistent: true}}
}

// Feed aplica una transacción y compara con el quantityAfter almacenado.
func (r *Replayer) Feed(tx entity.StockTransaction) {
	r.balance = r.balance.Add(tx.SignedDelta())
	r.report.Transactions++
	r.report.LastQuantityAfter = tx.QuantityAfter
	if r.report.Consistent && !r.balance.Equal(tx.QuantityAfter) {
		r.report.Consistent = false
		r.report.FirstMismatch = tx.Sequence
		r.report.Expected = r.balance
		r.report.Stored = tx.QuantityAfter
	}
}

// Balance saldo recalculado hasta el momento.
func (r *Replayer) Balance() decimal.Decimal { return r.balance }

// Report devuelve el resumen del replay.
func (r *Replayer) Report() ReplayReport { return r.report }
