package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockTransactionRepository define el puerto del ledger. Solo inserta: las
// transacciones nunca se actualizan ni se eliminan.
type StockTransactionRepository interface {
	// Create asigna Sequence (orden de inserción) y persiste la transacción.
	Create(ctx context.Context, tx *entity.StockTransaction) error
	// ListSince devuelve hasta limit transacciones con Sequence > afterSequence,
	// ordenadas por (OccurredAt, Sequence).
	ListSince(ctx context.Context, tenantID, productID, locationID string, afterSequence int64, limit int) ([]entity.StockTransaction, error)
	// ListUntil devuelve el historial con OccurredAt <= asOf en orden.
	ListUntil(ctx context.Context, tenantID, productID, locationID string, asOf time.Time) ([]entity.StockTransaction, error)
	// Last devuelve la última transacción de la clave o domain.ErrNotFound.
	Last(ctx context.Context, tenantID, productID, locationID string) (*entity.StockTransaction, error)
	// SumOutgoingSince suma las salidas (outgoing) desde since. locationID vacío suma todas las ubicaciones.
	SumOutgoingSince(ctx context.Context, tenantID, productID, locationID string, since time.Time) (decimal.Decimal, error)
}
