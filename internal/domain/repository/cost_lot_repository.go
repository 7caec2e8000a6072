package repository

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CostLotRepository define el puerto de lotes de costo (FIFO/LIFO) y varianzas (estándar).
type CostLotRepository interface {
	// ListOpen devuelve los lotes con remanente > 0 ordenados por (ReceivedAt, Sequence).
	ListOpen(ctx context.Context, tenantID, productID, locationID string) ([]entity.CostLot, error)
	Create(ctx context.Context, lot *entity.CostLot) error
	// Consume descuenta qty del remanente. Devuelve domain.ErrLotExhaustion si el
	// remanente ya no alcanza (lo consumió otra escritura).
	Consume(ctx context.Context, tenantID, lotID string, qty decimal.Decimal) error
	RecordVariance(ctx context.Context, variance *entity.CostVariance) error
}
