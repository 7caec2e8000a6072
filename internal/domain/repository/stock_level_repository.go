package repository

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLevelFilter filtra niveles de stock. Campos vacíos no filtran.
type StockLevelFilter struct {
	LocationID string
	ProductIDs []string
}

// StockLevelRepository define el puerto para la proyección de stock por producto+ubicación.
// Get y GetForUpdate devuelven un nivel en cero (Version 0) si la fila no existe.
type StockLevelRepository interface {
	Get(ctx context.Context, tenantID, productID, locationID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.StockLevel, error)
	// Save hace compare-and-swap sobre Version e incrementa Version.
	// Devuelve domain.ErrConcurrentModification si otra escritura ganó.
	Save(ctx context.Context, level *entity.StockLevel) error
	SumOnHand(ctx context.Context, tenantID, productID string) (decimal.Decimal, error)
	List(ctx context.Context, tenantID string, filter StockLevelFilter) ([]*entity.StockLevel, error)
}
