package repository

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductCounts conteos agregados para medición de uso (facturación de la suscripción).
type ProductCounts struct {
	Total        int
	Active       int
	Manufactured int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las búsquedas por ID devuelven domain.ErrNotFound si el producto no es del tenant.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// AddOnHand suma delta a la proyección OnHandQuantity (total de todas las ubicaciones)
	// de forma atómica sobre el valor vigente de la fila.
	AddOnHand(ctx context.Context, tenantID, productID string, delta decimal.Decimal) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error)
	CountByTenant(ctx context.Context, tenantID string) (ProductCounts, error)
}
