package repository

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location (DIP).
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Location, error)
	GetByCode(ctx context.Context, tenantID, code string) (*entity.Location, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.Location, error)
}
