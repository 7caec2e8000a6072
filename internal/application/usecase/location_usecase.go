package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// LocationUseCase casos de uso para ubicaciones (bodegas).
type LocationUseCase struct {
	repo repository.LocationRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo}
}

// Create crea una ubicación; el código se guarda en mayúsculas y es único por tenant.
func (uc *LocationUseCase) Create(ctx context.Context, tenantID string, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	now := time.Now().UTC()
	location := &entity.Location{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Code:      strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	out := dto.ToLocationResponse(location)
	return &out, nil
}

// List lista las ubicaciones del tenant ordenadas por código.
func (uc *LocationUseCase) List(ctx context.Context, tenantID string) ([]dto.LocationResponse, error) {
	list, err := uc.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.ToLocationResponse(l))
	}
	return out, nil
}
