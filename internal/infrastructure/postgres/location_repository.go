package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una nueva ubicación. El código es único por tenant.
func (r *LocationRepo) Create(ctx context.Context, location *entity.Location) error {
	query := `
		INSERT INTO locations (id, tenant_id, code, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		location.ID, location.TenantID, location.Code, location.Name,
		location.CreatedAt, location.UpdatedAt,
	)
	return classify("insert location", err)
}

func (r *LocationRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.Location, error) {
	query := `SELECT id, tenant_id, code, name, created_at, updated_at FROM locations WHERE ` + where
	var l entity.Location
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&l.ID, &l.TenantID, &l.Code, &l.Name, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify(op, err)
	}
	return &l, nil
}

// GetByID obtiene una ubicación del tenant por ID.
func (r *LocationRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Location, error) {
	return r.getOne(ctx, "get location", "tenant_id = $1 AND id = $2", tenantID, id)
}

// GetByCode obtiene una ubicación por código.
func (r *LocationRepo) GetByCode(ctx context.Context, tenantID, code string) (*entity.Location, error) {
	return r.getOne(ctx, "get location by code", "tenant_id = $1 AND code = $2", tenantID, code)
}

// ListByTenant lista las ubicaciones del tenant ordenadas por código.
func (r *LocationRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, code, name, created_at, updated_at
		FROM locations WHERE tenant_id = $1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, classify("list locations", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.TenantID, &l.Code, &l.Name, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
