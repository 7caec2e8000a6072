package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const levelColumns = `tenant_id, product_id, location_id, on_hand, reserved, average_cost, last_sequence, version, updated_at`

func scanLevel(row pgx.Row) (*entity.StockLevel, error) {
	var l entity.StockLevel
	err := row.Scan(&l.TenantID, &l.ProductID, &l.LocationID, &l.OnHand, &l.Reserved,
		&l.AverageCost, &l.LastSequence, &l.Version, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *StockLevelRepo) get(ctx context.Context, op, suffix, tenantID, productID, locationID string) (*entity.StockLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM stock_levels
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3` + suffix
	l, err := scanLevel(r.q.QueryRow(ctx, query, tenantID, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{TenantID: tenantID, ProductID: productID, LocationID: locationID}, nil
		}
		return nil, classify(op, err)
	}
	return l, nil
}

// Get obtiene el nivel actual de un producto en una ubicación (cero si no existe).
func (r *StockLevelRepo) Get(ctx context.Context, tenantID, productID, locationID string) (*entity.StockLevel, error) {
	return r.get(ctx, "get stock level", "", tenantID, productID, locationID)
}

// GetForUpdate obtiene el nivel y bloquea la fila para update (SELECT FOR UPDATE).
// Si la fila aún no existe no hay nada que bloquear: el INSERT de Save resuelve la carrera.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.StockLevel, error) {
	return r.get(ctx, "get stock level for update", " FOR UPDATE", tenantID, productID, locationID)
}

// Save hace compare-and-swap sobre version: inserta si Version es 0, si no actualiza
// solo cuando la versión en BD coincide.
func (r *StockLevelRepo) Save(ctx context.Context, level *entity.StockLevel) error {
	now := time.Now().UTC()
	var (
		cmd pgconn.CommandTag
		err error
	)
	if level.Version == 0 {
		cmd, err = r.q.Exec(ctx, `
			INSERT INTO stock_levels (`+levelColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8)
			ON CONFLICT (tenant_id, product_id, location_id) DO NOTHING`,
			level.TenantID, level.ProductID, level.LocationID, level.OnHand, level.Reserved,
			level.AverageCost, level.LastSequence, now,
		)
	} else {
		cmd, err = r.q.Exec(ctx, `
			UPDATE stock_levels SET on_hand = $4, reserved = $5, average_cost = $6, last_sequence = $7,
				version = version + 1, updated_at = $9
			WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3 AND version = $8`,
			level.TenantID, level.ProductID, level.LocationID, level.OnHand, level.Reserved,
			level.AverageCost, level.LastSequence, level.Version, now,
		)
	}
	if err != nil {
		return classify("save stock level", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	level.Version++
	level.UpdatedAt = now
	return nil
}

// SumOnHand suma la existencia del producto en todas las ubicaciones.
func (r *StockLevelRepo) SumOnHand(ctx context.Context, tenantID, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(on_hand), 0) FROM stock_levels
		WHERE tenant_id = $1 AND product_id = $2`, tenantID, productID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, classify("sum on hand", err)
	}
	return total, nil
}

// List lista niveles del tenant filtrando por ubicación y productos.
func (r *StockLevelRepo) List(ctx context.Context, tenantID string, filter repository.StockLevelFilter) ([]*entity.StockLevel, error) {
	query := `SELECT ` + levelColumns + ` FROM stock_levels
		WHERE tenant_id = $1
			AND ($2::text = '' OR location_id = $2)
			AND (cardinality($3::text[]) = 0 OR product_id = ANY($3))
		ORDER BY product_id, location_id`
	ids := filter.ProductIDs
	if ids == nil {
		ids = []string{}
	}
	rows, err := r.q.Query(ctx, query, tenantID, filter.LocationID, ids)
	if err != nil {
		return nil, classify("list stock levels", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}
