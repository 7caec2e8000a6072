package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo ledger sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

const txColumns = `id, tenant_id, product_id, location_id, type, quantity, unit_cost, total_cost,
	quantity_after, occurred_at, actor_id, reference_number, variant_id, sequence, created_at`

// keyFilter: location_id vacío abarca todas las ubicaciones del producto.
const keyFilter = `tenant_id = $1 AND product_id = $2 AND ($3::text = '' OR location_id = $3)`

func scanTransaction(row pgx.Row) (entity.StockTransaction, error) {
	var t entity.StockTransaction
	err := row.Scan(&t.ID, &t.TenantID, &t.ProductID, &t.LocationID, &t.Type, &t.Quantity, &t.UnitCost,
		&t.TotalCost, &t.QuantityAfter, &t.OccurredAt, &t.ActorID, &t.ReferenceNumber, &t.VariantID,
		&t.Sequence, &t.CreatedAt)
	return t, err
}

// Create persiste la transacción y asigna Sequence desde la secuencia de la tabla.
func (r *StockTransactionRepo) Create(ctx context.Context, tx *entity.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (id, tenant_id, product_id, location_id, type, quantity, unit_cost,
			total_cost, quantity_after, occurred_at, actor_id, reference_number, variant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING sequence`
	err := r.q.QueryRow(ctx, query,
		tx.ID, tx.TenantID, tx.ProductID, tx.LocationID, tx.Type, tx.Quantity, tx.UnitCost,
		tx.TotalCost, tx.QuantityAfter, tx.OccurredAt, tx.ActorID, tx.ReferenceNumber, tx.VariantID, tx.CreatedAt,
	).Scan(&tx.Sequence)
	return classify("insert stock transaction", err)
}

func (r *StockTransactionRepo) list(ctx context.Context, op, query string, args ...any) ([]entity.StockTransaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()
	var list []entity.StockTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// ListSince página del historial posterior al cursor afterSequence.
func (r *StockTransactionRepo) ListSince(ctx context.Context, tenantID, productID, locationID string, afterSequence int64, limit int) ([]entity.StockTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM stock_transactions
		WHERE ` + keyFilter + ` AND sequence > $4
		ORDER BY occurred_at, sequence LIMIT $5`
	return r.list(ctx, "list transactions since", query, tenantID, productID, locationID, afterSequence, limitArg(limit))
}

// ListUntil historial con occurred_at <= asOf en orden.
func (r *StockTransactionRepo) ListUntil(ctx context.Context, tenantID, productID, locationID string, asOf time.Time) ([]entity.StockTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM stock_transactions
		WHERE ` + keyFilter + ` AND occurred_at <= $4
		ORDER BY occurred_at, sequence`
	return r.list(ctx, "list transactions until", query, tenantID, productID, locationID, asOf)
}

// Last última transacción de la clave o domain.ErrNotFound.
func (r *StockTransactionRepo) Last(ctx context.Context, tenantID, productID, locationID string) (*entity.StockTransaction, error) {
	query := `SELECT ` + txColumns + ` FROM stock_transactions
		WHERE ` + keyFilter + `
		ORDER BY occurred_at DESC, sequence DESC LIMIT 1`
	t, err := scanTransaction(r.q.QueryRow(ctx, query, tenantID, productID, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify("last stock transaction", err)
	}
	return &t, nil
}

// SumOutgoingSince suma las salidas desde since.
func (r *StockTransactionRepo) SumOutgoingSince(ctx context.Context, tenantID, productID, locationID string, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(ABS(quantity)), 0) FROM stock_transactions
		WHERE `+keyFilter+` AND type = 'outgoing' AND occurred_at >= $4`,
		tenantID, productID, locationID, since,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, classify("sum outgoing", err)
	}
	return total, nil
}
