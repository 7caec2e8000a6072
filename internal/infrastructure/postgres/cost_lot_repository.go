package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.CostLotRepository = (*CostLotRepo)(nil)

// CostLotRepo lotes de costo y varianzas sobre PostgreSQL.
type CostLotRepo struct {
	q Querier
}

// NewCostLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCostLotRepository(q Querier) *CostLotRepo {
	return &CostLotRepo{q: q}
}

// ListOpen lotes con remanente en orden de recepción; LIFO los recorre al revés.
func (r *CostLotRepo) ListOpen(ctx context.Context, tenantID, productID, locationID string) ([]entity.CostLot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, tenant_id, product_id, location_id, source_transaction_id, received_at, sequence,
			original_quantity, remaining_quantity, unit_cost
		FROM cost_lots
		WHERE tenant_id = $1 AND product_id = $2 AND location_id = $3 AND remaining_quantity > 0
		ORDER BY received_at, sequence`, tenantID, productID, locationID)
	if err != nil {
		return nil, classify("list open lots", err)
	}
	defer rows.Close()
	var list []entity.CostLot
	for rows.Next() {
		var l entity.CostLot
		if err := rows.Scan(&l.ID, &l.TenantID, &l.ProductID, &l.LocationID, &l.SourceTransactionID,
			&l.ReceivedAt, &l.Sequence, &l.OriginalQuantity, &l.RemainingQuantity, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("scan cost lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Create persiste un lote nuevo.
func (r *CostLotRepo) Create(ctx context.Context, lot *entity.CostLot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cost_lots (id, tenant_id, product_id, location_id, source_transaction_id, received_at,
			sequence, original_quantity, remaining_quantity, unit_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		lot.ID, lot.TenantID, lot.ProductID, lot.LocationID, lot.SourceTransactionID, lot.ReceivedAt,
		lot.Sequence, lot.OriginalQuantity, lot.RemainingQuantity, lot.UnitCost,
	)
	return classify("insert cost lot", err)
}

// Consume descuenta qty solo si el remanente alcanza; la condición en el WHERE evita
// consumir dos veces el mismo remanente.
func (r *CostLotRepo) Consume(ctx context.Context, tenantID, lotID string, qty decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE cost_lots SET remaining_quantity = remaining_quantity - $3
		WHERE tenant_id = $1 AND id = $2 AND remaining_quantity >= $3`,
		tenantID, lotID, qty,
	)
	if err != nil {
		return classify("consume cost lot", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM cost_lots WHERE tenant_id = $1 AND id = $2)`, tenantID, lotID,
	).Scan(&exists); err != nil {
		return classify("consume cost lot", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrLotExhaustion
}

// RecordVariance registra la varianza de costo estándar de una entrada.
func (r *CostLotRepo) RecordVariance(ctx context.Context, v *entity.CostVariance) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cost_variances (id, tenant_id, transaction_id, product_id, location_id,
			standard_cost, actual_cost, quantity, variance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.TenantID, v.TransactionID, v.ProductID, v.LocationID,
		v.StandardCost, v.ActualCost, v.Quantity, v.Variance, v.CreatedAt,
	)
	return classify("insert cost variance", err)
}
