package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, tenant_id, sku, barcode, name, category, item_type, production_strategy,
	base_unit_of_measure, costing_method, standard_cost, sale_price, minimum_stock_level,
	lead_time_days, on_hand_quantity, retired, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Barcode, &p.Name, &p.Category, &p.ItemType, &p.ProductionStrategy,
		&p.BaseUnitOfMeasure, &p.CostingMethod, &p.StandardCost, &p.SalePrice, &p.MinimumStockLevel,
		&p.LeadTimeDays, &p.OnHandQuantity, &p.Retired, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. OnHandQuantity inicia en 0.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 0, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.TenantID, product.SKU, product.Barcode, product.Name, product.Category,
		product.ItemType, product.ProductionStrategy, product.BaseUnitOfMeasure, product.CostingMethod,
		product.StandardCost, product.SalePrice, product.MinimumStockLevel, product.LeadTimeDays,
		product.Retired, product.CreatedAt, product.UpdatedAt,
	)
	return classify("insert product", err)
}

// GetByID obtiene un producto del tenant por ID.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify("get product", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por tenant y SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, tenantID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND sku = $2`
	p, err := scanProduct(r.q.QueryRow(ctx, query, tenantID, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, classify("get product by sku", err)
	}
	return p, nil
}

// Update actualiza datos y clasificación. No toca on_hand_quantity (se maneja vía ledger).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $3, barcode = $4, name = $5, category = $6, item_type = $7,
			production_strategy = $8, base_unit_of_measure = $9, costing_method = $10, standard_cost = $11,
			sale_price = $12, minimum_stock_level = $13, lead_time_days = $14, retired = $15, updated_at = $16
		WHERE tenant_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		product.TenantID, product.ID, product.SKU, product.Barcode, product.Name, product.Category,
		product.ItemType, product.ProductionStrategy, product.BaseUnitOfMeasure, product.CostingMethod,
		product.StandardCost, product.SalePrice, product.MinimumStockLevel, product.LeadTimeDays,
		product.Retired, product.UpdatedAt,
	)
	if err != nil {
		return classify("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddOnHand aplica un delta a la proyección de existencia (usado por el ledger).
// El UPDATE relee la fila bloqueada, así dos Append en ubicaciones distintas no se pisan.
func (r *ProductRepo) AddOnHand(ctx context.Context, tenantID, productID string, delta decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET on_hand_quantity = on_hand_quantity + $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, productID, delta,
	)
	if err != nil {
		return classify("update product on hand", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByTenant lista productos por tenant ordenados por nombre, con paginación.
func (r *ProductRepo) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1
		ORDER BY name, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, tenantID, limitArg(limit), max(offset, 0))
	if err != nil {
		return nil, classify("list products", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CountByTenant conteos agregados de productos del tenant.
func (r *ProductRepo) CountByTenant(ctx context.Context, tenantID string) (repository.ProductCounts, error) {
	var c repository.ProductCounts
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE NOT retired),
			COUNT(*) FILTER (WHERE item_type = 'manufactured')
		FROM products WHERE tenant_id = $1`, tenantID,
	).Scan(&c.Total, &c.Active, &c.Manufactured)
	if err != nil {
		return c, classify("count products", err)
	}
	return c, nil
}
