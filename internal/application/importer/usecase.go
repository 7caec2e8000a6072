// Package importer carga productos desde planillas xlsx/csv con encabezados libres.
// Las filas se normalizan a entity.ProductRow antes de tocar el inventario.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/pkg/logger"
)

// DefaultLocationCode ubicación usada cuando la fila no trae bodega.
const DefaultLocationCode = "PRINCIPAL"

// RowReader lee las filas crudas de un archivo según su extensión.
type RowReader interface {
	ReadRows(filename string, r io.Reader) ([][]string, error)
}

// Appender registra el movimiento de apertura (implementado por inventory.LedgerUseCase).
type Appender interface {
	Append(ctx context.Context, in appinventory.MovementInput) (*appinventory.AppendResult, error)
}

// Config parámetros de importación.
type Config struct {
	DefaultCostingMethod entity.CostingMethod
	MaxRows              int
}

// UseCase importación masiva de productos.
type UseCase struct {
	reader RowReader
	ledger Appender
	store  repository.Store
	cfg    Config
	log    *logger.Logger
	now    func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(reader RowReader, ledger Appender, store repository.Store, cfg Config, log *logger.Logger) *UseCase {
	if !cfg.DefaultCostingMethod.Valid() {
		cfg.DefaultCostingMethod = entity.CostingWeightedAverage
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 5000
	}
	return &UseCase{reader: reader, ledger: ledger, store: store, cfg: cfg, log: log.Component("importer"), now: time.Now}
}

// Input archivo a importar.
type Input struct {
	TenantID string
	ActorID  string
	Filename string
	File     io.Reader
}

// Result resumen de la importación.
type Result struct {
	TotalRows        int
	CreatedProducts  int
	CreatedLocations int
	OpeningMovements int
	Errors           []RowError
	Unmapped         []string
}

// Import lee, normaliza y crea productos comprados con su movimiento de apertura
// (backfill al precio de compra). Cada fila es independiente: un error no detiene el resto.
func (uc *UseCase) Import(ctx context.Context, in Input) (*Result, error) {
	if in.TenantID == "" || in.File == nil {
		return nil, domain.ErrInvalidInput
	}
	raw, err := uc.reader.ReadRows(in.Filename, in.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if len(raw)-1 > uc.cfg.MaxRows {
		return nil, fmt.Errorf("%w: máximo %d filas", domain.ErrInvalidInput, uc.cfg.MaxRows)
	}
	rows, rowErrs, mapping, err := NormalizeRows(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	res := &Result{TotalRows: len(rows) + len(rowErrs), Errors: rowErrs, Unmapped: mapping.Unmapped}
	locations := make(map[string]*entity.Location)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rerr := uc.importRow(ctx, in, row, locations, res); rerr != nil {
			res.Errors = append(res.Errors, *rerr)
		}
	}
	uc.log.Info().
		Str("tenant_id", in.TenantID).
		Str("file", in.Filename).
		Int("rows", res.TotalRows).
		Int("created_products", res.CreatedProducts).
		Int("errors", len(res.Errors)).
		Msg("importación finalizada")
	return res, nil
}

func (uc *UseCase) importRow(ctx context.Context, in Input, row entity.ProductRow, locations map[string]*entity.Location, res *Result) *RowError {
	fail := func(field, msg string) *RowError {
		return &RowError{Line: row.Line, Field: field, Message: msg}
	}
	sku := row.SKU
	if sku == "" {
		sku = "IMP-" + strings.ToUpper(uuid.New().String()[:8])
	}
	if _, err := uc.store.Products.GetBySKU(ctx, in.TenantID, sku); err == nil {
		return fail(FieldSKU.String(), "sku duplicado")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fail("", "error consultando sku")
	}

	code := row.Location
	if code == "" {
		code = DefaultLocationCode
	}
	loc, err := uc.location(ctx, in.TenantID, code, locations, res)
	if err != nil {
		return fail(FieldLocation.String(), "no se pudo resolver la ubicación")
	}

	now := uc.now().UTC()
	product := &entity.Product{
		ID:                uuid.New().String(),
		TenantID:          in.TenantID,
		SKU:               sku,
		Barcode:           row.Barcode,
		Name:              row.Name,
		Category:          row.Category,
		ItemType:          entity.ItemTypePurchased,
		BaseUnitOfMeasure: "unit",
		CostingMethod:     uc.cfg.DefaultCostingMethod,
		StandardCost:      row.PurchasePrice,
		SalePrice:         row.SalePrice,
		MinimumStockLevel: row.MinimumLevel,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.store.Products.Create(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return fail(FieldSKU.String(), "sku duplicado")
		}
		return fail("", "no se pudo crear el producto")
	}
	res.CreatedProducts++

	if row.Stock.IsZero() {
		return nil
	}
	cost := row.PurchasePrice
	_, err = uc.ledger.Append(ctx, appinventory.MovementInput{
		TenantID:        in.TenantID,
		ActorID:         in.ActorID,
		ProductID:       product.ID,
		LocationID:      loc.ID,
		Type:            entity.TxBackfill,
		Quantity:        row.Stock,
		UnitCost:        &cost,
		ReferenceNumber: "IMPORT",
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("tenant_id", in.TenantID).Str("product_id", product.ID).Int("line", row.Line).Msg("apertura rechazada")
		return fail(FieldStock.String(), "producto creado sin existencia inicial")
	}
	res.OpeningMovements++
	return nil
}

// location resuelve la ubicación por código y la crea si no existe.
func (uc *UseCase) location(ctx context.Context, tenantID, code string, cache map[string]*entity.Location, res *Result) (*entity.Location, error) {
	if loc, ok := cache[code]; ok {
		return loc, nil
	}
	loc, err := uc.store.Locations.GetByCode(ctx, tenantID, code)
	if errors.Is(err, domain.ErrNotFound) {
		now := uc.now().UTC()
		loc = &entity.Location{ID: uuid.New().String(), TenantID: tenantID, Code: code, Name: code, CreatedAt: now, UpdatedAt: now}
		err = uc.store.Locations.Create(ctx, loc)
		switch {
		case err == nil:
			res.CreatedLocations++
		case errors.Is(err, domain.ErrDuplicate):
			loc, err = uc.store.Locations.GetByCode(ctx, tenantID, code)
		}
	}
	if err != nil {
		return nil, err
	}
	cache[code] = loc
	return loc, nil
}
