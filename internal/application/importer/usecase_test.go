package importer_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jhoicas/stockledger/internal/application/importer"
	appinventory "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "tenant-1"

// stubReader devuelve filas fijas sin leer el archivo.
type stubReader struct {
	rows [][]string
	err  error
}

func (s stubReader) ReadRows(string, io.Reader) ([][]string, error) { return s.rows, s.err }

func newUseCase(t *testing.T, rows [][]string, cfg importer.Config) (*importer.UseCase, *memory.DB) {
	t.Helper()
	db := memory.NewDB()
	ledger := appinventory.NewLedgerUseCase(db, db.Store(), appinventory.LedgerConfig{}, logger.Nop())
	return importer.NewUseCase(stubReader{rows: rows}, ledger, db.Store(), cfg, logger.Nop()), db
}

func input() importer.Input {
	return importer.Input{TenantID: tenant, ActorID: "user-1", Filename: "productos.csv", File: strings.NewReader("")}
}

func TestImport_CreaProductosUbicacionesYApertura(t *testing.T) {
	rows := [][]string{
		{"Nombre", "Stock", "Stock Mínimo", "Precio Compra", "Precio Venta", "Bodega", "SKU", "Código de barras"},
		{"Tornillo", "100", "20", "150", "300", "", "T-1", "7701"},
		{"Tuerca", "0", "5", "80", "160", "Norte", "", ""},
		{"Arandela", "10", "", "50", "", "Norte", "T-1", ""},
	}
	uc, db := newUseCase(t, rows, importer.Config{DefaultCostingMethod: entity.CostingFIFO})
	ctx := context.Background()

	res, err := uc.Import(ctx, input())
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 2, res.CreatedProducts)
	assert.Equal(t, 2, res.CreatedLocations, "PRINCIPAL por defecto y NORTE")
	assert.Equal(t, 1, res.OpeningMovements, "la fila con stock cero no genera apertura")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Equal(t, "sku", res.Errors[0].Field)

	p, err := db.Store().Products.GetBySKU(ctx, tenant, "T-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemTypePurchased, p.ItemType)
	assert.Equal(t, entity.CostingFIFO, p.CostingMethod)
	assert.True(t, decimal.NewFromInt(100).Equal(p.OnHandQuantity))

	principal, err := db.Store().Locations.GetByCode(ctx, tenant, importer.DefaultLocationCode)
	require.NoError(t, err)
	lots, err := db.Store().Lots.ListOpen(ctx, tenant, p.ID, principal.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, decimal.NewFromInt(150).Equal(lots[0].UnitCost), "la apertura entra al precio de compra")

	all, err := db.Store().Products.ListByTenant(ctx, tenant, 0, 0)
	require.NoError(t, err)
	for _, prod := range all {
		assert.NotEmpty(t, prod.SKU, "se genera SKU cuando la fila no lo trae")
	}
}

func TestImport_LimiteDeFilas(t *testing.T) {
	rows := [][]string{{"Nombre"}, {"A"}, {"B"}, {"C"}}
	uc, _ := newUseCase(t, rows, importer.Config{MaxRows: 2})

	_, err := uc.Import(context.Background(), input())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestImport_ArchivoIlegible(t *testing.T) {
	db := memory.NewDB()
	uc := importer.NewUseCase(stubReader{err: errors.New("formato no soportado")}, nil, db.Store(), importer.Config{}, logger.Nop())

	_, err := uc.Import(context.Background(), input())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
