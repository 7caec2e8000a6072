package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/usecase"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "tenant-1"

func createReq(sku, itemType, method string) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		SKU: sku, Name: "Producto " + sku, ItemType: itemType,
		BaseUnitOfMeasure: "unit", CostingMethod: method,
		MinimumStockLevel: decimal.NewFromInt(5),
	}
}

func TestProductUseCase_CreateYDuplicado(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewDB().Store())
	ctx := context.Background()

	out, err := uc.Create(ctx, tenant, createReq("A-1", "manufactured", "fifo"))
	require.NoError(t, err)
	assert.Equal(t, "make_to_stock", out.ProductionStrategy, "fabricado sin estrategia usa make_to_stock")
	assert.True(t, out.OnHandQuantity.IsZero())

	_, err = uc.Create(ctx, tenant, createReq("A-1", "purchased", "fifo"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, "otro-tenant", createReq("A-1", "purchased", "fifo"))
	assert.NoError(t, err, "el SKU es único por tenant")
}

func TestProductUseCase_CreateClasificacionInvalida(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewDB().Store())
	in := createReq("B-1", "purchased", "weighted_average")
	in.ProductionStrategy = "make_to_order"

	_, err := uc.Create(context.Background(), tenant, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un comprado no lleva estrategia de producción")
}

func TestProductUseCase_UpdateNoPasaAFabricadoConBOM(t *testing.T) {
	db := memory.NewDB()
	uc := usecase.NewProductUseCase(db.Store())
	ctx := context.Background()
	p, err := uc.Create(ctx, tenant, createReq("P", "manufactured", "standard"))
	require.NoError(t, err)
	c, err := uc.Create(ctx, tenant, createReq("C", "purchased", "standard"))
	require.NoError(t, err)
	require.NoError(t, db.Store().BOMs.CreateVersion(ctx, &entity.BOMVersion{
		ID: "v1", TenantID: tenant, ParentProductID: p.ID, VersionNumber: 1, Active: true,
		Lines: []entity.BOMLine{{ID: "l1", BOMVersionID: "v1", ParentProductID: p.ID, ComponentProductID: c.ID, QuantityRequired: decimal.NewFromInt(1)}},
	}))

	purchased := "purchased"
	_, err = uc.Update(ctx, tenant, p.ID, dto.UpdateProductRequest{ItemType: &purchased})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	name := "Nuevo nombre"
	out, err := uc.Update(ctx, tenant, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
}

func TestProductUseCase_RetireYUsage(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewDB().Store())
	ctx := context.Background()
	a, err := uc.Create(ctx, tenant, createReq("A", "purchased", "fifo"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, tenant, createReq("B", "manufactured", "fifo"))
	require.NoError(t, err)

	require.NoError(t, uc.Retire(ctx, tenant, a.ID))
	got, err := uc.GetByID(ctx, tenant, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Retired)

	usage, err := uc.Usage(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.TotalProducts)
	assert.Equal(t, 1, usage.ActiveProducts)
	assert.Equal(t, 1, usage.ManufacturedProducts)

	list, err := uc.List(ctx, tenant, 1, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 2, list.Page.Total)
}

func TestLocationUseCase_CodigoEnMayusculasYUnico(t *testing.T) {
	uc := usecase.NewLocationUseCase(memory.NewDB().Store().Locations)
	ctx := context.Background()

	out, err := uc.Create(ctx, tenant, dto.CreateLocationRequest{Code: " norte ", Name: "Bodega Norte"})
	require.NoError(t, err)
	assert.Equal(t, "NORTE", out.Code)

	_, err = uc.Create(ctx, tenant, dto.CreateLocationRequest{Code: "NORTE", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := uc.List(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
