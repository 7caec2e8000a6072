package availability_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger/internal/application/availability"
	"github.com/jhoicas/stockledger/internal/application/bom"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/jhoicas/stockledger/pkg/retry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant = "tenant-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store    repository.Store
	boms     *bom.UseCase
	location string
	p, a, b  string
}

// newFixture arma P = 2A + 1B con A=10 y B=4 en una ubicación.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memory.NewDB()
	f := &fixture{store: db.Store(), boms: bom.NewUseCase(db, db.Store(), nil, retry.Config{}, logger.Nop())}

	loc := &entity.Location{ID: uuid.New().String(), TenantID: tenant, Code: "PRINCIPAL"}
	require.NoError(t, f.store.Locations.Create(ctx, loc))
	f.location = loc.ID

	f.p = f.product(t, "P", entity.ItemTypeManufactured)
	f.a = f.product(t, "A", entity.ItemTypePurchased)
	f.b = f.product(t, "B", entity.ItemTypePurchased)
	_, err := f.boms.CreateVersion(ctx, bom.SaveInput{
		TenantID: tenant, ProductID: f.p,
		Lines: []entity.BOMLine{
			{ComponentProductID: f.a, QuantityRequired: dec("2")},
			{ComponentProductID: f.b, QuantityRequired: dec("1")},
		},
	})
	require.NoError(t, err)
	f.stock(t, f.a, "10", "0")
	f.stock(t, f.b, "4", "0")
	return f
}

func (f *fixture) product(t *testing.T, sku string, typ entity.ItemType) string {
	t.Helper()
	p := &entity.Product{ID: uuid.New().String(), TenantID: tenant, SKU: sku, Name: sku, ItemType: typ, CostingMethod: entity.CostingWeightedAverage}
	require.NoError(t, f.store.Products.Create(context.Background(), p))
	return p.ID
}

func (f *fixture) stock(t *testing.T, productID, onHand, reserved string) {
	t.Helper()
	ctx := context.Background()
	level, err := f.store.Levels.Get(ctx, tenant, productID, f.location)
	require.NoError(t, err)
	level.OnHand = dec(onHand)
	level.Reserved = dec(reserved)
	require.NoError(t, f.store.Levels.Save(ctx, level))
}

func (f *fixture) shortage(res *availability.Result, id string) bool {
	for _, s := range res.Shortages {
		if s.ComponentID == id {
			return true
		}
	}
	return false
}

func TestCalculate_CuelloDeBotella(t *testing.T) {
	f := newFixture(t)
	uc := availability.NewUseCase(f.boms, f.store, availability.Config{AllocationTracking: true})

	res, err := uc.Calculate(context.Background(), availability.Input{TenantID: tenant, ProductID: f.p, LocationID: f.location})
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(res.BuildableQuantity))
	assert.True(t, f.shortage(res, f.b), "B es la restricción que fija el máximo")
	assert.False(t, f.shortage(res, f.a))
	for _, c := range res.Components {
		if c.ComponentID == f.a {
			assert.True(t, dec("2").Equal(c.Surplus))
		}
	}
	assert.NotEmpty(t, res.BOMVersionID)
}

func TestCalculate_StockNoLimitanteNoCambiaResultado(t *testing.T) {
	f := newFixture(t)
	uc := availability.NewUseCase(f.boms, f.store, availability.Config{})
	in := availability.Input{TenantID: tenant, ProductID: f.p}

	before, err := uc.Calculate(context.Background(), in)
	require.NoError(t, err)
	f.stock(t, f.a, "500", "0")
	after, err := uc.Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, before.BuildableQuantity.Equal(after.BuildableQuantity))
}

func TestCalculate_ReservasSoloConControlDeAsignacion(t *testing.T) {
	f := newFixture(t)
	f.stock(t, f.b, "4", "2")
	in := availability.Input{TenantID: tenant, ProductID: f.p, LocationID: f.location}

	con, err := availability.NewUseCase(f.boms, f.store, availability.Config{AllocationTracking: true}).Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(con.BuildableQuantity))

	sin, err := availability.NewUseCase(f.boms, f.store, availability.Config{}).Calculate(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, dec("4").Equal(sin.BuildableQuantity))
}

func TestCalculate_MetaReportaFaltantes(t *testing.T) {
	f := newFixture(t)
	uc := availability.NewUseCase(f.boms, f.store, availability.Config{})
	target := dec("6")

	res, err := uc.Calculate(context.Background(), availability.Input{TenantID: tenant, ProductID: f.p, TargetBuild: &target})
	require.NoError(t, err)
	require.Len(t, res.Shortages, 2)
	for _, s := range res.Shortages {
		switch s.ComponentID {
		case f.a:
			assert.True(t, dec("2").Equal(s.QuantityShort), "12 requeridos, 10 disponibles")
		case f.b:
			assert.True(t, dec("2").Equal(s.QuantityShort))
		}
	}
}

func TestCalculate_SinBOMActiva(t *testing.T) {
	f := newFixture(t)
	uc := availability.NewUseCase(f.boms, f.store, availability.Config{})

	_, err := uc.Calculate(context.Background(), availability.Input{TenantID: tenant, ProductID: f.a})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
