package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appinventory "github.com/jhoicas/stockledger/internal/application/inventory"
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

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"esperado %s, obtenido %s", want, got.String()}, msgAndArgs...)...)
}

type fixture struct {
	db       *memory.DB
	store    repository.Store
	location *entity.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	f := &fixture{db: db, store: db.Store()}
	f.location = f.addLocation(t, "PRINCIPAL")
	return f
}

func (f *fixture) addLocation(t *testing.T, code string) *entity.Location {
	t.Helper()
	loc := &entity.Location{ID: uuid.New().String(), TenantID: tenant, Code: code, Name: code}
	require.NoError(t, f.store.Locations.Create(context.Background(), loc))
	return loc
}

func (f *fixture) addProduct(t *testing.T, sku string, method entity.CostingMethod) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:                uuid.New().String(),
		TenantID:          tenant,
		SKU:               sku,
		Name:              "Producto " + sku,
		ItemType:          entity.ItemTypePurchased,
		BaseUnitOfMeasure: "unit",
		CostingMethod:     method,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, f.store.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) ledger(allowNegative bool) *appinventory.LedgerUseCase {
	return appinventory.NewLedgerUseCase(f.db, f.store, appinventory.LedgerConfig{
		AllowNegativeBackfill: allowNegative,
		Retry:                 retry.Config{MaxRetries: 3, BaseDelay: time.Millisecond},
		PageSize:              2,
	}, logger.Nop())
}

func movement(p *entity.Product, loc *entity.Location, typ entity.TransactionType, qty string) appinventory.MovementInput {
	return appinventory.MovementInput{
		TenantID:   tenant,
		ActorID:    "user-1",
		ProductID:  p.ID,
		LocationID: loc.ID,
		Type:       typ,
		Quantity:   dec(qty),
	}
}

func receive(p *entity.Product, loc *entity.Location, qty, cost string) appinventory.MovementInput {
	in := movement(p, loc, entity.TxIncoming, qty)
	in.UnitCost = decPtr(cost)
	return in
}
