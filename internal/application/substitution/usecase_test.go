package substitution_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger/internal/application/bom"
	"github.com/jhoicas/stockledger/internal/application/substitution"
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

type fixture struct {
	db    *memory.DB
	store repository.Store
	boms  *bom.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	return &fixture{db: db, store: db.Store(), boms: bom.NewUseCase(db, db.Store(), nil, retry.Config{}, logger.Nop())}
}

func (f *fixture) useCase(timeout time.Duration) *substitution.UseCase {
	return substitution.NewUseCase(f.db, f.store, nil, substitution.Config{Timeout: timeout, MaxPageSize: 10}, logger.Nop())
}

func (f *fixture) product(t *testing.T, sku string, typ entity.ItemType) string {
	t.Helper()
	p := &entity.Product{ID: uuid.New().String(), TenantID: tenant, SKU: sku, Name: sku, ItemType: typ, CostingMethod: entity.CostingFIFO}
	require.NoError(t, f.store.Products.Create(context.Background(), p))
	return p.ID
}

func (f *fixture) location(t *testing.T, code string) string {
	t.Helper()
	l := &entity.Location{ID: uuid.New().String(), TenantID: tenant, Code: code}
	require.NoError(t, f.store.Locations.Create(context.Background(), l))
	return l.ID
}

func (f *fixture) recipe(t *testing.T, parent string, ls ...entity.BOMLine) {
	t.Helper()
	_, err := f.boms.CreateVersion(context.Background(), bom.SaveInput{TenantID: tenant, ProductID: parent, Lines: ls})
	require.NoError(t, err)
}

func uses(component, qty, location string) entity.BOMLine {
	return entity.BOMLine{ComponentProductID: component, QuantityRequired: decimal.RequireFromString(qty), LocationID: location}
}

func (f *fixture) components(t *testing.T, parent string) []string {
	t.Helper()
	v, err := f.store.BOMs.GetActiveVersion(context.Background(), tenant, parent)
	require.NoError(t, err)
	var out []string
	for _, l := range v.Lines {
		out = append(out, l.ComponentProductID)
	}
	return out
}

func TestPreview_Paginado(t *testing.T) {
	f := newFixture(t)
	old := f.product(t, "OLD", entity.ItemTypePurchased)
	for _, sku := range []string{"P1", "P2", "P3"} {
		f.recipe(t, f.product(t, sku, entity.ItemTypeManufactured), uses(old, "2", ""))
	}

	page, err := f.useCase(time.Second).Preview(context.Background(), tenant, old, "", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	page, err = f.useCase(time.Second).Preview(context.Background(), tenant, old, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestExecute_ReemplazaEnTodasLasBOMs(t *testing.T) {
	f := newFixture(t)
	old := f.product(t, "OLD", entity.ItemTypePurchased)
	nuevo := f.product(t, "NEW", entity.ItemTypePurchased)
	otro := f.product(t, "X", entity.ItemTypePurchased)
	p1 := f.product(t, "P1", entity.ItemTypeManufactured)
	p2 := f.product(t, "P2", entity.ItemTypeManufactured)
	f.recipe(t, p1, uses(old, "1", ""), uses(otro, "1", ""))
	f.recipe(t, p2, uses(old, "3", ""))

	res, err := f.useCase(time.Second).Execute(context.Background(), substitution.Input{
		TenantID: tenant, OldComponentID: old, NewComponentID: nuevo,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.AffectedLines)
	assert.Equal(t, 2, res.AffectedBOMs)
	assert.ElementsMatch(t, []string{nuevo, otro}, f.components(t, p1))
	assert.Equal(t, []string{nuevo}, f.components(t, p2))
}

func TestExecute_AcotadoAUbicacion(t *testing.T) {
	f := newFixture(t)
	norte, sur := f.location(t, "NORTE"), f.location(t, "SUR")
	old := f.product(t, "OLD", entity.ItemTypePurchased)
	nuevo := f.product(t, "NEW", entity.ItemTypePurchased)
	p := f.product(t, "P", entity.ItemTypeManufactured)
	f.recipe(t, p, uses(old, "1", norte), uses(old, "1", sur))

	res, err := f.useCase(time.Second).Execute(context.Background(), substitution.Input{
		TenantID: tenant, OldComponentID: old, NewComponentID: nuevo, Scope: norte,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.AffectedLines)
	assert.ElementsMatch(t, []string{nuevo, old}, f.components(t, p))
}

func TestExecute_CicloRechazaTodoElLote(t *testing.T) {
	f := newFixture(t)
	old := f.product(t, "OLD", entity.ItemTypePurchased)
	a := f.product(t, "A", entity.ItemTypeManufactured)
	b := f.product(t, "B", entity.ItemTypeManufactured)
	x := f.product(t, "X", entity.ItemTypePurchased)
	// B usa OLD; A usa OLD y B. Sustituir OLD por A deja a A dependiendo de sí mismo.
	f.recipe(t, b, uses(old, "1", ""))
	f.recipe(t, a, uses(old, "1", ""), uses(b, "1", ""))
	f.recipe(t, f.product(t, "C", entity.ItemTypeManufactured), uses(old, "1", ""), uses(x, "1", ""))

	_, err := f.useCase(time.Second).Execute(context.Background(), substitution.Input{
		TenantID: tenant, OldComponentID: old, NewComponentID: a,
	})
	require.ErrorIs(t, err, domain.ErrCyclicBOM)

	assert.Contains(t, f.components(t, b), old, "sin efectos parciales")
	assert.Contains(t, f.components(t, a), old)
}

func TestExecute_Validaciones(t *testing.T) {
	f := newFixture(t)
	old := f.product(t, "OLD", entity.ItemTypePurchased)
	retirado := f.product(t, "RET", entity.ItemTypePurchased)
	p, err := f.store.Products.GetByID(context.Background(), tenant, retirado)
	require.NoError(t, err)
	p.Retired = true
	require.NoError(t, f.store.Products.Update(context.Background(), p))
	uc := f.useCase(time.Second)

	_, err = uc.Execute(context.Background(), substitution.Input{TenantID: tenant, OldComponentID: old, NewComponentID: old})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Execute(context.Background(), substitution.Input{TenantID: tenant, OldComponentID: old, NewComponentID: uuid.New().String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Execute(context.Background(), substitution.Input{TenantID: tenant, OldComponentID: old, NewComponentID: retirado})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExecute_TiempoAgotadoNoAplicaCambios(t *testing.T) {
	f := newFixture(t)
	old := f.product(t, "OLD", entity.ItemTypePurchased)
	nuevo := f.product(t, "NEW", entity.ItemTypePurchased)
	p := f.product(t, "P", entity.ItemTypeManufactured)
	f.recipe(t, p, uses(old, "1", ""))

	_, err := f.useCase(time.Nanosecond).Execute(context.Background(), substitution.Input{
		TenantID: tenant, OldComponentID: old, NewComponentID: nuevo,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{old}, f.components(t, p))
}
