package inventory_test

import (
	"context"
	"testing"

	appinventory "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplenishment_SuggestSinVelocidad(t *testing.T) {
	uc := appinventory.NewReplenishmentUseCase(newFixture(t).store, appinventory.ReorderConfig{})
	s := uc.Suggest(inventory.ReorderInput{
		CurrentStock:      dec("0"),
		MinimumStockLevel: dec("20"),
	})
	assertDec(t, "20", s.SuggestedQuantity)
	assert.Equal(t, entity.UrgencyCritical, s.Urgency)
}

func TestReplenishment_SuggestForProductUsaSalidasRecientes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, "R-1", entity.CostingWeightedAverage)
	p.MinimumStockLevel = dec("10")
	p.LeadTimeDays = 5
	require.NoError(t, f.store.Products.Update(ctx, p))

	ledger := f.ledger(false)
	_, err := ledger.Append(ctx, receive(p, f.location, "100", "2"))
	require.NoError(t, err)
	_, err = ledger.Append(ctx, movement(p, f.location, entity.TxOutgoing, "60"))
	require.NoError(t, err)

	uc := appinventory.NewReplenishmentUseCase(f.store, appinventory.ReorderConfig{VelocityWindowDays: 30})
	s, err := uc.SuggestForProduct(ctx, tenant, p.ID, f.location.ID)
	require.NoError(t, err)
	assertDec(t, "40", s.CurrentStock)
	assertDec(t, "2", s.DailyVelocity, "60 unidades en 30 días")
	assert.Equal(t, 5, s.LeadTimeDays)
	// objetivo = 10 + 2*5 + 10*1.5 = 35 < 40
	assertDec(t, "35", s.TargetStockLevel)
	assert.True(t, s.SuggestedQuantity.IsZero())
	assert.Equal(t, entity.UrgencyLow, s.Urgency)
}

func TestReplenishment_ListaOrdenadaPorUrgencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ledger := f.ledger(false)

	critico := f.addProduct(t, "Z-CRIT", entity.CostingWeightedAverage)
	critico.MinimumStockLevel = dec("20")
	require.NoError(t, f.store.Products.Update(ctx, critico))

	medio := f.addProduct(t, "A-MED", entity.CostingWeightedAverage)
	medio.MinimumStockLevel = dec("15")
	require.NoError(t, f.store.Products.Update(ctx, medio))
	_, err := ledger.Append(ctx, receive(medio, f.location, "12", "3"))
	require.NoError(t, err)

	sobrado := f.addProduct(t, "B-OK", entity.CostingWeightedAverage)
	_, err = ledger.Append(ctx, receive(sobrado, f.location, "50", "1"))
	require.NoError(t, err)

	uc := appinventory.NewReplenishmentUseCase(f.store, appinventory.ReorderConfig{})
	list, err := uc.GenerateReplenishmentList(ctx, tenant, "")
	require.NoError(t, err)

	require.Len(t, list, 2, "el producto sin mínimo ni consumo no se sugiere")
	assert.Equal(t, "Z-CRIT", list[0].SKU)
	assert.Equal(t, "critical", list[0].Urgency)
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, "A-MED", list[1].SKU)
	assert.Equal(t, 2, list[1].Priority)
	assertDec(t, "3", list[1].UnitCost)
}
