package inventory_test

import (
	"testing"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBalance_SalidaSinStock(t *testing.T) {
	tx := issue("o1", 1, "5")

	_, err := inventory.NextBalance(dec("3"), tx, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	after, err := inventory.NextBalance(dec("3"), tx, true)
	require.NoError(t, err)
	assertDec(t, "-2", after)
}

func TestNextBalance_AjusteConSigno(t *testing.T) {
	adj := &entity.StockTransaction{Type: entity.TxManualAdjustment, Quantity: dec("-4")}
	after, err := inventory.NextBalance(dec("10"), adj, false)
	require.NoError(t, err)
	assertDec(t, "6", after)

	_, err = inventory.NextBalance(dec("3"), adj, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestValidateTransaction(t *testing.T) {
	cases := []struct {
		name string
		tx   entity.StockTransaction
		want error
	}{
		{"cantidad cero", entity.StockTransaction{Type: entity.TxIncoming, Quantity: decimal.Zero}, domain.ErrInvalidQuantity},
		{"entrada negativa", entity.StockTransaction{Type: entity.TxIncoming, Quantity: dec("-1")}, domain.ErrInvalidQuantity},
		{"tipo desconocido", entity.StockTransaction{Type: "transfer", Quantity: dec("1")}, domain.ErrInvalidInput},
		{"costo negativo", entity.StockTransaction{Type: entity.TxIncoming, Quantity: dec("1"), UnitCost: dec("-1")}, domain.ErrInvalidInput},
		{"backfill negativo", entity.StockTransaction{Type: entity.TxBackfill, Quantity: dec("-1")}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateTransaction(&tc.tx)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReplayer_DetectaInconsistencia(t *testing.T) {
	txs := []entity.StockTransaction{
		*receipt("r1", 1, "10", "1"),
		*issue("o1", 2, "4"),
		*receipt("r2", 3, "2", "1"),
	}
	for i, after := range []string{"10", "6", "8"} {
		txs[i].QuantityAfter = dec(after)
	}

	r := inventory.NewReplayer()
	for _, tx := range txs {
		r.Feed(tx)
	}
	rep := r.Report()
	assert.True(t, rep.Consistent)
	assert.Equal(t, 3, rep.Transactions)
	assertDec(t, "8", r.Balance())

	txs[1].QuantityAfter = dec("7")
	r = inventory.NewReplayer()
	for _, tx := range txs {
		r.Feed(tx)
	}
	rep = r.Report()
	assert.False(t, rep.Consistent)
	assert.Equal(t, int64(2), rep.FirstMismatch)
	assertDec(t, "6", rep.Expected)
	assertDec(t, "7", rep.Stored)
}
