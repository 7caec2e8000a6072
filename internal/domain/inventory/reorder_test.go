package inventory_test

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_SinVelocidadStockCero(t *testing.T) {
	s := inventory.Suggest(inventory.ReorderInput{CurrentStock: decimal.Zero, MinimumStockLevel: dec("20")})
	assertDec(t, "20", s.SuggestedQuantity)
	assert.Equal(t, entity.UrgencyCritical, s.Urgency)
	assert.Nil(t, s.DaysUntilRunout)
	assert.NotEmpty(t, s.Reasoning)
}

func TestSuggest_SinVelocidadConStock(t *testing.T) {
	s := inventory.Suggest(inventory.ReorderInput{CurrentStock: dec("8"), MinimumStockLevel: dec("20")})
	assertDec(t, "15", s.SuggestedQuantity, "déficit 12 redondeado a múltiplo de 5")
	assert.Equal(t, entity.UrgencyMedium, s.Urgency)
}

func TestSuggest_ConVelocidad(t *testing.T) {
	// objetivo = 10 + 2*7 + 10*1.5 = 39
	s := inventory.Suggest(inventory.ReorderInput{
		CurrentStock: dec("16"), MinimumStockLevel: dec("10"), DailyVelocity: dec("2"),
	})
	assertDec(t, "39", s.TargetStockLevel)
	require.NotNil(t, s.DaysUntilRunout)
	assert.Equal(t, int64(8), *s.DaysUntilRunout)
	assert.Equal(t, entity.UrgencyMedium, s.Urgency)
	assertDec(t, "30", s.SuggestedQuantity, "déficit 23 redondeado a múltiplo de 10")
}

func TestSuggest_Urgencias(t *testing.T) {
	cases := []struct {
		current string
		want    entity.Urgency
	}{
		{"0", entity.UrgencyCritical},
		{"5", entity.UrgencyCritical},
		{"12", entity.UrgencyHigh},
		{"28", entity.UrgencyMedium},
		{"40", entity.UrgencyLow},
	}
	for _, tc := range cases {
		s := inventory.Suggest(inventory.ReorderInput{
			CurrentStock: dec(tc.current), MinimumStockLevel: dec("5"), DailyVelocity: dec("2"), LeadTimeDays: 30,
		})
		assert.Equal(t, tc.want, s.Urgency, "stock %s", tc.current)
	}
}

func TestSuggest_SinDeficit(t *testing.T) {
	s := inventory.Suggest(inventory.ReorderInput{
		CurrentStock: dec("500"), MinimumStockLevel: dec("10"), DailyVelocity: dec("1"),
	})
	assertDec(t, "0", s.SuggestedQuantity)
	assert.Equal(t, entity.UrgencyLow, s.Urgency)
}

func TestSuggest_MultiplicadorPersonalizado(t *testing.T) {
	m := dec("0")
	s := inventory.Suggest(inventory.ReorderInput{
		CurrentStock: dec("0"), MinimumStockLevel: dec("10"), DailyVelocity: dec("1"), LeadTimeDays: 3, SafetyMultiplier: &m,
	})
	assertDec(t, "13", s.TargetStockLevel)
	assertDec(t, "15", s.SuggestedQuantity)
}

func TestSuggest_DiasHastaAgotarAcotadoAInt64(t *testing.T) {
	s := inventory.Suggest(inventory.ReorderInput{
		CurrentStock: dec("100000000000000000000"), MinimumStockLevel: dec("200000000000000000000"), DailyVelocity: dec("1"),
	})
	require.NotNil(t, s.DaysUntilRunout)
	assert.Equal(t, int64(math.MaxInt64), *s.DaysUntilRunout)
	assert.Equal(t, entity.UrgencyCritical, s.Urgency, "stock bajo el mínimo")
	assert.True(t, strings.Contains(strings.Join(s.Reasoning, " "), strconv.FormatInt(math.MaxInt64, 10)))

	neg := inventory.Suggest(inventory.ReorderInput{
		CurrentStock: dec("-100000000000000000000"), MinimumStockLevel: dec("1"), DailyVelocity: dec("1"),
	})
	require.NotNil(t, neg.DaysUntilRunout)
	assert.Equal(t, int64(math.MinInt64), *neg.DaysUntilRunout)
	assert.Equal(t, entity.UrgencyCritical, neg.Urgency)
}

func TestRoundOrderQuantity(t *testing.T) {
	assertDec(t, "5", inventory.RoundOrderQuantity(dec("0.4")))
	assertDec(t, "20", inventory.RoundOrderQuantity(dec("19.5")))
	assertDec(t, "20", inventory.RoundOrderQuantity(dec("20")))
	assertDec(t, "30", inventory.RoundOrderQuantity(dec("21")))
	assertDec(t, "0", inventory.RoundOrderQuantity(dec("-3")))
}
