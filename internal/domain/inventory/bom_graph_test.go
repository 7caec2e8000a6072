package inventory_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(parent, component, qty string) entity.BOMLine {
	return entity.BOMLine{ParentProductID: parent, ComponentProductID: component, QuantityRequired: dec(qty)}
}

func linesFrom(boms map[string][]entity.BOMLine) inventory.LinesFunc {
	return func(productID string) ([]entity.BOMLine, error) {
		return boms[productID], nil
	}
}

func TestExplode_SumaNiveles(t *testing.T) {
	boms := map[string][]entity.BOMLine{
		"P": {line("P", "A", "2"), line("P", "S", "1")},
		"S": {line("S", "A", "3"), line("S", "B", "2")},
	}
	reqs, err := inventory.Explode("P", boms["P"], linesFrom(boms))
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	byID := map[string]inventory.Requirement{}
	for _, r := range reqs {
		byID[r.ComponentID] = r
	}
	assertDec(t, "5", byID["A"].QuantityPerParentUnit)
	assert.Equal(t, 2, byID["A"].Depth, "profundidad máxima")
	assert.True(t, byID["A"].Leaf)
	assert.False(t, byID["S"].Leaf)
	assertDec(t, "2", byID["B"].QuantityPerParentUnit)
}

func TestExplode_MultiplicaCantidades(t *testing.T) {
	boms := map[string][]entity.BOMLine{
		"P": {line("P", "S", "3")},
		"S": {line("S", "T", "2")},
		"T": {line("T", "X", "0.5")},
	}
	reqs, err := inventory.Explode("P", boms["P"], linesFrom(boms))
	require.NoError(t, err)
	last := reqs[len(reqs)-1]
	assert.Equal(t, "X", last.ComponentID)
	assert.Equal(t, 3, last.Depth)
	assertDec(t, "3", last.QuantityPerParentUnit)
}

func TestExplode_DetectaCiclo(t *testing.T) {
	boms := map[string][]entity.BOMLine{
		"P": {line("P", "S", "1")},
		"S": {line("S", "T", "1")},
		"T": {line("T", "P", "1")},
	}
	_, err := inventory.Explode("P", boms["P"], linesFrom(boms))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCyclicBOM)

	var ce *domain.CycleError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.Depth)
	assert.Equal(t, []string{"P", "S", "T", "P"}, ce.Path)
}

func TestGraph_ValidateAcyclic(t *testing.T) {
	g := inventory.NewGraph([]entity.BOMLine{
		line("P", "A", "1"),
		line("A", "B", "1"),
	})
	assert.NoError(t, g.ValidateAcyclic("A", []string{"C"}))

	err := g.ValidateAcyclic("B", []string{"P"})
	assert.ErrorIs(t, err, domain.ErrCyclicBOM, "B requeriría transitivamente a sí mismo")

	err = g.ValidateAcyclic("A", []string{"A"})
	assert.ErrorIs(t, err, domain.ErrCyclicBOM)
}

func TestGraph_Substitute(t *testing.T) {
	g := inventory.NewGraph([]entity.BOMLine{
		line("P", "A", "1"),
		line("Q", "A", "1"),
		line("X", "P", "1"),
	})
	g.Substitute("A", "X", []string{"P", "Q"})
	assert.ErrorIs(t, g.ValidateAcyclic("P", []string{"X"}), domain.ErrCyclicBOM)
	assert.NoError(t, g.ValidateAcyclic("Q", []string{"X"}))
}

func TestDirectRequirements_AgrupaYFiltraUbicacion(t *testing.T) {
	l1 := line("P", "A", "1")
	l2 := line("P", "A", "2")
	l3 := line("P", "B", "1")
	l3.LocationID = "bodega-2"

	reqs := inventory.DirectRequirements([]entity.BOMLine{l1, l2, l3}, "bodega-1")
	require.Len(t, reqs, 1)
	assertDec(t, "3", reqs[0].QuantityPerParentUnit)

	assert.Len(t, inventory.DirectRequirements([]entity.BOMLine{l1, l2, l3}, ""), 2)
}

func TestValidateLines(t *testing.T) {
	assert.ErrorIs(t, inventory.ValidateLines("P", nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateLines("P", []entity.BOMLine{line("P", "A", "0")}), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, inventory.ValidateLines("P", []entity.BOMLine{line("P", "P", "1")}), domain.ErrCyclicBOM)
	assert.NoError(t, inventory.ValidateLines("P", []entity.BOMLine{line("P", "A", "1")}))
}

func TestGraph_AddComponents_ConservaAristas(t *testing.T) {
	g := inventory.NewGraph([]entity.BOMLine{line("P", "A", "1"), line("A", "X", "1")})
	g.AddComponents("P", []string{"B", "A"})

	assert.NotNil(t, g.PathTo("P", "X"), "la arista P->A debe seguir existiendo")
	assert.NotNil(t, g.PathTo("P", "B"))

	err := g.ValidateAcyclic("X", []string{"P"})
	var cyc *domain.CycleError
	require.ErrorAs(t, err, &cyc)
}

func TestGraph_SetComponents_ReemplazaAristas(t *testing.T) {
	g := inventory.NewGraph([]entity.BOMLine{line("P", "A", "1"), line("A", "X", "1")})
	g.SetComponents("P", []string{"B", "B"})

	assert.Nil(t, g.PathTo("P", "X"), "la versión anterior deja de aportar aristas")
	assert.Equal(t, []string{"P", "B"}, g.PathTo("P", "B"))
	assert.NoError(t, g.ValidateAcyclic("X", []string{"P"}))
}
