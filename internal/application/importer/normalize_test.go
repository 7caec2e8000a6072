package importer_test

import (
	"testing"

	"github.com/jhoicas/stockledger/internal/application/importer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldHeader(t *testing.T) {
	assert.Equal(t, "precio de compra", importer.FoldHeader("  Precio_de-Compra "))
	assert.Equal(t, "categoria", importer.FoldHeader("CATEGORÍA"))
	assert.Equal(t, "ubicacion", importer.FoldHeader("Ubicación"))
}

func TestMatchHeader_Sinonimos(t *testing.T) {
	casos := map[string]importer.Field{
		"Nombre del Producto": importer.FieldName,
		"Existencias":         importer.FieldStock,
		"Stock Mínimo":        importer.FieldMinimumLevel,
		"Costo Unitario":      importer.FieldPurchasePrice,
		"PVP":                 importer.FieldSalePrice,
		"Almacén":             importer.FieldLocation,
		"Familia":             importer.FieldCategory,
		"Código":              importer.FieldSKU,
		"Código de Barras":    importer.FieldBarcode,
		"Color":               importer.FieldUnknown,
	}
	for header, want := range casos {
		assert.Equal(t, want, importer.MatchHeader(header), header)
	}
}

func TestMapHeaders_PrimeraColumnaGana(t *testing.T) {
	m := importer.MapHeaders([]string{"Nombre", "Precio", "PVP", "Color", ""})
	assert.Equal(t, 0, m.Columns[importer.FieldName])
	assert.Equal(t, 1, m.Columns[importer.FieldSalePrice])
	assert.Equal(t, []string{"PVP", "Color"}, m.Unmapped)
}

func TestParseNumber(t *testing.T) {
	casos := map[string]string{
		"":          "0",
		"12":        "12",
		"12.5":      "12.5",
		"12,5":      "12.5",
		"$ 25.000":  "25000",
		"1.234,56":  "1234.56",
		"1,234.56":  "1234.56",
		"1.234.567": "1234567",
		"0.500":     "0.5",
	}
	for in, want := range casos {
		got, err := importer.ParseNumber(in)
		require.NoError(t, err, in)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%q: esperado %s, obtenido %s", in, want, got)
	}

	_, err := importer.ParseNumber("doce")
	assert.Error(t, err)
}

func TestNormalizeRows(t *testing.T) {
	raw := [][]string{
		{"Producto", "Cantidad", "Mínimo", "Costo", "Precio Venta", "Bodega", "SKU"},
		{"Tornillo", "100", "20", "150", "300", "norte", "T-1"},
		{"", "", "", "", "", "", ""},
		{"", "5", "", "", "", "", ""},
		{"Tuerca", "-1", "", "", "", "", ""},
		{"Arandela", "abc", "", "", "", "", ""},
		{"Clavo"},
	}
	rows, errs, mapping, err := importer.NormalizeRows(raw)
	require.NoError(t, err)
	assert.Empty(t, mapping.Unmapped)

	require.Len(t, rows, 2)
	assert.Equal(t, "Tornillo", rows[0].Name)
	assert.Equal(t, 1, rows[0].Line)
	assert.Equal(t, "NORTE", rows[0].Location)
	assert.True(t, decimal.NewFromInt(150).Equal(rows[0].PurchasePrice))
	assert.Equal(t, "Clavo", rows[1].Name)
	assert.True(t, rows[1].Stock.IsZero(), "columnas faltantes valen cero")

	require.Len(t, errs, 3)
	assert.Equal(t, 3, errs[0].Line)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "stock", errs[1].Field)
	assert.Equal(t, "stock", errs[2].Field)
}

func TestNormalizeRows_SinColumnaNombre(t *testing.T) {
	_, _, _, err := importer.NormalizeRows([][]string{{"Cantidad"}, {"1"}})
	assert.Error(t, err)
}
