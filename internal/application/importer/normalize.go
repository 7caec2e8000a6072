package importer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field columna reconocida de la planilla de productos.
type Field int

const (
	FieldUnknown Field = iota
	FieldName
	FieldStock
	FieldMinimumLevel
	FieldPurchasePrice
	FieldSalePrice
	FieldLocation
	FieldCategory
	FieldSKU
	FieldBarcode
)

var fieldNames = map[Field]string{
	FieldName:          "name",
	FieldStock:         "stock",
	FieldMinimumLevel:  "minimum_level",
	FieldPurchasePrice: "purchase_price",
	FieldSalePrice:     "sale_price",
	FieldLocation:      "location",
	FieldCategory:      "category",
	FieldSKU:           "sku",
	FieldBarcode:       "barcode",
}

func (f Field) String() string {
	if s, ok := fieldNames[f]; ok {
		return s
	}
	return "unknown"
}

// synonyms encabezados aceptados por campo, ya normalizados con FoldHeader.
var synonyms = map[string]Field{
	"nombre": FieldName, "producto": FieldName, "nombre del producto": FieldName, "nombre producto": FieldName,
	"descripcion": FieldName, "articulo": FieldName, "name": FieldName, "product": FieldName,
	"product name": FieldName, "item": FieldName,

	"stock": FieldStock, "existencia": FieldStock, "existencias": FieldStock, "cantidad": FieldStock,
	"inventario": FieldStock, "saldo": FieldStock, "qty": FieldStock, "quantity": FieldStock, "on hand": FieldStock,
	"stock actual": FieldStock,

	"stock minimo": FieldMinimumLevel, "minimo": FieldMinimumLevel, "nivel minimo": FieldMinimumLevel,
	"punto de reorden": FieldMinimumLevel, "min stock": FieldMinimumLevel, "minimum": FieldMinimumLevel,
	"minimum stock": FieldMinimumLevel, "reorder point": FieldMinimumLevel,

	"precio compra": FieldPurchasePrice, "precio de compra": FieldPurchasePrice, "costo": FieldPurchasePrice,
	"costo unitario": FieldPurchasePrice, "valor compra": FieldPurchasePrice, "cost": FieldPurchasePrice,
	"unit cost": FieldPurchasePrice, "purchase price": FieldPurchasePrice,

	"precio venta": FieldSalePrice, "precio de venta": FieldSalePrice, "precio": FieldSalePrice,
	"pvp": FieldSalePrice, "valor venta": FieldSalePrice, "sale price": FieldSalePrice, "price": FieldSalePrice,

	"bodega": FieldLocation, "ubicacion": FieldLocation, "almacen": FieldLocation, "sucursal": FieldLocation,
	"location": FieldLocation, "warehouse": FieldLocation,

	"categoria": FieldCategory, "familia": FieldCategory, "linea": FieldCategory, "grupo": FieldCategory,
	"category": FieldCategory,

	"sku": FieldSKU, "codigo": FieldSKU, "codigo interno": FieldSKU, "referencia": FieldSKU, "ref": FieldSKU,
	"code": FieldSKU, "item code": FieldSKU,

	"codigo de barras": FieldBarcode, "codigo barras": FieldBarcode, "barcode": FieldBarcode, "ean": FieldBarcode,
	"upc": FieldBarcode, "gtin": FieldBarcode,
}

// FoldHeader pasa a minúsculas, quita tildes y reduce separadores a un espacio.
// "Precio_de-Compra " -> "precio de compra".
func FoldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}

// MatchHeader resuelve un encabezado contra la tabla de sinónimos.
func MatchHeader(header string) Field {
	return synonyms[FoldHeader(header)]
}

// Mapping columnas reconocidas de una planilla.
type Mapping struct {
	Columns  map[Field]int
	Unmapped []string
}

// MapHeaders asigna cada columna a un campo; si dos columnas resuelven al mismo campo
// gana la primera y la otra queda como no reconocida.
func MapHeaders(headers []string) Mapping {
	m := Mapping{Columns: make(map[Field]int)}
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			continue
		}
		f := MatchHeader(h)
		if _, dup := m.Columns[f]; f == FieldUnknown || dup {
			m.Unmapped = append(m.Unmapped, h)
			continue
		}
		m.Columns[f] = i
	}
	return m
}

// RowError fila rechazada durante la normalización o la importación.
type RowError struct {
	Line    int
	Field   string
	Message string
}

func (e RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("fila %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("fila %d (%s): %s", e.Line, e.Field, e.Message)
}

// NormalizeRows convierte las filas crudas (la primera es el encabezado) en ProductRow.
// Las filas vacías se ignoran; las inválidas se reportan sin abortar el resto.
func NormalizeRows(raw [][]string) ([]entity.ProductRow, []RowError, Mapping, error) {
	if len(raw) == 0 {
		return nil, nil, Mapping{}, fmt.Errorf("planilla vacía")
	}
	mapping := MapHeaders(raw[0])
	if _, ok := mapping.Columns[FieldName]; !ok {
		return nil, nil, mapping, fmt.Errorf("no se encontró la columna de nombre del producto")
	}

	var rows []entity.ProductRow
	var errs []RowError
	for i, cells := range raw[1:] {
		line := i + 1
		if blank(cells) {
			continue
		}
		row, err := normalizeRow(line, cells, mapping)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, errs, mapping, nil
}

func normalizeRow(line int, cells []string, m Mapping) (entity.ProductRow, *RowError) {
	get := func(f Field) string {
		idx, ok := m.Columns[f]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}
	row := entity.ProductRow{
		Line:     line,
		Name:     get(FieldName),
		Location: strings.ToUpper(get(FieldLocation)),
		Category: get(FieldCategory),
		SKU:      get(FieldSKU),
		Barcode:  get(FieldBarcode),
	}
	if row.Name == "" {
		return row, &RowError{Line: line, Field: FieldName.String(), Message: "nombre requerido"}
	}
	numbers := []struct {
		field Field
		dst   *decimal.Decimal
	}{
		{FieldStock, &row.Stock},
		{FieldMinimumLevel, &row.MinimumLevel},
		{FieldPurchasePrice, &row.PurchasePrice},
		{FieldSalePrice, &row.SalePrice},
	}
	for _, n := range numbers {
		v, err := ParseNumber(get(n.field))
		if err != nil {
			return row, &RowError{Line: line, Field: n.field.String(), Message: err.Error()}
		}
		if v.IsNegative() {
			return row, &RowError{Line: line, Field: n.field.String(), Message: "no puede ser negativo"}
		}
		*n.dst = v
	}
	return row, nil
}

// ParseNumber acepta formatos "1234.5", "1.234,5", "1,234.5", "$ 25.000". Un separador
// único seguido de exactamente tres dígitos se toma como separador de miles.
// Vacío vale cero.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '$' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, nil
	}
	lastDot, lastComma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		thousands, dec := ",", "."
		if lastComma > lastDot {
			thousands, dec = ".", ","
		}
		s = strings.ReplaceAll(s, thousands, "")
		s = strings.Replace(s, dec, ".", 1)
	case lastDot >= 0 || lastComma >= 0:
		sep := "."
		if lastComma >= 0 {
			sep = ","
		}
		parts := strings.Split(s, sep)
		if len(parts) > 2 || (len(parts[1]) == 3 && parts[0] != "" && parts[0] != "0" && parts[0] != "-0") {
			s = strings.Join(parts, "")
		} else {
			s = parts[0] + "." + parts[1]
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("número inválido")
	}
	return d, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
