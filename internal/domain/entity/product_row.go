package entity

import "github.com/shopspring/decimal"

// ProductRow registro normalizado de la importación masiva.
// Es el único formato que el núcleo consume desde hojas de cálculo.
type ProductRow struct {
	Line          int // fila de origen (1 = primera fila de datos)
	Name          string
	Stock         decimal.Decimal
	MinimumLevel  decimal.Decimal
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Location      string
	Category      string
	SKU           string
	Barcode       string
}
