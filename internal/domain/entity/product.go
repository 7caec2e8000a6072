package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType clasifica el producto según su origen.
type ItemType string

const (
	ItemTypePurchased    ItemType = "purchased"    // comprado a proveedor
	ItemTypeManufactured ItemType = "manufactured" // fabricado desde una BOM
)

// Valid indica si el tipo es conocido.
func (t ItemType) Valid() bool {
	return t == ItemTypePurchased || t == ItemTypeManufactured
}

// ProductionStrategy estrategia de producción (solo para fabricados).
type ProductionStrategy string

const (
	MakeToStock ProductionStrategy = "make_to_stock"
	MakeToOrder ProductionStrategy = "make_to_order"
)

// CostingMethod política de costeo de salidas.
type CostingMethod string

const (
	CostingFIFO            CostingMethod = "fifo"
	CostingLIFO            CostingMethod = "lifo"
	CostingWeightedAverage CostingMethod = "weighted_average"
	CostingStandard        CostingMethod = "standard"
)

// Valid indica si el método es soportado.
func (m CostingMethod) Valid() bool {
	switch m {
	case CostingFIFO, CostingLIFO, CostingWeightedAverage, CostingStandard:
		return true
	}
	return false
}

// UsesLots indica si el método consume lotes de costo (FIFO/LIFO).
func (m CostingMethod) UsesLots() bool {
	return m == CostingFIFO || m == CostingLIFO
}

// Product representa un artículo del inventario de un tenant.
// OnHandQuantity es una proyección cacheada del ledger; la autoridad es la secuencia de transacciones.
// Nunca se elimina mientras esté referenciado: se retira (Retired).
type Product struct {
	ID                 string
	TenantID           string
	SKU                string // único por tenant
	Barcode            string
	Name               string
	Category           string
	ItemType           ItemType
	ProductionStrategy ProductionStrategy // vacío si es comprado
	BaseUnitOfMeasure  string
	CostingMethod      CostingMethod
	StandardCost       decimal.Decimal // solo para costeo estándar
	SalePrice          decimal.Decimal
	MinimumStockLevel  decimal.Decimal
	LeadTimeDays       int
	OnHandQuantity     decimal.Decimal
	Retired            bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsManufactured indica si el producto se fabrica desde una BOM.
func (p *Product) IsManufactured() bool { return p.ItemType == ItemTypeManufactured }

// ValidClassification valida la combinación tipo/estrategia/método de costeo.
func (p *Product) ValidClassification() bool {
	if !p.ItemType.Valid() || !p.CostingMethod.Valid() {
		return false
	}
	switch p.ProductionStrategy {
	case "":
	case MakeToStock, MakeToOrder:
		if !p.IsManufactured() {
			return false
		}
	default:
		return false
	}
	if p.MinimumStockLevel.IsNegative() || p.StandardCost.IsNegative() || p.LeadTimeDays < 0 {
		return false
	}
	return true
}
