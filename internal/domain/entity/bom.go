package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMVersion es una receta versionada de un producto fabricado.
// Las versiones anteriores se conservan para auditoría: se reemplazan, no se editan.
type BOMVersion struct {
	ID              string
	TenantID        string
	ParentProductID string
	VersionNumber   int
	Active          bool
	Lines           []BOMLine
	CreatedAt       time.Time
	CreatedBy       string
	SupersededAt    *time.Time
}

// BOMLine componente requerido por una unidad del padre.
// LocationID vacío aplica a todas las ubicaciones.
type BOMLine struct {
	ID                 string
	BOMVersionID       string
	ParentProductID    string
	ComponentProductID string
	QuantityRequired   decimal.Decimal
	UnitOfMeasure      string
	LocationID         string
}

// AppliesTo indica si la línea aplica a la ubicación dada ("" = cualquiera).
func (l *BOMLine) AppliesTo(locationID string) bool {
	return l.LocationID == "" || locationID == "" || l.LocationID == locationID
}
