package dto

import (
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// BOMLineRequest componente de una receta.
type BOMLineRequest struct {
	ComponentProductID string          `json:"component_product_id" validate:"required,uuid"`
	QuantityRequired   decimal.Decimal `json:"quantity_required"`
	UnitOfMeasure      string          `json:"unit_of_measure" validate:"max=20"`
	LocationID         string          `json:"location_id" validate:"omitempty,uuid"`
}

// SaveBOMRequest body para POST /api/boms/:productId/versions.
// Revise=true reemplaza la versión activa; false crea la primera.
type SaveBOMRequest struct {
	Revise bool             `json:"revise"`
	Lines  []BOMLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// BOMLineResponse línea de una versión.
type BOMLineResponse struct {
	ID                 string          `json:"id"`
	ComponentProductID string          `json:"component_product_id"`
	QuantityRequired   decimal.Decimal `json:"quantity_required"`
	UnitOfMeasure      string          `json:"unit_of_measure"`
	LocationID         string          `json:"location_id,omitempty"`
}

// BOMVersionResponse versión de receta con sus líneas.
type BOMVersionResponse struct {
	ID              string            `json:"id"`
	ParentProductID string            `json:"parent_product_id"`
	VersionNumber   int               `json:"version_number"`
	Active          bool              `json:"active"`
	CreatedAt       time.Time         `json:"created_at"`
	CreatedBy       string            `json:"created_by"`
	SupersededAt    *time.Time        `json:"superseded_at,omitempty"`
	Lines           []BOMLineResponse `json:"lines"`
}

// ToBOMVersionResponse convierte la entidad en DTO.
func ToBOMVersionResponse(v *entity.BOMVersion) BOMVersionResponse {
	out := BOMVersionResponse{
		ID:              v.ID,
		ParentProductID: v.ParentProductID,
		VersionNumber:   v.VersionNumber,
		Active:          v.Active,
		CreatedAt:       v.CreatedAt,
		CreatedBy:       v.CreatedBy,
		SupersededAt:    v.SupersededAt,
		Lines:           make([]BOMLineResponse, 0, len(v.Lines)),
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, BOMLineResponse{
			ID:                 l.ID,
			ComponentProductID: l.ComponentProductID,
			QuantityRequired:   l.QuantityRequired,
			UnitOfMeasure:      l.UnitOfMeasure,
			LocationID:         l.LocationID,
		})
	}
	return out
}

// RequirementResponse requerimiento explotado por unidad del producto raíz.
type RequirementResponse struct {
	ComponentID           string          `json:"component_id"`
	QuantityPerParentUnit decimal.Decimal `json:"quantity_per_parent_unit"`
	Depth                 int             `json:"depth"`
	Leaf                  bool            `json:"leaf"`
}

// ExplosionResponse explosión multinivel de una versión.
type ExplosionResponse struct {
	ProductID    string                `json:"product_id"`
	BOMVersionID string                `json:"bom_version_id"`
	Requirements []RequirementResponse `json:"requirements"`
}

// ToRequirementResponses convierte requerimientos del dominio.
func ToRequirementResponses(reqs []inventory.Requirement) []RequirementResponse {
	out := make([]RequirementResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, RequirementResponse{
			ComponentID:           r.ComponentID,
			QuantityPerParentUnit: r.QuantityPerParentUnit,
			Depth:                 r.Depth,
			Leaf:                  r.Leaf,
		})
	}
	return out
}

// ComponentAvailabilityResponse detalle ATP por componente.
type ComponentAvailabilityResponse struct {
	ComponentID string          `json:"component_id"`
	Required    decimal.Decimal `json:"required"`
	Available   decimal.Decimal `json:"available"`
	Buildable   decimal.Decimal `json:"buildable"`
	Surplus     decimal.Decimal `json:"surplus"`
	Binding     bool            `json:"binding"`
}

// ShortageResponse faltante de un componente.
type ShortageResponse struct {
	ComponentID   string          `json:"component_id"`
	Required      decimal.Decimal `json:"required"`
	Available     decimal.Decimal `json:"available"`
	QuantityShort decimal.Decimal `json:"quantity_short"`
}

// ATPResponse respuesta de GET /api/atp/:productId.
type ATPResponse struct {
	ProductID         string                          `json:"product_id"`
	BOMVersionID      string                          `json:"bom_version_id"`
	LocationID        string                          `json:"location_id,omitempty"`
	BuildableQuantity decimal.Decimal                 `json:"buildable_quantity"`
	TargetBuild       decimal.Decimal                 `json:"target_build"`
	Components        []ComponentAvailabilityResponse `json:"components"`
	Shortages         []ShortageResponse              `json:"shortages"`
}

// ToATPResponse convierte el resultado del cálculo.
func ToATPResponse(productID, versionID, locationID string, r inventory.ATPResult) ATPResponse {
	out := ATPResponse{
		ProductID:         productID,
		BOMVersionID:      versionID,
		LocationID:        locationID,
		BuildableQuantity: r.BuildableQuantity,
		TargetBuild:       r.TargetBuild,
		Components:        make([]ComponentAvailabilityResponse, 0, len(r.Components)),
		Shortages:         make([]ShortageResponse, 0, len(r.Shortages)),
	}
	for _, c := range r.Components {
		out.Components = append(out.Components, ComponentAvailabilityResponse(c))
	}
	for _, s := range r.Shortages {
		out.Shortages = append(out.Shortages, ShortageResponse(s))
	}
	return out
}
