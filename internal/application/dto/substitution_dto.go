package dto

import "github.com/shopspring/decimal"

// AffectedBOMResponse versión activa que usa el componente a sustituir.
type AffectedBOMResponse struct {
	BOMVersionID     string          `json:"bom_version_id"`
	ParentProductID  string          `json:"parent_product_id"`
	VersionNumber    int             `json:"version_number"`
	Lines            int             `json:"lines"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
}

// SubstitutionPreviewResponse página de BOMs afectadas.
type SubstitutionPreviewResponse struct {
	OldComponentID string                `json:"old_component_id"`
	Scope          string                `json:"scope,omitempty"`
	Items          []AffectedBOMResponse `json:"items"`
	Page           PageResponse          `json:"page"`
}

// SubstitutionRequest body para POST /api/substitutions/execute.
// Scope vacío aplica a todas las ubicaciones.
type SubstitutionRequest struct {
	OldComponentID string `json:"old_component_id" validate:"required,uuid"`
	NewComponentID string `json:"new_component_id" validate:"required,uuid"`
	Scope          string `json:"scope" validate:"omitempty,uuid"`
}

// SubstitutionResponse resultado de la sustitución masiva.
type SubstitutionResponse struct {
	AffectedLines int64 `json:"affected_lines"`
	AffectedBOMs  int   `json:"affected_boms"`
}
