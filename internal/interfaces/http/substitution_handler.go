package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/substitution"
)

// SubstitutionHandler reemplazo masivo de un componente en las BOMs activas.
type SubstitutionHandler struct {
	uc *substitution.UseCase
}

// NewSubstitutionHandler construye el handler.
func NewSubstitutionHandler(uc *substitution.UseCase) *SubstitutionHandler {
	return &SubstitutionHandler{uc: uc}
}

// Preview godoc
// @Summary      BOMs afectadas por una sustitución
// @Tags         substitutions
// @Security     Bearer
// @Produce      json
// @Param        old_component_id  query  string  true   "Componente a reemplazar"
// @Param        scope             query  string  false  "Ubicación (vacío = todas)"
// @Param        limit             query  int     false  "Límite"
// @Param        offset            query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.SubstitutionPreviewResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/substitutions/preview [get]
func (h *SubstitutionHandler) Preview(c *fiber.Ctx) error {
	oldID := c.Query("old_component_id")
	scope := c.Query("scope")
	limit, offset := pageParams(c)
	page, err := h.uc.Preview(c.Context(), GetTenantID(c), oldID, scope, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.SubstitutionPreviewResponse{
		OldComponentID: oldID,
		Scope:          scope,
		Items:          make([]dto.AffectedBOMResponse, 0, len(page.Items)),
		Page:           dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: page.Total},
	}
	for _, a := range page.Items {
		out.Items = append(out.Items, dto.AffectedBOMResponse(a))
	}
	return c.JSON(out)
}

// Execute godoc
// @Summary      Ejecutar sustitución masiva
// @Description  Reemplaza el componente en todas las versiones activas del alcance en una sola
//
//	transacción serializable. Todo o nada.
//
// @Tags         substitutions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubstitutionRequest  true  "Componente viejo, nuevo y alcance"
// @Success      200   {object}  dto.SubstitutionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/substitutions/execute [post]
func (h *SubstitutionHandler) Execute(c *fiber.Ctx) error {
	var in dto.SubstitutionRequest
	if err := bindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.Execute(c.Context(), substitution.Input{
		TenantID:       GetTenantID(c),
		ActorID:        GetUserID(c),
		OldComponentID: in.OldComponentID,
		NewComponentID: in.NewComponentID,
		Scope:          in.Scope,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SubstitutionResponse{AffectedLines: res.AffectedLines, AffectedBOMs: res.AffectedBOMs})
}
