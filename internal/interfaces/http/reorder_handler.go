package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	dominventory "github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ReorderHandler sugerencias de reposición.
type ReorderHandler struct {
	uc *inventory.ReplenishmentUseCase
}

// NewReorderHandler construye el handler.
func NewReorderHandler(uc *inventory.ReplenishmentUseCase) *ReorderHandler {
	return &ReorderHandler{uc: uc}
}

func toReorderResponse(s entity.ReorderSuggestion, current, velocity decimal.Decimal, lead int) dto.ReorderSuggestionResponse {
	reasoning := s.Reasoning
	if reasoning == nil {
		reasoning = []string{}
	}
	return dto.ReorderSuggestionResponse{
		ProductID:         s.ProductID,
		SuggestedQuantity: s.SuggestedQuantity,
		Urgency:           string(s.Urgency),
		TargetStockLevel:  s.TargetStockLevel,
		DaysUntilRunout:   s.DaysUntilRunout,
		CurrentStock:      current,
		DailyVelocity:     velocity,
		LeadTimeDays:      lead,
		Reasoning:         reasoning,
	}
}

// ForProduct godoc
// @Summary      Sugerencia de reposición de un producto
// @Description  La velocidad diaria se deriva de las salidas del ledger en la ventana configurada.
// @Tags         reorder
// @Security     Bearer
// @Produce      json
// @Param        productId    path   string  true   "Producto"
// @Param        location_id  query  string  false  "Ubicación (vacío = stock total)"
// @Success      200  {object}  dto.ReorderSuggestionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reorder/{productId} [get]
func (h *ReorderHandler) ForProduct(c *fiber.Ctx) error {
	res, err := h.uc.SuggestForProduct(c.Context(), GetTenantID(c), c.Params("productId"), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toReorderResponse(res.ReorderSuggestion, res.CurrentStock, res.DailyVelocity, res.LeadTimeDays))
}

// Suggest godoc
// @Summary      Cálculo puro de reposición
// @Tags         reorder
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReorderSuggestRequest  true  "Existencia, mínimo, velocidad y lead time"
// @Success      200   {object}  dto.ReorderSuggestionResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/reorder/suggest [post]
func (h *ReorderHandler) Suggest(c *fiber.Ctx) error {
	var in dto.ReorderSuggestRequest
	if err := bindAndValidate(c, &in); err != nil {
		return nil
	}
	s := h.uc.Suggest(dominventory.ReorderInput{
		CurrentStock:      in.CurrentStock,
		MinimumStockLevel: in.MinimumStockLevel,
		DailyVelocity:     in.DailyVelocity,
		LeadTimeDays:      in.LeadTimeDays,
		SafetyMultiplier:  in.SafetyMultiplier,
	})
	return c.JSON(toReorderResponse(s, in.CurrentStock, in.DailyVelocity, in.LeadTimeDays))
}

// ReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos activos con sugerencia positiva, ordenados por urgencia y déficit.
// @Tags         reorder
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación. Vacío = stock global."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/reorder/replenishment-list [get]
func (h *ReorderHandler) ReplenishmentList(c *fiber.Ctx) error {
	list, err := h.uc.GenerateReplenishmentList(c.Context(), GetTenantID(c), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
