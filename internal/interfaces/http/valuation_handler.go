package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/costing"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// ValuationHandler valorización de inventario y costo de movimientos.
type ValuationHandler struct {
	uc *costing.UseCase
}

// NewValuationHandler construye el handler.
func NewValuationHandler(uc *costing.UseCase) *ValuationHandler {
	return &ValuationHandler{uc: uc}
}

// Get godoc
// @Summary      Valorizar un producto a una fecha
// @Description  Reproduce el historial hasta as_of con el método de costeo del producto.
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "Producto"
// @Param        location_id  query  string  false  "Ubicación (vacío = todas)"
// @Param        as_of        query  string  false  "RFC3339 o YYYY-MM-DD (default: ahora)"
// @Success      200  {object}  dto.ValuationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/valuation [get]
func (h *ValuationHandler) Get(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return badQuery(c, "product_id es requerido")
	}
	asOf, err := queryTime(c, "as_of", time.Time{})
	if err != nil {
		return badQuery(c, "as_of inválido")
	}
	res, err := h.uc.Valuation(c.Context(), GetTenantID(c), productID, c.Query("location_id"), asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ValuationResponse{
		ProductID:     res.ProductID,
		LocationID:    res.LocationID,
		CostingMethod: string(res.Method),
		AsOf:          res.AsOf,
		Quantity:      res.Quantity,
		TotalValue:    res.TotalValue,
		AvgUnitCost:   res.AvgUnitCost,
	})
}

// CostPreview godoc
// @Summary      Costo que tendría un movimiento
// @Description  Calcula el costo unitario con el método indicado (o el del producto) sin registrar nada.
// @Tags         valuation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CostPreviewRequest  true  "Movimiento hipotético"
// @Success      200   {object}  dto.CostPreviewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/valuation/cost-preview [post]
func (h *ValuationHandler) CostPreview(c *fiber.Ctx) error {
	var in dto.CostPreviewRequest
	if err := bindAndValidate(c, &in); err != nil {
		return nil
	}
	res, err := h.uc.CostOfTransaction(c.Context(), costing.PreviewInput{
		TenantID:   GetTenantID(c),
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Type:       entity.TransactionType(in.Type),
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		Method:     entity.CostingMethod(in.Method),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CostPreviewResponse{
		Method:    string(res.Method),
		UnitCost:  res.UnitCost,
		TotalCost: res.TotalCost,
	})
}

// ReportPDF godoc
// @Summary      Reporte de valorización en PDF
// @Tags         valuation
// @Security     Bearer
// @Produce      application/pdf
// @Param        as_of  query  string  false  "RFC3339 o YYYY-MM-DD (default: ahora)"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/valuation/report.pdf [get]
func (h *ValuationHandler) ReportPDF(c *fiber.Ctx) error {
	asOf, err := queryTime(c, "as_of", time.Time{})
	if err != nil {
		return badQuery(c, "as_of inválido")
	}
	pdf, filename, err := h.uc.ValuationReportPDF(c.Context(), GetTenantID(c), asOf)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}
