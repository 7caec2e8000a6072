package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/availability"
	"github.com/jhoicas/stockledger/internal/application/bom"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// BOMHandler recetas versionadas, explosión y disponibilidad para fabricar.
type BOMHandler struct {
	boms *bom.UseCase
	atp  *availability.UseCase
}

// NewBOMHandler construye el handler.
func NewBOMHandler(boms *bom.UseCase, atp *availability.UseCase) *BOMHandler {
	return &BOMHandler{boms: boms, atp: atp}
}

// SaveVersion godoc
// @Summary      Crear o revisar la BOM de un producto
// @Description  revise=false crea la primera versión; revise=true reemplaza la activa.
//
//	La versión anterior queda inactiva y conserva sus líneas.
//
// @Tags         boms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  string              true  "Producto fabricado"
// @Param        body       body  dto.SaveBOMRequest  true  "Líneas de la receta"
// @Success      201  {object}  dto.BOMVersionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/boms/{productId}/versions [post]
func (h *BOMHandler) SaveVersion(c *fiber.Ctx) error {
	var in dto.SaveBOMRequest
	if err := bindAndValidate(c, &in); err != nil {
		return nil
	}
	lines := make([]entity.BOMLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.BOMLine{
			ComponentProductID: l.ComponentProductID,
			QuantityRequired:   l.QuantityRequired,
			UnitOfMeasure:      l.UnitOfMeasure,
			LocationID:         l.LocationID,
		})
	}
	v, err := h.boms.Save(c.Context(), bom.SaveInput{
		TenantID:  GetTenantID(c),
		ActorID:   GetUserID(c),
		ProductID: c.Params("productId"),
		Lines:     lines,
		Revise:    in.Revise,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToBOMVersionResponse(v))
}

// Active godoc
// @Summary      Versión activa de la BOM
// @Tags         boms
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "Producto"
// @Success      200  {object}  dto.BOMVersionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boms/{productId}/active [get]
func (h *BOMHandler) Active(c *fiber.Ctx) error {
	v, err := h.boms.GetActiveVersion(c.Context(), GetTenantID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToBOMVersionResponse(v))
}

// Versions godoc
// @Summary      Historial de versiones de la BOM
// @Tags         boms
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "Producto"
// @Success      200  {array}  dto.BOMVersionResponse
// @Router       /api/boms/{productId}/versions [get]
func (h *BOMHandler) Versions(c *fiber.Ctx) error {
	list, err := h.boms.ListVersions(c.Context(), GetTenantID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BOMVersionResponse, 0, len(list))
	for _, v := range list {
		out = append(out, dto.ToBOMVersionResponse(v))
	}
	return c.JSON(out)
}

// Explode godoc
// @Summary      Explosión multinivel
// @Description  Requerimientos por unidad del producto raíz; los subensambles se expanden con su versión activa.
// @Tags         boms
// @Security     Bearer
// @Produce      json
// @Param        productId   path   string  true   "Producto"
// @Param        version_id  query  string  false  "Versión (default: activa)"
// @Success      200  {object}  dto.ExplosionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/boms/{productId}/explode [get]
func (h *BOMHandler) Explode(c *fiber.Ctx) error {
	productID := c.Params("productId")
	v, reqs, err := h.boms.Explode(c.Context(), GetTenantID(c), productID, c.Query("version_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ExplosionResponse{
		ProductID:    productID,
		BOMVersionID: v.ID,
		Requirements: dto.ToRequirementResponses(reqs),
	})
}

// ATP godoc
// @Summary      Disponible para fabricar (ATP)
// @Description  Cantidad fabricable con el stock actual de los componentes directos y sus faltantes.
// @Tags         atp
// @Security     Bearer
// @Produce      json
// @Param        productId     path   string  true   "Producto fabricado"
// @Param        location_id   query  string  false  "Ubicación (vacío = todas)"
// @Param        version_id    query  string  false  "Versión de BOM (default: activa)"
// @Param        target_build  query  number  false  "Cantidad objetivo (default: máximo fabricable)"
// @Success      200  {object}  dto.ATPResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/atp/{productId} [get]
func (h *BOMHandler) ATP(c *fiber.Ctx) error {
	target, err := queryDecimal(c, "target_build")
	if err != nil {
		return badQuery(c, "target_build inválido")
	}
	productID := c.Params("productId")
	locationID := c.Query("location_id")
	res, err := h.atp.Calculate(c.Context(), availability.Input{
		TenantID:     GetTenantID(c),
		ProductID:    productID,
		BOMVersionID: c.Query("version_id"),
		LocationID:   locationID,
		TargetBuild:  target,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToATPResponse(productID, res.BOMVersionID, locationID, res.ATPResult))
}
