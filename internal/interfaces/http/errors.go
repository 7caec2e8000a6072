package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Gana la primera coincidencia de errors.Is.
var errorMappings = []errorMapping{
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "cantidad inválida"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "recurso duplicado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrLotExhaustion, fiber.StatusConflict, "LOT_EXHAUSTION", "lotes de costo agotados, reintente"},
	{domain.ErrConcurrentModification, fiber.StatusConflict, "CONCURRENT_MODIFICATION", "modificación concurrente, reintente"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT", "la operación excedió el tiempo límite"},
}

// respondError traduce un error de dominio a su respuesta HTTP.
// Los errores no reconocidos se devuelven a Fiber para que ErrorHandler los registre.
func respondError(c *fiber.Ctx, err error) error {
	var cycle *domain.CycleError
	if errors.As(err, &cycle) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CYCLIC_BOM", Message: cycle.Error()})
	}
	if errors.Is(err, domain.ErrCyclicBOM) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CYCLIC_BOM", Message: "la lista de materiales genera un ciclo"})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	return err
}

// ErrorHandler responde 500 sin exponer el detalle y registra el error.
// Respeta los *fiber.Error (404 de ruta, 405, límites de body).
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: fe.Message})
		}
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("tenant_id", GetTenantID(c)).
			Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}
