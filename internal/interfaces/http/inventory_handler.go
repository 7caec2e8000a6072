package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/inventory"
)

// LedgerHandler expone el ledger de movimientos y las reservas (protegido).
type LedgerHandler struct {
	uc *inventory.LedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *inventory.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// Append godoc
// @Summary      Registrar transacción de stock
// @Description  Agrega un movimiento inmutable al ledger y actualiza la existencia y los lotes de costo
//
//	en la misma transacción. incoming/outgoing llevan cantidad positiva.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AppendTransactionRequest  true  "product_id, location_id, type, quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ValidationErrorResponse
// @Router       /api/ledger/transactions [post]
func (h *LedgerHandler) Append(c *fiber.Ctx) error {
	var in dto.AppendTransactionRequest
	if err := bindAndValidate(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.AppendFromRequest(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Transacciones posteriores a un cursor
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true   "Producto"
// @Param        location_id  query  string  true   "Ubicación"
// @Param        cursor       query  int     false  "Último sequence visto (0 = desde el inicio)"
// @Param        limit        query  int     false  "Tamaño de página"
// @Success      200  {object}  dto.TransactionPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/transactions [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	cursor, err := queryCursor(c)
	if err != nil || cursor < 0 {
		return badQuery(c, "cursor inválido")
	}
	page, next, err := h.uc.Page(c.Context(), GetTenantID(c), c.Query("product_id"), c.Query("location_id"), cursor, c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.TransactionPageResponse{Items: make([]dto.TransactionResponse, 0, len(page)), NextCursor: next}
	for i := range page {
		out.Items = append(out.Items, dto.ToTransactionResponse(&page[i]))
	}
	return c.JSON(out)
}

// Replay godoc
// @Summary      Auditoría del ledger
// @Description  Recalcula la secuencia de saldos y la compara con lo almacenado y con la existencia cacheada.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true  "Producto"
// @Param        location_id  query  string  true  "Ubicación"
// @Success      200  {object}  dto.ReplayResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/replay [get]
func (h *LedgerHandler) Replay(c *fiber.Ctx) error {
	res, err := h.uc.Replay(c.Context(), GetTenantID(c), c.Query("product_id"), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ReplayResponse{
		Transactions:      res.Transactions,
		Consistent:        res.Consistent,
		FirstMismatch:     res.FirstMismatch,
		Expected:          res.Expected,
		Stored:            res.Stored,
		LastQuantityAfter: res.LastQuantityAfter,
		CachedOnHand:      res.CachedOnHand,
		CacheConsistent:   res.CacheConsistent,

		ProductOnHand:          res.ProductOnHand,
		LocationsOnHand:        res.LocationsOnHand,
		ProductCacheConsistent: res.ProductCacheConsistent,
	})
}

// Reserve godoc
// @Summary      Reservar o liberar stock
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "release=true libera"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/reservations [post]
func (h *LedgerHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReservationRequest
	if err := bindAndValidate(c, &in); err != nil {
		return nil
	}
	out, err := h.uc.ReserveFromRequest(c.Context(), GetTenantID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
