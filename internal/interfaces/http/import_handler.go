package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/application/importer"
	"github.com/jhoicas/stockledger/internal/domain"
)

// ImportHandler carga masiva de productos desde hojas de cálculo.
type ImportHandler struct {
	uc *importer.UseCase
}

// NewImportHandler construye el handler.
func NewImportHandler(uc *importer.UseCase) *ImportHandler {
	return &ImportHandler{uc: uc}
}

// Products godoc
// @Summary      Importar productos (xlsx/csv)
// @Description  Los encabezados se reconocen por sinónimos. Cada fila válida crea un producto comprado
//
//	y su movimiento de apertura; las filas con error se reportan sin detener el resto.
//
// @Tags         import
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo .xlsx o .csv"
// @Success      200   {object}  dto.ImportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/import/products [post]
func (h *ImportHandler) Products(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "el campo file es requerido"})
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := h.uc.Import(c.Context(), importer.Input{
		TenantID: GetTenantID(c),
		ActorID:  GetUserID(c),
		Filename: fh.Filename,
		File:     f,
	})
	if err != nil {
		// El detalle de lectura o de encabezados sí le sirve al usuario.
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_FILE", Message: err.Error()})
		}
		return respondError(c, err)
	}
	out := dto.ImportResponse{
		TotalRows:        res.TotalRows,
		CreatedProducts:  res.CreatedProducts,
		CreatedLocations: res.CreatedLocations,
		OpeningMovements: res.OpeningMovements,
		Errors:           make([]dto.ImportRowError, 0, len(res.Errors)),
		UnmappedHeaders:  res.Unmapped,
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, dto.ImportRowError(e))
	}
	return c.JSON(out)
}
