package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Taxonomía del ledger y del motor de disponibilidad.
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrLotExhaustion          = errors.New("lotes de costo agotados")
	ErrCyclicBOM              = errors.New("la lista de materiales genera un ciclo")
	ErrConcurrentModification = errors.New("modificación concurrente, reintentar")
)

// LedgerError agrega contexto (operación, producto, ubicación) a un error de dominio.
// errors.Is sigue funcionando contra los sentinelas de arriba.
type LedgerError struct {
	Op         string
	ProductID  string
	LocationID string
	Err        error
}

func (e *LedgerError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.ProductID != "" {
		b.WriteString(" producto=" + e.ProductID)
	}
	if e.LocationID != "" {
		b.WriteString(" ubicacion=" + e.LocationID)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LedgerError) Unwrap() error { return e.Err }

// Wrap envuelve err con el contexto del ledger. Devuelve nil si err es nil y no
// vuelve a envolver un LedgerError existente.
func Wrap(op, productID, locationID string, err error) error {
	if err == nil {
		return nil
	}
	var le *LedgerError
	if errors.As(err, &le) {
		return err
	}
	return &LedgerError{Op: op, ProductID: productID, LocationID: locationID, Err: err}
}

// CycleError describe el camino que cerraría un ciclo en la BOM.
// Depth es la profundidad (1 = componente directo) donde se detectó.
type CycleError struct {
	Path  []string
	Depth int
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s (profundidad %d)", ErrCyclicBOM.Error(), strings.Join(e.Path, " -> "), e.Depth)
}

func (e *CycleError) Is(target error) bool { return target == ErrCyclicBOM }

// IsRetryable indica si el error es una señal de reintento optimista.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrLotExhaustion)
}
