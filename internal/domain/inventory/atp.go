package inventory

import (
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

// ComponentAvailability detalle por componente del cálculo ATP.
type ComponentAvailability struct {
	ComponentID string
	Required    decimal.Decimal // por unidad del padre
	Available   decimal.Decimal
	Buildable   decimal.Decimal
	Surplus     decimal.Decimal // disponible sobrante a la meta de producción
	Binding     bool            // restricción que fija el máximo fabricable
}

// Shortage componente que limita o impide la meta de producción.
type Shortage struct {
	ComponentID   string
	Required      decimal.Decimal // total para la meta
	Available     decimal.Decimal
	QuantityShort decimal.Decimal
}

// ATPResult resultado del cálculo de disponibilidad para fabricar.
type ATPResult struct {
	BuildableQuantity decimal.Decimal
	TargetBuild       decimal.Decimal
	Components        []ComponentAvailability
	Shortages         []Shortage
}

// CalculateATP aplica la regla del cuello de botella: lo fabricable es el mínimo de
// floor(disponible/requerido) entre componentes. target nil usa ese máximo como meta.
// available debe traer cantidades ya netas de reservas; los negativos se tratan como cero.
func CalculateATP(reqs []Requirement, available map[string]decimal.Decimal, target *decimal.Decimal) (ATPResult, error) {
	if len(reqs) == 0 {
		return ATPResult{}, domain.ErrInvalidInput
	}
	if target != nil && target.IsNegative() {
		return ATPResult{}, domain.ErrInvalidQuantity
	}

	comps := make([]ComponentAvailability, 0, len(reqs))
	var min decimal.Decimal
	for i, r := range reqs {
		if !r.QuantityPerParentUnit.IsPositive() {
			return ATPResult{}, domain.ErrInvalidQuantity
		}
		avail := decimal.Max(available[r.ComponentID], decimal.Zero)
		buildable := avail.Div(r.QuantityPerParentUnit).Floor()
		if i == 0 || buildable.LessThan(min) {
			min = buildable
		}
		comps = append(comps, ComponentAvailability{
			ComponentID: r.ComponentID,
			Required:    r.QuantityPerParentUnit,
			Available:   avail,
			Buildable:   buildable,
		})
	}

	res := ATPResult{BuildableQuantity: min, TargetBuild: min}
	if target != nil {
		res.TargetBuild = *target
	}
	for i := range comps {
		c := &comps[i]
		c.Binding = c.Buildable.Equal(min)
		needed := c.Required.Mul(res.TargetBuild)
		c.Surplus = decimal.Max(c.Available.Sub(needed), decimal.Zero)
		short := needed.Sub(c.Available)
		if short.IsPositive() || c.Available.LessThan(c.Required) || c.Binding {
			res.Shortages = append(res.Shortages, Shortage{
				ComponentID:   c.ComponentID,
				Required:      needed,
				Available:     c.Available,
				QuantityShort: decimal.Max(short, decimal.Zero),
			})
		}
	}
	res.Components = comps
	return res, nil
}
