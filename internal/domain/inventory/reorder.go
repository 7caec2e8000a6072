package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

const (
	DefaultLeadTimeDays     = 7
	DefaultSafetyMultiplier = 1.5
)

var (
	five   = decimal.NewFromInt(5)
	ten    = decimal.NewFromInt(10)
	twenty = decimal.NewFromInt(20)
)

// ReorderInput parámetros de la sugerencia. LeadTimeDays <= 0 usa 7 días y
// SafetyMultiplier nil usa 1.5.
type ReorderInput struct {
	ProductID         string
	CurrentStock      decimal.Decimal
	MinimumStockLevel decimal.Decimal
	DailyVelocity     decimal.Decimal
	LeadTimeDays      int
	SafetyMultiplier  *decimal.Decimal
}

// Suggest calcula cantidad y urgencia de reposición.
// Sin velocidad de consumo se repone hasta el mínimo.
func Suggest(in ReorderInput) entity.ReorderSuggestion {
	out := entity.ReorderSuggestion{ProductID: in.ProductID, Urgency: entity.UrgencyLow}

	if !in.DailyVelocity.IsPositive() {
		out.TargetStockLevel = in.MinimumStockLevel
		deficit := in.MinimumStockLevel.Sub(in.CurrentStock)
		out.Reasoning = append(out.Reasoning, "sin historial de consumo: se repone hasta el stock mínimo")
		if !deficit.IsPositive() {
			out.SuggestedQuantity = decimal.Zero
			out.Reasoning = append(out.Reasoning, "el stock actual cubre el mínimo")
			return out
		}
		out.SuggestedQuantity = RoundOrderQuantity(deficit)
		if !in.CurrentStock.IsPositive() {
			out.Urgency = entity.UrgencyCritical
			out.Reasoning = append(out.Reasoning, "sin existencias")
		} else {
			out.Urgency = entity.UrgencyMedium
		}
		return out
	}

	lead := in.LeadTimeDays
	if lead <= 0 {
		lead = DefaultLeadTimeDays
	}
	safety := decimal.NewFromFloat(DefaultSafetyMultiplier)
	if in.SafetyMultiplier != nil {
		safety = *in.SafetyMultiplier
	}

	days := runoutDays(in.CurrentStock, in.DailyVelocity)
	out.DaysUntilRunout = &days
	leadDemand := in.DailyVelocity.Mul(decimal.NewFromInt(int64(lead)))
	out.TargetStockLevel = in.MinimumStockLevel.Add(leadDemand).Add(in.MinimumStockLevel.Mul(safety))
	out.Reasoning = append(out.Reasoning,
		fmt.Sprintf("consumo diario %s: se agota en %d días", in.DailyVelocity.String(), days),
		fmt.Sprintf("nivel objetivo %s = mínimo + demanda de %d días + stock de seguridad", out.TargetStockLevel.String(), lead),
	)

	deficit := out.TargetStockLevel.Sub(in.CurrentStock)
	if !deficit.IsPositive() {
		out.SuggestedQuantity = decimal.Zero
		out.Reasoning = append(out.Reasoning, "el stock actual alcanza el nivel objetivo")
		return out
	}
	out.SuggestedQuantity = RoundOrderQuantity(deficit)

	switch {
	case days <= 0 || in.CurrentStock.LessThanOrEqual(in.MinimumStockLevel):
		out.Urgency = entity.UrgencyCritical
		out.Reasoning = append(out.Reasoning, "stock en o bajo el mínimo")
	case days <= 7:
		out.Urgency = entity.UrgencyHigh
	case days <= 14:
		out.Urgency = entity.UrgencyMedium
	default:
		out.Urgency = entity.UrgencyLow
	}
	return out
}

var (
	maxDays = decimal.NewFromInt(math.MaxInt64)
	minDays = decimal.NewFromInt(math.MinInt64)
)

// runoutDays floor(current/velocity) acotado al rango de int64.
func runoutDays(current, velocity decimal.Decimal) int64 {
	d := current.Div(velocity).Floor()
	switch {
	case d.GreaterThan(maxDays):
		return math.MaxInt64
	case d.LessThan(minDays):
		return math.MinInt64
	}
	return d.IntPart()
}

// RoundOrderQuantity redondea hacia arriba al múltiplo de 5 si el déficit es menor a 20,
// o al múltiplo de 10 en otro caso.
func RoundOrderQuantity(deficit decimal.Decimal) decimal.Decimal {
	if !deficit.IsPositive() {
		return decimal.Zero
	}
	step := ten
	if deficit.LessThan(twenty) {
		step = five
	}
	return deficit.Div(step).Ceil().Mul(step)
}
