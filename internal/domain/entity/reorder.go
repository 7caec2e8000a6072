package entity

import "github.com/shopspring/decimal"

// Urgency nivel de urgencia de una sugerencia de reposición.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Rank orden numérico (mayor = más urgente).
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	}
	return 0
}

// ReorderSuggestion se calcula bajo demanda; no se persiste.
type ReorderSuggestion struct {
	ProductID         string
	SuggestedQuantity decimal.Decimal
	Urgency           Urgency
	TargetStockLevel  decimal.Decimal
	DaysUntilRunout   *int64
	Reasoning         []string
}
