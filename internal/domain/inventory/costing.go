package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Consumption porción de un lote consumida por una salida.
type Consumption struct {
	LotID    string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// CostResult costo asignado a un movimiento por el motor de costeo.
type CostResult struct {
	UnitCost   decimal.Decimal // costo con el que el movimiento entra/sale de la valorización
	TotalCost  decimal.Decimal
	ActualCost decimal.Decimal // entradas: costo real recibido
	Consumed   []Consumption
	NewLot     *entity.CostLot
	Variance   *entity.CostVariance
}

// CostState estado de costeo de un producto en una ubicación.
// Lots solo se mantiene para FIFO/LIFO; AverageCost se mantiene siempre.
// El método se recibe explícito: no hay estado global de costeo.
type CostState struct {
	Method       entity.CostingMethod
	StandardCost decimal.Decimal
	Quantity     decimal.Decimal
	AverageCost  decimal.Decimal
	Lots         []entity.CostLot
}

// NewCostState construye un estado vacío para el método dado.
func NewCostState(method entity.CostingMethod, standardCost decimal.Decimal) *CostState {
	return &CostState{Method: method, StandardCost: standardCost}
}

// Apply aplica el movimiento al estado y devuelve su costo.
// Si el error no es nil el estado no se modifica.
func (s *CostState) Apply(tx *entity.StockTransaction, allowNegative bool) (CostResult, error) {
	if !s.Method.Valid() {
		return CostResult{}, domain.ErrInvalidInput
	}
	delta := tx.SignedDelta()
	if delta.IsZero() {
		return CostResult{}, domain.ErrInvalidQuantity
	}
	if delta.IsPositive() {
		return s.receive(tx, delta), nil
	}
	return s.issue(delta.Neg(), allowNegative)
}

func (s *CostState) receive(tx *entity.StockTransaction, qty decimal.Decimal) CostResult {
	actual := tx.UnitCost
	if actual.IsZero() && tx.Type != entity.TxIncoming {
		actual = s.currentCost()
	}
	prev := s.Quantity
	s.AverageCost = WeightedAverageCost(prev, s.AverageCost, qty, actual)
	s.Quantity = prev.Add(qty)

	res := CostResult{UnitCost: actual, ActualCost: actual}
	if s.Method == entity.CostingStandard {
		res.UnitCost = s.StandardCost
		if !actual.Equal(s.StandardCost) {
			res.Variance = &entity.CostVariance{
				TransactionID: tx.ID,
				ProductID:     tx.ProductID,
				LocationID:    tx.LocationID,
				StandardCost:  s.StandardCost,
				ActualCost:    actual,
				Quantity:      qty,
				Variance:      actual.Sub(s.StandardCost).Mul(qty),
			}
		}
	}
	if s.Method.UsesLots() {
		// Una entrada con saldo negativo primero cubre el déficit; solo el resto abre lote.
		lotQty := qty
		if prev.IsNegative() {
			lotQty = decimal.Max(s.Quantity, decimal.Zero)
		}
		if lotQty.IsPositive() {
			lot := entity.CostLot{
				ID:                  tx.ID,
				TenantID:            tx.TenantID,
				ProductID:           tx.ProductID,
				LocationID:          tx.LocationID,
				SourceTransactionID: tx.ID,
				ReceivedAt:          tx.OccurredAt,
				Sequence:            tx.Sequence,
				OriginalQuantity:    lotQty,
				RemainingQuantity:   lotQty,
				UnitCost:            actual,
			}
			s.Lots = append(s.Lots, lot)
			res.NewLot = &lot
		}
	}
	res.TotalCost = res.UnitCost.Mul(qty)
	return res
}

func (s *CostState) issue(need decimal.Decimal, allowNegative bool) (CostResult, error) {
	var res CostResult
	switch s.Method {
	case entity.CostingWeightedAverage:
		res.UnitCost = s.AverageCost
	case entity.CostingStandard:
		res.UnitCost = s.StandardCost
	default:
		plan, covered := s.planConsumption(need)
		remainder := need.Sub(covered)
		if remainder.IsPositive() && !allowNegative {
			return CostResult{}, domain.ErrLotExhaustion
		}
		total := decimal.Zero
		for _, c := range plan {
			total = total.Add(c.Quantity.Mul(c.UnitCost))
		}
		// Lo que quede sin lote (saldo negativo autorizado) se costea al promedio vigente.
		total = total.Add(remainder.Mul(s.AverageCost))
		s.commitConsumption(plan)
		res.Consumed = plan
		res.UnitCost = total.Div(need)
		res.TotalCost = total
		s.Quantity = s.Quantity.Sub(need)
		return res, nil
	}
	res.TotalCost = res.UnitCost.Mul(need)
	s.Quantity = s.Quantity.Sub(need)
	return res, nil
}

// planConsumption calcula qué lotes consumir sin modificar el estado.
func (s *CostState) planConsumption(need decimal.Decimal) ([]Consumption, decimal.Decimal) {
	s.sortLots()
	order := make([]int, 0, len(s.Lots))
	for i := range s.Lots {
		order = append(order, i)
	}
	if s.Method == entity.CostingLIFO {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	remaining := need
	var plan []Consumption
	for _, idx := range order {
		if !remaining.IsPositive() {
			break
		}
		lot := s.Lots[idx]
		if !lot.RemainingQuantity.IsPositive() {
			continue
		}
		take := decimal.Min(remaining, lot.RemainingQuantity)
		plan = append(plan, Consumption{LotID: lot.ID, Quantity: take, UnitCost: lot.UnitCost})
		remaining = remaining.Sub(take)
	}
	return plan, need.Sub(remaining)
}

func (s *CostState) commitConsumption(plan []Consumption) {
	taken := make(map[string]decimal.Decimal, len(plan))
	for _, c := range plan {
		taken[c.LotID] = taken[c.LotID].Add(c.Quantity)
	}
	open := s.Lots[:0]
	for _, lot := range s.Lots {
		if q, ok := taken[lot.ID]; ok {
			lot.RemainingQuantity = lot.RemainingQuantity.Sub(q)
		}
		if lot.RemainingQuantity.IsPositive() {
			open = append(open, lot)
		}
	}
	s.Lots = open
}

func (s *CostState) sortLots() {
	sort.SliceStable(s.Lots, func(i, j int) bool {
		a, b := s.Lots[i], s.Lots[j]
		if !a.ReceivedAt.Equal(b.ReceivedAt) {
			return a.ReceivedAt.Before(b.ReceivedAt)
		}
		return a.Sequence < b.Sequence
	})
}

func (s *CostState) currentCost() decimal.Decimal {
	if s.Method == entity.CostingStandard {
		return s.StandardCost
	}
	return s.AverageCost
}

// OpenLotQuantity suma de las cantidades remanentes de los lotes abiertos.
func (s *CostState) OpenLotQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range s.Lots {
		total = total.Add(lot.RemainingQuantity)
	}
	return total
}

// CoverUntrackedQuantity abre un lote sintético (sin ID) al costo promedio para el
// saldo positivo que no tiene lotes, p. ej. tras cambiar el método de costeo a FIFO/LIFO.
// El lote sintético no se persiste; se vuelve a derivar en cada carga.
func (s *CostState) CoverUntrackedQuantity(at time.Time) {
	if !s.Method.UsesLots() {
		return
	}
	gap := s.Quantity.Sub(s.OpenLotQuantity())
	if !gap.IsPositive() {
		return
	}
	s.Lots = append([]entity.CostLot{{
		ReceivedAt:        at,
		OriginalQuantity:  gap,
		RemainingQuantity: gap,
		UnitCost:          s.AverageCost,
	}}, s.Lots...)
}

// Value valor total del inventario según el método.
func (s *CostState) Value() decimal.Decimal {
	switch s.Method {
	case entity.CostingStandard:
		return s.Quantity.Mul(s.StandardCost)
	case entity.CostingWeightedAverage:
		return s.Quantity.Mul(s.AverageCost)
	}
	total := decimal.Zero
	for _, lot := range s.Lots {
		total = total.Add(lot.RemainingQuantity.Mul(lot.UnitCost))
	}
	if s.Quantity.IsNegative() {
		total = total.Add(s.Quantity.Mul(s.AverageCost))
	}
	return total
}

// Valuation resultado de valorizar un producto en una ubicación.
type Valuation struct {
	Quantity    decimal.Decimal
	TotalValue  decimal.Decimal
	AvgUnitCost decimal.Decimal
}

// Valuation resume cantidad, valor total y costo unitario promedio.
func (s *CostState) Valuation() Valuation {
	v := Valuation{Quantity: s.Quantity, TotalValue: s.Value()}
	if !s.Quantity.IsZero() {
		v.AvgUnitCost = v.TotalValue.Div(s.Quantity)
	}
	return v
}

// ReplayCost reconstruye el estado de costeo aplicando el historial en orden.
// El historial ya fue aceptado por el ledger, por eso se admite saldo negativo.
func ReplayCost(method entity.CostingMethod, standardCost decimal.Decimal, txs []entity.StockTransaction) (*CostState, error) {
	st := NewCostState(method, standardCost)
	for i := range txs {
		if _, err := st.Apply(&txs[i], true); err != nil {
			return nil, err
		}
	}
	return st, nil
}
