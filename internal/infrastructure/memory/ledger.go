package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.StockLevelRepository       = (*StockLevelRepo)(nil)
	_ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)
	_ repository.CostLotRepository          = (*CostLotRepo)(nil)
)

// StockLevelRepo proyección de stock en memoria.
type StockLevelRepo struct{ c *conn }

func (r *StockLevelRepo) Get(_ context.Context, tenantID, productID, locationID string) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.c.read(func(st *state) error {
		if l, ok := st.levels[levelKey{tenantID, productID, locationID}]; ok {
			cp := *l
			out = &cp
			return nil
		}
		out = &entity.StockLevel{TenantID: tenantID, ProductID: productID, LocationID: locationID}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de una tx el mutex de DB ya serializa el acceso.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, tenantID, productID, locationID string) (*entity.StockLevel, error) {
	return r.Get(ctx, tenantID, productID, locationID)
}

func (r *StockLevelRepo) Save(_ context.Context, level *entity.StockLevel) error {
	return r.c.read(func(st *state) error {
		key := levelKey{level.TenantID, level.ProductID, level.LocationID}
		current, ok := st.levels[key]
		switch {
		case ok && current.Version != level.Version:
			return domain.ErrConcurrentModification
		case !ok && level.Version != 0:
			return domain.ErrConcurrentModification
		}
		level.Version++
		level.UpdatedAt = time.Now()
		cp := *level
		st.levels[key] = &cp
		return nil
	})
}

func (r *StockLevelRepo) SumOnHand(_ context.Context, tenantID, productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.c.read(func(st *state) error {
		for k, l := range st.levels {
			if k.tenantID == tenantID && k.productID == productID {
				total = total.Add(l.OnHand)
			}
		}
		return nil
	})
	return total, err
}

func (r *StockLevelRepo) List(_ context.Context, tenantID string, filter repository.StockLevelFilter) ([]*entity.StockLevel, error) {
	want := make(map[string]bool, len(filter.ProductIDs))
	for _, id := range filter.ProductIDs {
		want[id] = true
	}
	var out []*entity.StockLevel
	err := r.c.read(func(st *state) error {
		for k, l := range st.levels {
			if k.tenantID != tenantID {
				continue
			}
			if filter.LocationID != "" && k.locationID != filter.LocationID {
				continue
			}
			if len(want) > 0 && !want[k.productID] {
				continue
			}
			cp := *l
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out, err
}

// StockTransactionRepo ledger en memoria (solo inserción).
type StockTransactionRepo struct{ c *conn }

func (r *StockTransactionRepo) Create(_ context.Context, tx *entity.StockTransaction) error {
	return r.c.read(func(st *state) error {
		for i := range st.txs {
			if st.txs[i].ID == tx.ID {
				return domain.ErrDuplicate
			}
		}
		st.seq++
		tx.Sequence = st.seq
		st.txs = append(st.txs, *tx)
		return nil
	})
}

func (r *StockTransactionRepo) filter(st *state, tenantID, productID, locationID string, keep func(*entity.StockTransaction) bool) []entity.StockTransaction {
	var out []entity.StockTransaction
	for i := range st.txs {
		t := &st.txs[i]
		if t.TenantID != tenantID || t.ProductID != productID {
			continue
		}
		if locationID != "" && t.LocationID != locationID {
			continue
		}
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

func (r *StockTransactionRepo) ListSince(_ context.Context, tenantID, productID, locationID string, afterSequence int64, limit int) ([]entity.StockTransaction, error) {
	var out []entity.StockTransaction
	err := r.c.read(func(st *state) error {
		out = r.filter(st, tenantID, productID, locationID, func(t *entity.StockTransaction) bool {
			return t.Sequence > afterSequence
		})
		return nil
	})
	return paginate(out, limit, 0), err
}

func (r *StockTransactionRepo) ListUntil(_ context.Context, tenantID, productID, locationID string, asOf time.Time) ([]entity.StockTransaction, error) {
	var out []entity.StockTransaction
	err := r.c.read(func(st *state) error {
		out = r.filter(st, tenantID, productID, locationID, func(t *entity.StockTransaction) bool {
			return !t.OccurredAt.After(asOf)
		})
		return nil
	})
	return out, err
}

func (r *StockTransactionRepo) Last(_ context.Context, tenantID, productID, locationID string) (*entity.StockTransaction, error) {
	var out *entity.StockTransaction
	err := r.c.read(func(st *state) error {
		all := r.filter(st, tenantID, productID, locationID, func(*entity.StockTransaction) bool { return true })
		if len(all) == 0 {
			return domain.ErrNotFound
		}
		last := all[len(all)-1]
		out = &last
		return nil
	})
	return out, err
}

func (r *StockTransactionRepo) SumOutgoingSince(_ context.Context, tenantID, productID, locationID string, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.c.read(func(st *state) error {
		for _, t := range r.filter(st, tenantID, productID, locationID, func(t *entity.StockTransaction) bool {
			return t.Type == entity.TxOutgoing && !t.OccurredAt.Before(since)
		}) {
			total = total.Add(t.Quantity.Abs())
		}
		return nil
	})
	return total, err
}

// CostLotRepo lotes de costo en memoria.
type CostLotRepo struct{ c *conn }

func (r *CostLotRepo) ListOpen(_ context.Context, tenantID, productID, locationID string) ([]entity.CostLot, error) {
	var out []entity.CostLot
	err := r.c.read(func(st *state) error {
		for _, l := range st.lots {
			if l.TenantID == tenantID && l.ProductID == productID && l.LocationID == locationID && l.RemainingQuantity.IsPositive() {
				out = append(out, *l)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedAt.Equal(out[j].ReceivedAt) {
			return out[i].ReceivedAt.Before(out[j].ReceivedAt)
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, err
}

func (r *CostLotRepo) Create(_ context.Context, lot *entity.CostLot) error {
	return r.c.read(func(st *state) error {
		if _, ok := st.lots[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *lot
		st.lots[lot.ID] = &cp
		return nil
	})
}

func (r *CostLotRepo) Consume(_ context.Context, tenantID, lotID string, qty decimal.Decimal) error {
	return r.c.read(func(st *state) error {
		l, ok := st.lots[lotID]
		if !ok || l.TenantID != tenantID {
			return domain.ErrNotFound
		}
		if l.RemainingQuantity.LessThan(qty) {
			return domain.ErrLotExhaustion
		}
		l.RemainingQuantity = l.RemainingQuantity.Sub(qty)
		return nil
	})
}

func (r *CostLotRepo) RecordVariance(_ context.Context, variance *entity.CostVariance) error {
	return r.c.read(func(st *state) error {
		st.variances = append(st.variances, *variance)
		return nil
	})
}
