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
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ c *conn }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.c.read(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, p := range st.products {
			if p.TenantID == product.TenantID && product.SKU != "" && p.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		cp := *product
		st.products[product.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.c.read(func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.TenantID != tenantID {
			return domain.ErrNotFound
		}
		cp := *p
		out = &cp
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, tenantID, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.c.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID == tenantID && p.SKU == sku {
				cp := *p
				out = &cp
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.c.read(func(st *state) error {
		p, ok := st.products[product.ID]
		if !ok || p.TenantID != product.TenantID {
			return domain.ErrNotFound
		}
		for _, other := range st.products {
			if other.ID != product.ID && other.TenantID == product.TenantID && product.SKU != "" && other.SKU == product.SKU {
				return domain.ErrDuplicate
			}
		}
		cp := *product
		cp.OnHandQuantity = p.OnHandQuantity
		st.products[product.ID] = &cp
		return nil
	})
}

func (r *ProductRepo) AddOnHand(_ context.Context, tenantID, productID string, delta decimal.Decimal) error {
	return r.c.read(func(st *state) error {
		p, ok := st.products[productID]
		if !ok || p.TenantID != tenantID {
			return domain.ErrNotFound
		}
		p.OnHandQuantity = p.OnHandQuantity.Add(delta)
		p.UpdatedAt = time.Now()
		return nil
	})
}

func (r *ProductRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.c.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID == tenantID {
				cp := *p
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return paginate(out, limit, offset), err
}

func (r *ProductRepo) CountByTenant(_ context.Context, tenantID string) (repository.ProductCounts, error) {
	var c repository.ProductCounts
	err := r.c.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID != tenantID {
				continue
			}
			c.Total++
			if !p.Retired {
				c.Active++
			}
			if p.IsManufactured() {
				c.Manufactured++
			}
		}
		return nil
	})
	return c, err
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ c *conn }

func (r *LocationRepo) Create(_ context.Context, location *entity.Location) error {
	return r.c.read(func(st *state) error {
		for _, l := range st.locations {
			if l.ID == location.ID || (l.TenantID == location.TenantID && l.Code == location.Code) {
				return domain.ErrDuplicate
			}
		}
		cp := *location
		st.locations[location.ID] = &cp
		return nil
	})
}

func (r *LocationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Location, error) {
	var out *entity.Location
	err := r.c.read(func(st *state) error {
		l, ok := st.locations[id]
		if !ok || l.TenantID != tenantID {
			return domain.ErrNotFound
		}
		cp := *l
		out = &cp
		return nil
	})
	return out, err
}

func (r *LocationRepo) GetByCode(_ context.Context, tenantID, code string) (*entity.Location, error) {
	var out *entity.Location
	err := r.c.read(func(st *state) error {
		for _, l := range st.locations {
			if l.TenantID == tenantID && l.Code == code {
				cp := *l
				out = &cp
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *LocationRepo) ListByTenant(_ context.Context, tenantID string) ([]*entity.Location, error) {
	var out []*entity.Location
	err := r.c.read(func(st *state) error {
		for _, l := range st.locations {
			if l.TenantID == tenantID {
				cp := *l
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
