package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo versiones de BOM en memoria.
type BOMRepo struct{ c *conn }

func (r *BOMRepo) GetActiveVersion(_ context.Context, tenantID, productID string) (*entity.BOMVersion, error) {
	var out *entity.BOMVersion
	err := r.c.read(func(st *state) error {
		for _, v := range st.versions {
			if v.TenantID == tenantID && v.ParentProductID == productID && v.Active {
				out = cloneVersion(v)
				return nil
			}
		}
		return domain.ErrNotFound
	})
	return out, err
}

func (r *BOMRepo) GetVersion(_ context.Context, tenantID, versionID string) (*entity.BOMVersion, error) {
	var out *entity.BOMVersion
	err := r.c.read(func(st *state) error {
		v, ok := st.versions[versionID]
		if !ok || v.TenantID != tenantID {
			return domain.ErrNotFound
		}
		out = cloneVersion(v)
		return nil
	})
	return out, err
}

func (r *BOMRepo) ListVersions(_ context.Context, tenantID, productID string) ([]*entity.BOMVersion, error) {
	var out []*entity.BOMVersion
	err := r.c.read(func(st *state) error {
		for _, v := range st.versions {
			if v.TenantID == tenantID && v.ParentProductID == productID {
				out = append(out, cloneVersion(v))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, err
}

func (r *BOMRepo) CreateVersion(_ context.Context, version *entity.BOMVersion) error {
	return r.c.read(func(st *state) error {
		for _, v := range st.versions {
			if v.TenantID != version.TenantID || v.ParentProductID != version.ParentProductID {
				continue
			}
			if v.VersionNumber == version.VersionNumber {
				return domain.ErrDuplicate
			}
			// Equivale al índice único parcial de versión activa por padre.
			if v.Active && version.Active {
				return domain.ErrConcurrentModification
			}
		}
		st.versions[version.ID] = cloneVersion(version)
		return nil
	})
}

func (r *BOMRepo) Supersede(_ context.Context, tenantID, versionID string, at time.Time) error {
	return r.c.read(func(st *state) error {
		v, ok := st.versions[versionID]
		if !ok || v.TenantID != tenantID {
			return domain.ErrNotFound
		}
		if !v.Active {
			return domain.ErrConcurrentModification
		}
		v.Active = false
		v.SupersededAt = &at
		return nil
	})
}

func (r *BOMRepo) ListActiveLines(_ context.Context, tenantID string) ([]entity.BOMLine, error) {
	var out []entity.BOMLine
	err := r.c.read(func(st *state) error {
		for _, v := range st.versions {
			if v.TenantID == tenantID && v.Active {
				out = append(out, v.Lines...)
			}
		}
		return nil
	})
	return out, err
}

func lineInScope(l *entity.BOMLine, componentID, locationID string) bool {
	return l.ComponentProductID == componentID && (locationID == "" || l.LocationID == locationID)
}

func (r *BOMRepo) activeByComponent(st *state, tenantID, componentID, locationID string) []*entity.BOMVersion {
	var out []*entity.BOMVersion
	for _, v := range st.versions {
		if v.TenantID != tenantID || !v.Active {
			continue
		}
		for i := range v.Lines {
			if lineInScope(&v.Lines[i], componentID, locationID) {
				out = append(out, v)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentProductID != out[j].ParentProductID {
			return out[i].ParentProductID < out[j].ParentProductID
		}
		return out[i].VersionNumber < out[j].VersionNumber
	})
	return out
}

func (r *BOMRepo) FindByComponent(_ context.Context, tenantID, componentID, locationID string, limit, offset int) ([]repository.AffectedBOM, int, error) {
	var all []repository.AffectedBOM
	err := r.c.read(func(st *state) error {
		for _, v := range r.activeByComponent(st, tenantID, componentID, locationID) {
			a := repository.AffectedBOM{BOMVersionID: v.ID, ParentProductID: v.ParentProductID, VersionNumber: v.VersionNumber}
			for i := range v.Lines {
				if lineInScope(&v.Lines[i], componentID, locationID) {
					a.Lines++
					a.QuantityRequired = a.QuantityRequired.Add(v.Lines[i].QuantityRequired)
				}
			}
			all = append(all, a)
		}
		return nil
	})
	return paginate(all, limit, offset), len(all), err
}

func (r *BOMRepo) LockLinesByComponent(_ context.Context, tenantID, componentID, locationID string) ([]entity.BOMLine, error) {
	var out []entity.BOMLine
	err := r.c.read(func(st *state) error {
		for _, v := range r.activeByComponent(st, tenantID, componentID, locationID) {
			for i := range v.Lines {
				if lineInScope(&v.Lines[i], componentID, locationID) {
					out = append(out, v.Lines[i])
				}
			}
		}
		return nil
	})
	return out, err
}

func (r *BOMRepo) ReplaceComponent(_ context.Context, tenantID string, lineIDs []string, newComponentID string) (int64, error) {
	ids := make(map[string]bool, len(lineIDs))
	for _, id := range lineIDs {
		ids[id] = true
	}
	var n int64
	err := r.c.read(func(st *state) error {
		for _, v := range st.versions {
			if v.TenantID != tenantID {
				continue
			}
			for i := range v.Lines {
				if ids[v.Lines[i].ID] {
					v.Lines[i].ComponentProductID = newComponentID
					n++
				}
			}
		}
		return nil
	})
	return n, err
}
