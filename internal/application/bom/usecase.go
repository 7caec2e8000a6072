// Package bom gestiona las versiones de listas de materiales y su explosión.
package bom

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger/internal/application/ports"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/jhoicas/stockledger/pkg/retry"
)

// UseCase versiones de BOM: alta, revisión, consulta y explosión.
// Las mutaciones corren en transacciones SERIALIZABLE para que dos revisiones
// concurrentes no puedan cerrar un ciclo entre ambas.
type UseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	cache    ports.ExplosionCache
	retry    retry.Config
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. cache nil equivale a no cachear.
func NewUseCase(txRunner ports.TxRunner, store repository.Store, cache ports.ExplosionCache, retryCfg retry.Config, log *logger.Logger) *UseCase {
	if cache == nil {
		cache = ports.NoopExplosionCache{}
	}
	return &UseCase{
		txRunner: txRunner,
		store:    store,
		cache:    cache,
		retry:    retryCfg,
		log:      log.Component("bom"),
		now:      time.Now,
	}
}

// GetActiveVersion devuelve la versión activa con sus líneas.
func (uc *UseCase) GetActiveVersion(ctx context.Context, tenantID, productID string) (*entity.BOMVersion, error) {
	v, err := uc.store.BOMs.GetActiveVersion(ctx, tenantID, productID)
	if err != nil {
		return nil, domain.Wrap("bom", productID, "", err)
	}
	return v, nil
}

// ListVersions historial de versiones, la más reciente primero.
func (uc *UseCase) ListVersions(ctx context.Context, tenantID, productID string) ([]*entity.BOMVersion, error) {
	if _, err := uc.store.Products.GetByID(ctx, tenantID, productID); err != nil {
		return nil, domain.Wrap("bom", productID, "", err)
	}
	return uc.store.BOMs.ListVersions(ctx, tenantID, productID)
}

// resolveVersion versionID vacío usa la activa; si no, la versión debe pertenecer al producto.
func (uc *UseCase) resolveVersion(ctx context.Context, tenantID, productID, versionID string) (*entity.BOMVersion, error) {
	if versionID == "" {
		return uc.store.BOMs.GetActiveVersion(ctx, tenantID, productID)
	}
	v, err := uc.store.BOMs.GetVersion(ctx, tenantID, versionID)
	if err != nil {
		return nil, err
	}
	if v.ParentProductID != productID {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

// Explode expande la versión a todos los niveles. Los subensambles se expanden con
// su versión activa; los componentes sin BOM activa son hojas.
func (uc *UseCase) Explode(ctx context.Context, tenantID, productID, versionID string) (*entity.BOMVersion, []inventory.Requirement, error) {
	// La generación se lee antes que la BOM: si una mutación la invalida mientras se
	// calcula, el Set posterior se descarta.
	gen, cacheable := uc.cache.Generation(ctx, tenantID)
	version, err := uc.resolveVersion(ctx, tenantID, productID, versionID)
	if err != nil {
		return nil, nil, domain.Wrap("explode", productID, "", err)
	}
	if cacheable {
		if reqs, ok := uc.cache.Get(ctx, tenantID, gen, version.ID); ok {
			return version, reqs, nil
		}
	}

	// Una sola lectura de todas las líneas activas: la explosión ve un snapshot coherente.
	active, err := uc.store.BOMs.ListActiveLines(ctx, tenantID)
	if err != nil {
		return nil, nil, domain.Wrap("explode", productID, "", err)
	}
	byParent := make(map[string][]entity.BOMLine)
	for _, l := range active {
		byParent[l.ParentProductID] = append(byParent[l.ParentProductID], l)
	}
	reqs, err := inventory.Explode(productID, version.Lines, func(id string) ([]entity.BOMLine, error) {
		return byParent[id], nil
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("tenant_id", tenantID).
			Str("product_id", productID).
			Str("bom_version_id", version.ID).
			Msg("explosión rechazada")
		return nil, nil, domain.Wrap("explode", productID, "", err)
	}
	if cacheable {
		uc.cache.Set(ctx, tenantID, gen, version.ID, reqs)
	}
	return version, reqs, nil
}

// DirectRequirements requerimientos de un solo nivel que aplican a la ubicación.
func (uc *UseCase) DirectRequirements(ctx context.Context, tenantID, productID, versionID, locationID string) (*entity.BOMVersion, []inventory.Requirement, error) {
	version, err := uc.resolveVersion(ctx, tenantID, productID, versionID)
	if err != nil {
		return nil, nil, domain.Wrap("bom", productID, locationID, err)
	}
	return version, inventory.DirectRequirements(version.Lines, locationID), nil
}

// SaveInput nueva versión de receta. Revise reemplaza la activa; si no, crea la primera.
type SaveInput struct {
	TenantID  string
	ActorID   string
	ProductID string
	Lines     []entity.BOMLine
	Revise    bool
}

// CreateVersion crea la primera versión activa del producto.
func (uc *UseCase) CreateVersion(ctx context.Context, in SaveInput) (*entity.BOMVersion, error) {
	in.Revise = false
	return uc.Save(ctx, in)
}

// ReviseVersion reemplaza la versión activa por la n+1; la anterior queda para auditoría.
func (uc *UseCase) ReviseVersion(ctx context.Context, in SaveInput) (*entity.BOMVersion, error) {
	in.Revise = true
	return uc.Save(ctx, in)
}

// Save valida y persiste la versión en una sola transacción.
func (uc *UseCase) Save(ctx context.Context, in SaveInput) (*entity.BOMVersion, error) {
	if in.TenantID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.ValidateLines(in.ProductID, in.Lines); err != nil {
		return nil, domain.Wrap("bom", in.ProductID, "", err)
	}

	var out *entity.BOMVersion
	attempts, err := retry.Do(ctx, uc.retry, domain.IsRetryable, func(int) error {
		return uc.txRunner.RunSerializable(ctx, func(store repository.Store) error {
			v, err := uc.save(ctx, store, in)
			if err == nil {
				out = v
			}
			return err
		})
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("tenant_id", in.TenantID).
			Str("product_id", in.ProductID).
			Int("attempts", attempts).
			Msg("versión de BOM rechazada")
		return nil, domain.Wrap("bom", in.ProductID, "", err)
	}
	if err := uc.cache.InvalidateTenant(ctx, in.TenantID); err != nil {
		uc.log.Warn().Err(err).Str("tenant_id", in.TenantID).Msg("no se pudo invalidar cache de explosiones")
	}
	uc.log.Info().
		Str("tenant_id", in.TenantID).
		Str("product_id", in.ProductID).
		Str("bom_version_id", out.ID).
		Int("version", out.VersionNumber).
		Int("lines", len(out.Lines)).
		Msg("versión de BOM activada")
	return out, nil
}

func (uc *UseCase) save(ctx context.Context, store repository.Store, in SaveInput) (*entity.BOMVersion, error) {
	parent, err := store.Products.GetByID(ctx, in.TenantID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !parent.IsManufactured() || parent.Retired {
		return nil, domain.ErrInvalidInput
	}
	components := make([]string, 0, len(in.Lines))
	units := make(map[string]string, len(in.Lines))
	for _, l := range in.Lines {
		comp, err := store.Products.GetByID(ctx, in.TenantID, l.ComponentProductID)
		if err != nil {
			return nil, err
		}
		units[comp.ID] = comp.BaseUnitOfMeasure
		if l.LocationID != "" {
			if _, err := store.Locations.GetByID(ctx, in.TenantID, l.LocationID); err != nil {
				return nil, err
			}
		}
		components = append(components, l.ComponentProductID)
	}

	active, err := store.BOMs.GetActiveVersion(ctx, in.TenantID, in.ProductID)
	switch {
	case err != nil && !isNotFound(err):
		return nil, err
	case in.Revise && active == nil:
		return nil, domain.ErrNotFound
	case !in.Revise && active != nil:
		return nil, domain.ErrDuplicate
	}

	// DFS desde cada componente nuevo hacia el padre sobre el grafo con la nueva
	// versión ya aplicada.
	lines, err := store.BOMs.ListActiveLines(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	graph := inventory.NewGraph(lines)
	graph.SetComponents(in.ProductID, components)
	if err := graph.ValidateAcyclic(in.ProductID, components); err != nil {
		return nil, err
	}

	versions, err := store.BOMs.ListVersions(ctx, in.TenantID, in.ProductID)
	if err != nil {
		return nil, err
	}
	number := 1
	for _, v := range versions {
		if v.VersionNumber >= number {
			number = v.VersionNumber + 1
		}
	}

	now := uc.now().UTC()
	if active != nil {
		if err := store.BOMs.Supersede(ctx, in.TenantID, active.ID, now); err != nil {
			return nil, err
		}
	}
	version := &entity.BOMVersion{
		ID:              uuid.New().String(),
		TenantID:        in.TenantID,
		ParentProductID: in.ProductID,
		VersionNumber:   number,
		Active:          true,
		CreatedAt:       now,
		CreatedBy:       in.ActorID,
		Lines:           make([]entity.BOMLine, 0, len(in.Lines)),
	}
	for _, l := range in.Lines {
		l.ID = uuid.New().String()
		l.BOMVersionID = version.ID
		l.ParentProductID = in.ProductID
		if l.UnitOfMeasure == "" {
			l.UnitOfMeasure = units[l.ComponentProductID]
		}
		version.Lines = append(version.Lines, l)
	}
	if err := store.BOMs.CreateVersion(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}
