package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)

// Índice único parcial: una sola versión activa por padre.
const constraintOneActiveBOM = "bom_versions_one_active_idx"

// BOMRepo versiones de BOM y sus líneas sobre PostgreSQL.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

const versionColumns = `id, tenant_id, parent_product_id, version_number, active, created_at, created_by, superseded_at`

const lineColumns = `l.id, l.bom_version_id, l.parent_product_id, l.component_product_id,
	l.quantity_required, l.unit_of_measure, l.location_id`

func scanLine(row pgx.Row) (entity.BOMLine, error) {
	var (
		l   entity.BOMLine
		loc *string
	)
	err := row.Scan(&l.ID, &l.BOMVersionID, &l.ParentProductID, &l.ComponentProductID,
		&l.QuantityRequired, &l.UnitOfMeasure, &loc)
	l.LocationID = deref(loc)
	return l, err
}

func (r *BOMRepo) queryLines(ctx context.Context, op, query string, args ...any) ([]entity.BOMLine, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()
	var lines []entity.BOMLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// loadLines completa las líneas de las versiones dadas.
func (r *BOMRepo) loadLines(ctx context.Context, versions []*entity.BOMVersion) error {
	if len(versions) == 0 {
		return nil
	}
	ids := make([]string, len(versions))
	byID := make(map[string]*entity.BOMVersion, len(versions))
	for i, v := range versions {
		ids[i] = v.ID
		byID[v.ID] = v
	}
	lines, err := r.queryLines(ctx, "list bom lines", `
		SELECT `+lineColumns+` FROM bom_lines l
		WHERE l.bom_version_id = ANY($1) ORDER BY l.bom_version_id, l.position`, ids)
	if err != nil {
		return err
	}
	for _, l := range lines {
		v := byID[l.BOMVersionID]
		v.Lines = append(v.Lines, l)
	}
	return nil
}

func (r *BOMRepo) queryVersions(ctx context.Context, op, where string, args ...any) ([]*entity.BOMVersion, error) {
	rows, err := r.q.Query(ctx, `SELECT `+versionColumns+` FROM bom_versions WHERE `+where, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	var versions []*entity.BOMVersion
	for rows.Next() {
		var v entity.BOMVersion
		if err := rows.Scan(&v.ID, &v.TenantID, &v.ParentProductID, &v.VersionNumber, &v.Active,
			&v.CreatedAt, &v.CreatedBy, &v.SupersededAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan bom version: %w", err)
		}
		versions = append(versions, &v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	if err := r.loadLines(ctx, versions); err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *BOMRepo) one(ctx context.Context, op, where string, args ...any) (*entity.BOMVersion, error) {
	versions, err := r.queryVersions(ctx, op, where, args...)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, domain.ErrNotFound
	}
	return versions[0], nil
}

// GetActiveVersion versión activa del producto.
func (r *BOMRepo) GetActiveVersion(ctx context.Context, tenantID, productID string) (*entity.BOMVersion, error) {
	return r.one(ctx, "get active bom", "tenant_id = $1 AND parent_product_id = $2 AND active", tenantID, productID)
}

// GetVersion versión por ID.
func (r *BOMRepo) GetVersion(ctx context.Context, tenantID, versionID string) (*entity.BOMVersion, error) {
	return r.one(ctx, "get bom version", "tenant_id = $1 AND id = $2", tenantID, versionID)
}

// ListVersions historial de versiones del producto, la más reciente primero.
func (r *BOMRepo) ListVersions(ctx context.Context, tenantID, productID string) ([]*entity.BOMVersion, error) {
	return r.queryVersions(ctx, "list bom versions",
		"tenant_id = $1 AND parent_product_id = $2 ORDER BY version_number DESC", tenantID, productID)
}

// CreateVersion inserta la versión y sus líneas en un solo batch.
func (r *BOMRepo) CreateVersion(ctx context.Context, version *entity.BOMVersion) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO bom_versions (`+versionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		version.ID, version.TenantID, version.ParentProductID, version.VersionNumber, version.Active,
		version.CreatedAt, version.CreatedBy, version.SupersededAt,
	)
	if err != nil {
		if code, constraint := pgCode(err); code == codeUniqueViolation && constraint == constraintOneActiveBOM {
			return domain.ErrConcurrentModification
		}
		return classify("insert bom version", err)
	}

	batch := &pgx.Batch{}
	for i, l := range version.Lines {
		batch.Queue(`
			INSERT INTO bom_lines (id, tenant_id, bom_version_id, parent_product_id, component_product_id,
				quantity_required, unit_of_measure, location_id, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, version.TenantID, version.ID, version.ParentProductID, l.ComponentProductID,
			l.QuantityRequired, l.UnitOfMeasure, nullable(l.LocationID), i,
		)
	}
	results := r.q.SendBatch(ctx, batch)
	for range version.Lines {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return classify("insert bom line", err)
		}
	}
	return classify("insert bom lines", results.Close())
}

// Supersede desactiva la versión. Falla si ya no estaba activa (otra revisión ganó).
func (r *BOMRepo) Supersede(ctx context.Context, tenantID, versionID string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE bom_versions SET active = false, superseded_at = $3
		WHERE tenant_id = $1 AND id = $2 AND active`, tenantID, versionID, at)
	if err != nil {
		return classify("supersede bom version", err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetVersion(ctx, tenantID, versionID); err != nil {
		return err
	}
	return domain.ErrConcurrentModification
}

// ListActiveLines líneas de todas las versiones activas del tenant.
func (r *BOMRepo) ListActiveLines(ctx context.Context, tenantID string) ([]entity.BOMLine, error) {
	return r.queryLines(ctx, "list active bom lines", `
		SELECT `+lineColumns+` FROM bom_lines l
		JOIN bom_versions v ON v.id = l.bom_version_id
		WHERE v.tenant_id = $1 AND v.active
		ORDER BY l.parent_product_id, l.position`, tenantID)
}

// componentScope filtra líneas activas por componente; $3 vacío abarca todas las ubicaciones.
const componentScope = `v.tenant_id = $1 AND v.active AND l.component_product_id = $2
	AND ($3::text = '' OR l.location_id = $3)`

// FindByComponent pagina las versiones activas afectadas por una sustitución.
func (r *BOMRepo) FindByComponent(ctx context.Context, tenantID, componentID, locationID string, limit, offset int) ([]repository.AffectedBOM, int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(DISTINCT v.id) FROM bom_lines l
		JOIN bom_versions v ON v.id = l.bom_version_id
		WHERE `+componentScope, tenantID, componentID, locationID,
	).Scan(&total)
	if err != nil {
		return nil, 0, classify("count affected boms", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT v.id, v.parent_product_id, v.version_number, COUNT(*), SUM(l.quantity_required)
		FROM bom_lines l
		JOIN bom_versions v ON v.id = l.bom_version_id
		WHERE `+componentScope+`
		GROUP BY v.id, v.parent_product_id, v.version_number
		ORDER BY v.parent_product_id, v.version_number
		LIMIT $4 OFFSET $5`, tenantID, componentID, locationID, limitArg(limit), max(offset, 0))
	if err != nil {
		return nil, 0, classify("find boms by component", err)
	}
	defer rows.Close()
	list := make([]repository.AffectedBOM, 0)
	for rows.Next() {
		var a repository.AffectedBOM
		if err := rows.Scan(&a.BOMVersionID, &a.ParentProductID, &a.VersionNumber, &a.Lines, &a.QuantityRequired); err != nil {
			return nil, 0, fmt.Errorf("scan affected bom: %w", err)
		}
		list = append(list, a)
	}
	return list, total, rows.Err()
}

// LockLinesByComponent bloquea solo las líneas afectadas (FOR UPDATE OF l).
func (r *BOMRepo) LockLinesByComponent(ctx context.Context, tenantID, componentID, locationID string) ([]entity.BOMLine, error) {
	return r.queryLines(ctx, "lock bom lines", `
		SELECT `+lineColumns+` FROM bom_lines l
		JOIN bom_versions v ON v.id = l.bom_version_id
		WHERE `+componentScope+`
		ORDER BY l.parent_product_id, l.id
		FOR UPDATE OF l`, tenantID, componentID, locationID)
}

// ReplaceComponent cambia el componente de las líneas en una sola sentencia.
func (r *BOMRepo) ReplaceComponent(ctx context.Context, tenantID string, lineIDs []string, newComponentID string) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE bom_lines SET component_product_id = $3
		WHERE tenant_id = $1 AND id = ANY($2)`, tenantID, lineIDs, newComponentID)
	if err != nil {
		return 0, classify("replace bom component", err)
	}
	return cmd.RowsAffected(), nil
}
