package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AffectedBOM versión activa que referencia un componente (vista previa de sustitución).
type AffectedBOM struct {
	BOMVersionID     string
	ParentProductID  string
	VersionNumber    int
	Lines            int
	QuantityRequired decimal.Decimal // suma de las líneas afectadas
}

// BOMRepository define el puerto de persistencia de versiones de BOM.
// Las versiones se cargan siempre con sus líneas.
type BOMRepository interface {
	GetActiveVersion(ctx context.Context, tenantID, productID string) (*entity.BOMVersion, error)
	GetVersion(ctx context.Context, tenantID, versionID string) (*entity.BOMVersion, error)
	ListVersions(ctx context.Context, tenantID, productID string) ([]*entity.BOMVersion, error)
	// CreateVersion inserta la versión y sus líneas.
	CreateVersion(ctx context.Context, version *entity.BOMVersion) error
	// Supersede marca la versión como inactiva; nunca modifica sus líneas.
	Supersede(ctx context.Context, tenantID, versionID string, at time.Time) error
	// ListActiveLines devuelve todas las líneas de versiones activas del tenant (grafo completo).
	ListActiveLines(ctx context.Context, tenantID string) ([]entity.BOMLine, error)
	// FindByComponent pagina las versiones activas con líneas que usan el componente.
	// locationID vacío abarca todas las ubicaciones; si no, solo líneas de esa ubicación.
	FindByComponent(ctx context.Context, tenantID, componentID, locationID string, limit, offset int) ([]AffectedBOM, int, error)
	// LockLinesByComponent bloquea (FOR UPDATE) solo las líneas afectadas.
	LockLinesByComponent(ctx context.Context, tenantID, componentID, locationID string) ([]entity.BOMLine, error)
	// ReplaceComponent cambia el componente de las líneas indicadas en una sola sentencia.
	ReplaceComponent(ctx context.Context, tenantID string, lineIDs []string, newComponentID string) (int64, error)
}
