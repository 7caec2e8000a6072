package ports

import (
	"context"

	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(store repository.Store) error) error
	// RunSerializable igual que Run con aislamiento SERIALIZABLE (mutaciones del grafo de BOM).
	// Los conflictos de serialización se devuelven como domain.ErrConcurrentModification.
	RunSerializable(ctx context.Context, fn func(store repository.Store) error) error
}
