package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/stockledger/internal/application/ports"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewStore repositorios atados a q (pool fuera de transacción o tx).
func NewStore(q Querier) repository.Store {
	return repository.Store{
		Products:     NewProductRepository(q),
		Locations:    NewLocationRepository(q),
		Levels:       NewStockLevelRepository(q),
		Transactions: NewStockTransactionRepository(q),
		Lots:         NewCostLotRepository(q),
		BOMs:         NewBOMRepository(q),
	}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(store repository.Store) error) error {
	return r.run(ctx, pgx.TxOptions{}, fn)
}

// RunSerializable igual que Run en aislamiento SERIALIZABLE.
func (r *TxRunner) RunSerializable(ctx context.Context, fn func(store repository.Store) error) error {
	return r.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

func (r *TxRunner) run(ctx context.Context, opts pgx.TxOptions, fn func(store repository.Store) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}
