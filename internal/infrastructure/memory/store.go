// Package memory implementa los repositorios en memoria. Se usa en tests de casos de
// uso y como driver de desarrollo (STORE_DRIVER=memory).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stockledger/internal/application/ports"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

var _ ports.TxRunner = (*DB)(nil)

type levelKey struct {
	tenantID, productID, locationID string
}

type state struct {
	products  map[string]*entity.Product
	locations map[string]*entity.Location
	levels    map[levelKey]*entity.StockLevel
	txs       []entity.StockTransaction
	lots      map[string]*entity.CostLot
	variances []entity.CostVariance
	versions  map[string]*entity.BOMVersion
	seq       int64
}

func newState() *state {
	return &state{
		products:  make(map[string]*entity.Product),
		locations: make(map[string]*entity.Location),
		levels:    make(map[levelKey]*entity.StockLevel),
		lots:      make(map[string]*entity.CostLot),
		versions:  make(map[string]*entity.BOMVersion),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.locations {
		l := *v
		c.locations[k] = &l
	}
	for k, v := range s.levels {
		l := *v
		c.levels[k] = &l
	}
	c.txs = append(c.txs, s.txs...)
	for k, v := range s.lots {
		l := *v
		c.lots[k] = &l
	}
	c.variances = append(c.variances, s.variances...)
	for k, v := range s.versions {
		c.versions[k] = cloneVersion(v)
	}
	c.seq = s.seq
	return c
}

func cloneVersion(v *entity.BOMVersion) *entity.BOMVersion {
	out := *v
	out.Lines = append([]entity.BOMLine(nil), v.Lines...)
	if v.SupersededAt != nil {
		at := *v.SupersededAt
		out.SupersededAt = &at
	}
	return &out
}

// DB base de datos en memoria. Las transacciones se serializan con un único mutex
// (equivale a bloquear todas las filas) y trabajan sobre una copia del estado que
// reemplaza al original solo en el Commit.
type DB struct {
	mu sync.Mutex
	st *state
}

// NewDB crea una base vacía.
func NewDB() *DB {
	return &DB{st: newState()}
}

// conn ata los repositorios al estado vivo (fuera de tx) o a la copia de una tx.
type conn struct {
	db *DB
	tx *state
}

func (c *conn) read(fn func(st *state) error) error {
	if c.tx != nil {
		return fn(c.tx)
	}
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	return fn(c.db.st)
}

// Store repositorios fuera de transacción (cada llamada es atómica por sí misma).
func (d *DB) Store() repository.Store {
	return newStore(&conn{db: d})
}

func newStore(c *conn) repository.Store {
	return repository.Store{
		Products:     &ProductRepo{c: c},
		Locations:    &LocationRepo{c: c},
		Levels:       &StockLevelRepo{c: c},
		Transactions: &StockTransactionRepo{c: c},
		Lots:         &CostLotRepo{c: c},
		BOMs:         &BOMRepo{c: c},
	}
}

// Run ejecuta fn sobre una copia del estado y la publica si fn no falla.
func (d *DB) Run(ctx context.Context, fn func(store repository.Store) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := d.st.clone()
	if err := fn(newStore(&conn{db: d, tx: work})); err != nil {
		return err
	}
	// Commit: un contexto vencido durante fn descarta los cambios.
	if err := ctx.Err(); err != nil {
		return err
	}
	d.st = work
	return nil
}

// RunSerializable en memoria ya es serializable.
func (d *DB) RunSerializable(ctx context.Context, fn func(store repository.Store) error) error {
	return d.Run(ctx, fn)
}
