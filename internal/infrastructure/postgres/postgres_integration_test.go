package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	appinventory "github.com/jhoicas/stockledger/internal/application/inventory"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stockledger/pkg/config"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/jhoicas/stockledger/pkg/retry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const tenant = "tenant-1"

// newTestPool levanta PostgreSQL en un contenedor y aplica las migraciones.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en -short")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("stockledger_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := postgres.NewMigrator(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seed(t *testing.T, store repository.Store, sku string, method entity.CostingMethod, itemType entity.ItemType) *entity.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID: uuid.New().String(), TenantID: tenant, SKU: sku, Name: "Producto " + sku,
		ItemType: itemType, BaseUnitOfMeasure: "unit", CostingMethod: method,
		CreatedAt: now, UpdatedAt: now,
	}
	if itemType == entity.ItemTypeManufactured {
		p.ProductionStrategy = entity.MakeToStock
	}
	require.NoError(t, store.Products.Create(context.Background(), p))
	return p
}

func TestPostgres_LedgerFIFOConcurrente(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	store := postgres.NewStore(pool)

	loc := &entity.Location{ID: uuid.New().String(), TenantID: tenant, Code: "PRINCIPAL", Name: "Principal"}
	require.NoError(t, store.Locations.Create(ctx, loc))
	assert.ErrorIs(t, store.Locations.Create(ctx, &entity.Location{ID: uuid.New().String(), TenantID: tenant, Code: "PRINCIPAL"}), domain.ErrDuplicate)

	product := seed(t, store, "FIFO-1", entity.CostingFIFO, entity.ItemTypePurchased)
	ledger := appinventory.NewLedgerUseCase(postgres.NewTxRunner(pool), store, appinventory.LedgerConfig{
		Retry:    retry.Config{MaxRetries: 10, BaseDelay: 5 * time.Millisecond},
		PageSize: 50,
	}, logger.Nop())

	cost := decimal.NewFromInt(1)
	_, err := ledger.Append(ctx, appinventory.MovementInput{
		TenantID: tenant, ProductID: product.ID, LocationID: loc.ID,
		Type: entity.TxIncoming, Quantity: decimal.NewFromInt(100), UnitCost: &cost,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Append(ctx, appinventory.MovementInput{
				TenantID: tenant, ProductID: product.ID, LocationID: loc.ID,
				Type: entity.TxOutgoing, Quantity: decimal.NewFromInt(5),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	level, err := store.Levels.Get(ctx, tenant, product.ID, loc.ID)
	require.NoError(t, err)
	assert.True(t, level.OnHand.Equal(decimal.NewFromInt(50)), "100 - 10*5 = 50, obtenido %s", level.OnHand)

	lots, err := store.Lots.ListOpen(ctx, tenant, product.ID, loc.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].RemainingQuantity.Equal(decimal.NewFromInt(50)))

	report, err := ledger.Replay(ctx, tenant, product.ID, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, report.Transactions)
	assert.True(t, report.Consistent)
	assert.True(t, report.CacheConsistent)

	_, err = pool.Exec(ctx, `DELETE FROM stock_transactions WHERE product_id = $1`, product.ID)
	assert.Error(t, err, "el ledger es de solo inserción")
}

func TestPostgres_ProyeccionDelProductoConAppendsEnVariasUbicaciones(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	store := postgres.NewStore(pool)

	l1 := &entity.Location{ID: uuid.New().String(), TenantID: tenant, Code: "L1", Name: "L1"}
	l2 := &entity.Location{ID: uuid.New().String(), TenantID: tenant, Code: "L2", Name: "L2"}
	require.NoError(t, store.Locations.Create(ctx, l1))
	require.NoError(t, store.Locations.Create(ctx, l2))

	product := seed(t, store, "MULTI-1", entity.CostingWeightedAverage, entity.ItemTypePurchased)
	ledger := appinventory.NewLedgerUseCase(postgres.NewTxRunner(pool), store, appinventory.LedgerConfig{
		Retry:    retry.Config{MaxRetries: 10, BaseDelay: 5 * time.Millisecond},
		PageSize: 50,
	}, logger.Nop())

	cost := decimal.NewFromInt(1)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		for _, loc := range []*entity.Location{l1, l2} {
			wg.Add(1)
			go func(locationID string) {
				defer wg.Done()
				_, err := ledger.Append(ctx, appinventory.MovementInput{
					TenantID: tenant, ProductID: product.ID, LocationID: locationID,
					Type: entity.TxIncoming, Quantity: decimal.NewFromInt(3), UnitCost: &cost,
				})
				errs <- err
			}(loc.ID)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	total, err := store.Levels.SumOnHand(ctx, tenant, product.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(60)), "20 entradas de 3, obtenido %s", total)

	got, err := store.Products.GetByID(ctx, tenant, product.ID)
	require.NoError(t, err)
	assert.True(t, got.OnHandQuantity.Equal(total), "producto %s, ubicaciones %s", got.OnHandQuantity, total)

	report, err := ledger.Replay(ctx, tenant, product.ID, l1.ID)
	require.NoError(t, err)
	assert.True(t, report.ProductCacheConsistent)
}

func TestPostgres_BOMVersionesYSustitucion(t *testing.T) {
	pool := newTestPool(t)
	ctx := context.Background()
	store := postgres.NewStore(pool)

	parent := seed(t, store, "P", entity.CostingStandard, entity.ItemTypeManufactured)
	oldC := seed(t, store, "C-OLD", entity.CostingStandard, entity.ItemTypePurchased)
	newC := seed(t, store, "C-NEW", entity.CostingStandard, entity.ItemTypePurchased)

	v1 := &entity.BOMVersion{
		ID: uuid.New().String(), TenantID: tenant, ParentProductID: parent.ID, VersionNumber: 1,
		Active: true, CreatedAt: time.Now().UTC(),
		Lines: []entity.BOMLine{{
			ID: uuid.New().String(), ComponentProductID: oldC.ID,
			QuantityRequired: decimal.NewFromInt(2), UnitOfMeasure: "unit",
		}},
	}
	runner := postgres.NewTxRunner(pool)
	require.NoError(t, runner.RunSerializable(ctx, func(s repository.Store) error {
		return s.BOMs.CreateVersion(ctx, v1)
	}))

	dup := *v1
	dup.ID = uuid.New().String()
	dup.VersionNumber = 2
	dup.Lines = nil
	assert.ErrorIs(t, store.BOMs.CreateVersion(ctx, &dup), domain.ErrConcurrentModification, "solo una versión activa por padre")

	active, err := store.BOMs.GetActiveVersion(ctx, tenant, parent.ID)
	require.NoError(t, err)
	require.Len(t, active.Lines, 1)
	assert.Equal(t, parent.ID, active.Lines[0].ParentProductID)

	affected, total, err := store.BOMs.FindByComponent(ctx, tenant, oldC.ID, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, affected, 1)
	assert.Equal(t, 1, affected[0].Lines)

	var replaced int64
	require.NoError(t, runner.RunSerializable(ctx, func(s repository.Store) error {
		lines, err := s.BOMs.LockLinesByComponent(ctx, tenant, oldC.ID, "")
		if err != nil {
			return err
		}
		ids := make([]string, len(lines))
		for i, l := range lines {
			ids[i] = l.ID
		}
		replaced, err = s.BOMs.ReplaceComponent(ctx, tenant, ids, newC.ID)
		return err
	}))
	assert.Equal(t, int64(1), replaced)

	lines, err := store.BOMs.ListActiveLines(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, newC.ID, lines[0].ComponentProductID)

	require.NoError(t, store.BOMs.Supersede(ctx, tenant, v1.ID, time.Now().UTC()))
	assert.ErrorIs(t, store.BOMs.Supersede(ctx, tenant, v1.ID, time.Now().UTC()), domain.ErrConcurrentModification)
	_, err = store.BOMs.GetActiveVersion(ctx, tenant, parent.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
