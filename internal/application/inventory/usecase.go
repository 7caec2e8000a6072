package inventory

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
	"github.com/shopspring/decimal"
)

// LedgerConfig política del ledger inyectada desde la configuración.
type LedgerConfig struct {
	// AllowNegativeBackfill habilita el flag AllowNegative de las solicitudes.
	AllowNegativeBackfill bool
	Retry                 retry.Config
	PageSize              int
}

// LedgerUseCase registra movimientos en el ledger de forma transaccional: bloqueo de la
// fila de stock (SELECT FOR UPDATE), costeo, inserción y actualización de proyecciones
// en una sola transacción con Commit/Rollback.
type LedgerUseCase struct {
	txRunner ports.TxRunner
	store    repository.Store
	cfg      LedgerConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso. store se usa para lecturas fuera de transacción.
func NewLedgerUseCase(txRunner ports.TxRunner, store repository.Store, cfg LedgerConfig, log *logger.Logger) *LedgerUseCase {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 200
	}
	return &LedgerUseCase{
		txRunner: txRunner,
		store:    store,
		cfg:      cfg,
		log:      log.Component("ledger"),
		now:      time.Now,
	}
}

// MovementInput entrada para registrar un movimiento.
// Incoming/Outgoing llevan cantidad positiva; ManualAdjustment/Backfill llevan signo.
// UnitCost es el costo real en entradas; en salidas lo calcula el motor de costeo.
type MovementInput struct {
	TenantID        string
	ActorID         string
	ProductID       string
	LocationID      string
	Type            entity.TransactionType
	Quantity        decimal.Decimal
	UnitCost        *decimal.Decimal
	OccurredAt      *time.Time
	ReferenceNumber string
	VariantID       *string
	// AllowNegative solo se respeta si la política de backfill está habilitada y el tipo
	// es ajuste manual, backfill o salida.
	AllowNegative bool
}

// AppendResult resultado de un Append exitoso.
type AppendResult struct {
	Transaction entity.StockTransaction
	Attempts    int
}

// Append registra el movimiento y devuelve la transacción con su quantityAfter.
// Reintenta automáticamente ante ErrConcurrentModification o ErrLotExhaustion.
func (uc *LedgerUseCase) Append(ctx context.Context, in MovementInput) (*AppendResult, error) {
	if in.TenantID == "" || in.ProductID == "" || in.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now().UTC()
	occurredAt := now
	serverTime := in.OccurredAt == nil
	if !serverTime {
		occurredAt = in.OccurredAt.UTC()
	}
	unitCost := decimal.Zero
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	base := entity.StockTransaction{
		TenantID:        in.TenantID,
		ProductID:       in.ProductID,
		LocationID:      in.LocationID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		UnitCost:        unitCost,
		OccurredAt:      occurredAt,
		ActorID:         in.ActorID,
		ReferenceNumber: in.ReferenceNumber,
		VariantID:       in.VariantID,
	}
	if err := inventory.ValidateTransaction(&base); err != nil {
		return nil, domain.Wrap("append", in.ProductID, in.LocationID, err)
	}
	allowNegative := in.AllowNegative && uc.cfg.AllowNegativeBackfill && in.Type.AllowsNegativeBalance()

	var result entity.StockTransaction
	attempts, err := retry.Do(ctx, uc.cfg.Retry, domain.IsRetryable, func(int) error {
		tx := base
		tx.ID = uuid.New().String()
		tx.CreatedAt = now
		err := uc.txRunner.Run(ctx, func(store repository.Store) error {
			return uc.apply(ctx, store, &tx, allowNegative, serverTime)
		})
		if err == nil {
			result = tx
		}
		return err
	})
	if err != nil {
		uc.log.Warn().Err(err).
			Str("tenant_id", in.TenantID).
			Str("product_id", in.ProductID).
			Str("location_id", in.LocationID).
			Int("attempts", attempts).
			Msg("append rechazado")
		return nil, domain.Wrap("append", in.ProductID, in.LocationID, err)
	}
	uc.log.Info().
		Str("tenant_id", in.TenantID).
		Str("product_id", in.ProductID).
		Str("location_id", in.LocationID).
		Str("type", string(in.Type)).
		Str("quantity_after", result.QuantityAfter.String()).
		Int64("sequence", result.Sequence).
		Int("attempts", attempts).
		Msg("movimiento registrado")
	return &AppendResult{Transaction: result, Attempts: attempts}, nil
}

// apply corre dentro de la transacción: cualquier error revierte todo.
// serverTime indica que OccurredAt no vino en la solicitud y se asigna bajo el bloqueo.
func (uc *LedgerUseCase) apply(ctx context.Context, store repository.Store, tx *entity.StockTransaction, allowNegative, serverTime bool) error {
	product, err := store.Products.GetByID(ctx, tx.TenantID, tx.ProductID)
	if err != nil {
		return err
	}
	if _, err := store.Locations.GetByID(ctx, tx.TenantID, tx.LocationID); err != nil {
		return err
	}
	if product.Retired && tx.SignedDelta().IsPositive() {
		return domain.ErrInvalidInput
	}

	// Bloquea la fila de stock (SELECT FOR UPDATE): serializa los Append de la misma clave.
	level, err := store.Levels.GetForUpdate(ctx, tx.TenantID, tx.ProductID, tx.LocationID)
	if err != nil {
		return err
	}
	if serverTime {
		tx.OccurredAt = uc.now().UTC()
	}
	last, err := store.Transactions.Last(ctx, tx.TenantID, tx.ProductID, tx.LocationID)
	switch {
	case err == nil && tx.OccurredAt.Before(last.OccurredAt):
		if !serverTime {
			// Las correcciones son transacciones nuevas: no se insertan eventos en el pasado.
			return domain.ErrInvalidInput
		}
		tx.OccurredAt = last.OccurredAt
	case err != nil && !isNotFound(err):
		return err
	}

	after, err := inventory.NextBalance(level.OnHand, tx, allowNegative)
	if err != nil {
		return err
	}

	cost := &inventory.CostState{
		Method:       product.CostingMethod,
		StandardCost: product.StandardCost,
		Quantity:     level.OnHand,
		AverageCost:  level.AverageCost,
	}
	if product.CostingMethod.UsesLots() {
		lots, err := store.Lots.ListOpen(ctx, tx.TenantID, tx.ProductID, tx.LocationID)
		if err != nil {
			return err
		}
		cost.Lots = lots
		cost.CoverUntrackedQuantity(time.Time{})
	}
	res, err := cost.Apply(tx, allowNegative)
	if err != nil {
		return err
	}
	if tx.SignedDelta().IsPositive() {
		tx.UnitCost = res.ActualCost
		tx.TotalCost = res.ActualCost.Mul(tx.SignedDelta())
	} else {
		tx.UnitCost = res.UnitCost
		tx.TotalCost = res.TotalCost
	}
	tx.QuantityAfter = after

	if err := store.Transactions.Create(ctx, tx); err != nil {
		return err
	}
	for _, c := range res.Consumed {
		if c.LotID == "" {
			continue // lote sintético, no persistido
		}
		if err := store.Lots.Consume(ctx, tx.TenantID, c.LotID, c.Quantity); err != nil {
			return err
		}
	}
	if res.NewLot != nil {
		lot := *res.NewLot
		lot.Sequence = tx.Sequence
		if err := store.Lots.Create(ctx, &lot); err != nil {
			return err
		}
	}
	if res.Variance != nil {
		v := *res.Variance
		v.ID = uuid.New().String()
		v.TenantID = tx.TenantID
		v.CreatedAt = tx.CreatedAt
		if err := store.Lots.RecordVariance(ctx, &v); err != nil {
			return err
		}
	}

	delta := after.Sub(level.OnHand)
	level.OnHand = after
	level.AverageCost = cost.AverageCost
	level.LastSequence = tx.Sequence
	if err := store.Levels.Save(ctx, level); err != nil {
		return err
	}
	return store.Products.AddOnHand(ctx, tx.TenantID, tx.ProductID, delta)
}

// ReservationInput reserva (Quantity > 0) o libera (Quantity < 0) stock asignado.
type ReservationInput struct {
	TenantID   string
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
}

// Reserve ajusta Reserved del nivel de stock. La reserva nunca supera la existencia
// ni queda negativa.
func (uc *LedgerUseCase) Reserve(ctx context.Context, in ReservationInput) (*entity.StockLevel, error) {
	if in.TenantID == "" || in.ProductID == "" || in.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Quantity.IsZero() {
		return nil, domain.ErrInvalidQuantity
	}
	var out *entity.StockLevel
	_, err := retry.Do(ctx, uc.cfg.Retry, domain.IsRetryable, func(int) error {
		return uc.txRunner.Run(ctx, func(store repository.Store) error {
			if _, err := store.Products.GetByID(ctx, in.TenantID, in.ProductID); err != nil {
				return err
			}
			if _, err := store.Locations.GetByID(ctx, in.TenantID, in.LocationID); err != nil {
				return err
			}
			level, err := store.Levels.GetForUpdate(ctx, in.TenantID, in.ProductID, in.LocationID)
			if err != nil {
				return err
			}
			reserved := level.Reserved.Add(in.Quantity)
			if reserved.IsNegative() {
				return domain.ErrInvalidQuantity
			}
			if in.Quantity.IsPositive() && reserved.GreaterThan(level.OnHand) {
				return domain.ErrInsufficientStock
			}
			level.Reserved = reserved
			if err := store.Levels.Save(ctx, level); err != nil {
				return err
			}
			out = level
			return nil
		})
	})
	if err != nil {
		return nil, domain.Wrap("reserve", in.ProductID, in.LocationID, err)
	}
	return out, nil
}
