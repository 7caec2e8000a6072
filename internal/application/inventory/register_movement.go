package inventory

import (
	"context"

	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
)

// AppendFromRequest adapta el request HTTP al caso de uso Append(ctx, MovementInput).
func (uc *LedgerUseCase) AppendFromRequest(ctx context.Context, tenantID, userID string, in dto.AppendTransactionRequest) (*dto.TransactionResponse, error) {
	res, err := uc.Append(ctx, MovementInput{
		TenantID:        tenantID,
		ActorID:         userID,
		ProductID:       in.ProductID,
		LocationID:      in.LocationID,
		Type:            entity.TransactionType(in.Type),
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		OccurredAt:      in.OccurredAt,
		ReferenceNumber: in.ReferenceNumber,
		VariantID:       in.VariantID,
		AllowNegative:   in.AllowNegative,
	})
	if err != nil {
		return nil, err
	}
	out := dto.ToTransactionResponse(&res.Transaction)
	return &out, nil
}

// ReserveFromRequest adapta el request HTTP de reservas.
func (uc *LedgerUseCase) ReserveFromRequest(ctx context.Context, tenantID string, in dto.ReservationRequest) (*dto.StockLevelResponse, error) {
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	q := in.Quantity
	if in.Release {
		q = q.Neg()
	}
	level, err := uc.Reserve(ctx, ReservationInput{
		TenantID:   tenantID,
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Quantity:   q,
	})
	if err != nil {
		return nil, err
	}
	out := dto.ToStockLevelResponse(level)
	return &out, nil
}
