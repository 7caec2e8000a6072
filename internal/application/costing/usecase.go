// Package costing expone el motor de costeo sobre el ledger persistido: costo de un
// movimiento hipotético y valorización a una fecha. Ambos reconstruyen el estado de
// costeo reproduciendo el historial con el mismo código que usa el registro en línea.
package costing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/inventory"
	"github.com/jhoicas/stockledger/internal/domain/repository"
	"github.com/jhoicas/stockledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// UseCase costeo y valorización.
type UseCase struct {
	store     repository.Store
	generator ReportPDFGenerator
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso. generator puede ser nil si no se exponen PDFs.
func NewUseCase(store repository.Store, generator ReportPDFGenerator, log *logger.Logger) *UseCase {
	return &UseCase{store: store, generator: generator, log: log.Component("costing"), now: time.Now}
}

// PreviewInput movimiento hipotético a costear. Method vacío usa el método del producto.
type PreviewInput struct {
	TenantID   string
	ProductID  string
	LocationID string
	Type       entity.TransactionType
	Quantity   decimal.Decimal
	UnitCost   *decimal.Decimal
	Method     entity.CostingMethod
}

// Preview resultado del costeo sin registrar el movimiento.
type Preview struct {
	Method    entity.CostingMethod
	UnitCost  decimal.Decimal
	TotalCost decimal.Decimal
}

// CostOfTransaction calcula el costo unitario que tendría el movimiento si se registrara
// ahora con el método indicado. No modifica el ledger.
func (uc *UseCase) CostOfTransaction(ctx context.Context, in PreviewInput) (*Preview, error) {
	product, err := uc.store.Products.GetByID(ctx, in.TenantID, in.ProductID)
	if err != nil {
		return nil, domain.Wrap("cost", in.ProductID, in.LocationID, err)
	}
	if _, err := uc.store.Locations.GetByID(ctx, in.TenantID, in.LocationID); err != nil {
		return nil, domain.Wrap("cost", in.ProductID, in.LocationID, err)
	}
	method := in.Method
	if method == "" {
		method = product.CostingMethod
	}
	if !method.Valid() {
		return nil, domain.ErrInvalidInput
	}
	tx := entity.StockTransaction{
		TenantID:   in.TenantID,
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Type:       in.Type,
		Quantity:   in.Quantity,
		OccurredAt: uc.now().UTC(),
	}
	if in.UnitCost != nil {
		tx.UnitCost = *in.UnitCost
	}
	if err := inventory.ValidateTransaction(&tx); err != nil {
		return nil, domain.Wrap("cost", in.ProductID, in.LocationID, err)
	}

	state, err := uc.replay(ctx, product, method, in.LocationID, tx.OccurredAt)
	if err != nil {
		return nil, domain.Wrap("cost", in.ProductID, in.LocationID, err)
	}
	res, err := state.Apply(&tx, true)
	if err != nil {
		return nil, domain.Wrap("cost", in.ProductID, in.LocationID, err)
	}
	out := &Preview{Method: method, UnitCost: res.UnitCost, TotalCost: res.TotalCost}
	if tx.SignedDelta().IsPositive() {
		out.UnitCost = res.ActualCost
		out.TotalCost = res.ActualCost.Mul(tx.SignedDelta())
	}
	return out, nil
}

// ValuationResult valorización de un producto en una ubicación o en todas.
type ValuationResult struct {
	inventory.Valuation
	ProductID  string
	LocationID string
	Method     entity.CostingMethod
	AsOf       time.Time
}

// Valuation valoriza el producto a la fecha asOf. locationID vacío suma todas las ubicaciones.
func (uc *UseCase) Valuation(ctx context.Context, tenantID, productID, locationID string, asOf time.Time) (*ValuationResult, error) {
	if asOf.IsZero() {
		asOf = uc.now().UTC()
	}
	product, err := uc.store.Products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, domain.Wrap("valuation", productID, locationID, err)
	}
	out := &ValuationResult{ProductID: productID, LocationID: locationID, Method: product.CostingMethod, AsOf: asOf}

	locations := []string{locationID}
	if locationID == "" {
		levels, err := uc.store.Levels.List(ctx, tenantID, repository.StockLevelFilter{ProductIDs: []string{productID}})
		if err != nil {
			return nil, domain.Wrap("valuation", productID, locationID, err)
		}
		locations = locations[:0]
		for _, l := range levels {
			locations = append(locations, l.LocationID)
		}
	} else if _, err := uc.store.Locations.GetByID(ctx, tenantID, locationID); err != nil {
		return nil, domain.Wrap("valuation", productID, locationID, err)
	}

	for _, loc := range locations {
		state, err := uc.replay(ctx, product, product.CostingMethod, loc, asOf)
		if err != nil {
			return nil, domain.Wrap("valuation", productID, loc, err)
		}
		v := state.Valuation()
		out.Quantity = out.Quantity.Add(v.Quantity)
		out.TotalValue = out.TotalValue.Add(v.TotalValue)
	}
	if !out.Quantity.IsZero() {
		out.AvgUnitCost = out.TotalValue.Div(out.Quantity)
	}
	return out, nil
}

// replay reconstruye el estado de costeo de la clave con el historial hasta asOf.
func (uc *UseCase) replay(ctx context.Context, product *entity.Product, method entity.CostingMethod, locationID string, asOf time.Time) (*inventory.CostState, error) {
	txs, err := uc.store.Transactions.ListUntil(ctx, product.TenantID, product.ID, locationID, asOf)
	if err != nil {
		return nil, err
	}
	return inventory.ReplayCost(method, product.StandardCost, txs)
}

// ReportLine valorización de un producto en una ubicación.
type ReportLine struct {
	ProductID    string
	SKU          string
	Name         string
	LocationID   string
	LocationCode string
	Method       entity.CostingMethod
	inventory.Valuation
}

// Report valorización de todo el inventario del tenant.
type Report struct {
	TenantID    string
	AsOf        time.Time
	GeneratedAt time.Time
	Lines       []ReportLine
	TotalValue  decimal.Decimal
}

// ValuationReport valoriza cada par (producto, ubicación) con movimientos del tenant.
func (uc *UseCase) ValuationReport(ctx context.Context, tenantID string, asOf time.Time) (*Report, error) {
	now := uc.now().UTC()
	if asOf.IsZero() {
		asOf = now
	}
	levels, err := uc.store.Levels.List(ctx, tenantID, repository.StockLevelFilter{})
	if err != nil {
		return nil, fmt.Errorf("valuation report: niveles: %w", err)
	}
	locs, err := uc.store.Locations.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("valuation report: ubicaciones: %w", err)
	}
	codes := make(map[string]string, len(locs))
	for _, l := range locs {
		codes[l.ID] = l.Code
	}

	report := &Report{TenantID: tenantID, AsOf: asOf, GeneratedAt: now}
	products := make(map[string]*entity.Product)
	for _, lvl := range levels {
		p, ok := products[lvl.ProductID]
		if !ok {
			p, err = uc.store.Products.GetByID(ctx, tenantID, lvl.ProductID)
			if err != nil {
				return nil, domain.Wrap("valuation report", lvl.ProductID, lvl.LocationID, err)
			}
			products[lvl.ProductID] = p
		}
		state, err := uc.replay(ctx, p, p.CostingMethod, lvl.LocationID, asOf)
		if err != nil {
			return nil, domain.Wrap("valuation report", lvl.ProductID, lvl.LocationID, err)
		}
		v := state.Valuation()
		if v.Quantity.IsZero() && v.TotalValue.IsZero() {
			continue
		}
		report.Lines = append(report.Lines, ReportLine{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			LocationID:   lvl.LocationID,
			LocationCode: codes[lvl.LocationID],
			Method:       p.CostingMethod,
			Valuation:    v,
		})
		report.TotalValue = report.TotalValue.Add(v.TotalValue)
	}
	sort.Slice(report.Lines, func(i, j int) bool {
		a, b := report.Lines[i], report.Lines[j]
		if a.SKU != b.SKU {
			return a.SKU < b.SKU
		}
		return a.LocationCode < b.LocationCode
	})
	return report, nil
}

// ValuationReportPDF genera el reporte y lo renderiza. Devuelve los bytes y el nombre sugerido.
func (uc *UseCase) ValuationReportPDF(ctx context.Context, tenantID string, asOf time.Time) ([]byte, string, error) {
	if uc.generator == nil {
		return nil, "", fmt.Errorf("valuation report: generador PDF no configurado")
	}
	report, err := uc.ValuationReport(ctx, tenantID, asOf)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateValuationPDF(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("valuation report: generar pdf: %w", err)
	}
	uc.log.Info().
		Str("tenant_id", tenantID).
		Int("lines", len(report.Lines)).
		Str("total_value", report.TotalValue.StringFixed(2)).
		Msg("reporte de valorización generado")
	return pdf, fmt.Sprintf("valorizacion-%s.pdf", report.AsOf.Format("20060102")), nil
}
