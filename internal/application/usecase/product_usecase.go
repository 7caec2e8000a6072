package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger/internal/application/dto"
	"github.com/jhoicas/stockledger/internal/domain"
	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/jhoicas/stockledger/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. La existencia se maneja vía ledger;
// los productos no se eliminan, se retiran.
type ProductUseCase struct {
	store repository.Store
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(store repository.Store) *ProductUseCase {
	return &ProductUseCase{store: store}
}

// Create crea un nuevo producto con existencia cero.
func (uc *ProductUseCase) Create(ctx context.Context, tenantID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if _, err := uc.store.Products.GetBySKU(ctx, tenantID, in.SKU); err == nil {
		return nil, domain.ErrDuplicate
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	product := &entity.Product{
		ID:                 uuid.New().String(),
		TenantID:           tenantID,
		SKU:                in.SKU,
		Barcode:            in.Barcode,
		Name:               in.Name,
		Category:           in.Category,
		ItemType:           entity.ItemType(in.ItemType),
		ProductionStrategy: entity.ProductionStrategy(in.ProductionStrategy),
		BaseUnitOfMeasure:  in.BaseUnitOfMeasure,
		CostingMethod:      entity.CostingMethod(in.CostingMethod),
		StandardCost:       in.StandardCost,
		SalePrice:          in.SalePrice,
		MinimumStockLevel:  in.MinimumStockLevel,
		LeadTimeDays:       in.LeadTimeDays,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if product.IsManufactured() && product.ProductionStrategy == "" {
		product.ProductionStrategy = entity.MakeToStock
	}
	if !product.ValidClassification() || product.SalePrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.store.Products.Create(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ToProductResponse(product)
	return &out, nil
}

// GetByID obtiene un producto del tenant.
func (uc *ProductUseCase) GetByID(ctx context.Context, tenantID, id string) (*dto.ProductResponse, error) {
	product, err := uc.store.Products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	out := dto.ToProductResponse(product)
	return &out, nil
}

// Update actualiza datos y clasificación. No modifica la existencia.
// Un fabricado con BOM activa no puede pasar a comprado.
func (uc *ProductUseCase) Update(ctx context.Context, tenantID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.store.Products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Barcode != nil {
		product.Barcode = *in.Barcode
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.ItemType != nil {
		product.ItemType = entity.ItemType(*in.ItemType)
		if !product.IsManufactured() {
			product.ProductionStrategy = ""
		}
	}
	if in.ProductionStrategy != nil {
		product.ProductionStrategy = entity.ProductionStrategy(*in.ProductionStrategy)
	}
	if in.CostingMethod != nil {
		product.CostingMethod = entity.CostingMethod(*in.CostingMethod)
	}
	if in.StandardCost != nil {
		product.StandardCost = *in.StandardCost
	}
	if in.SalePrice != nil {
		product.SalePrice = *in.SalePrice
	}
	if in.MinimumStockLevel != nil {
		product.MinimumStockLevel = *in.MinimumStockLevel
	}
	if in.LeadTimeDays != nil {
		product.LeadTimeDays = *in.LeadTimeDays
	}
	if !product.ValidClassification() || product.SalePrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if !product.IsManufactured() {
		if _, err := uc.store.BOMs.GetActiveVersion(ctx, tenantID, id); err == nil {
			return nil, domain.ErrInvalidInput
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	product.UpdatedAt = time.Now().UTC()
	if err := uc.store.Products.Update(ctx, product); err != nil {
		return nil, err
	}
	out := dto.ToProductResponse(product)
	return &out, nil
}

// Retire marca el producto como retirado: no admite nuevas entradas ni BOMs nuevas,
// pero conserva su historial.
func (uc *ProductUseCase) Retire(ctx context.Context, tenantID, id string) error {
	product, err := uc.store.Products.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if product.Retired {
		return nil
	}
	product.Retired = true
	product.UpdatedAt = time.Now().UTC()
	return uc.store.Products.Update(ctx, product)
}

// List lista productos del tenant con paginación.
func (uc *ProductUseCase) List(ctx context.Context, tenantID string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.store.Products.ListByTenant(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	counts, err := uc.store.Products.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: counts.Total},
	}, nil
}

// Usage conteos agregados de productos para medición de uso.
func (uc *ProductUseCase) Usage(ctx context.Context, tenantID string) (*dto.UsageResponse, error) {
	counts, err := uc.store.Products.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &dto.UsageResponse{
		TotalProducts:        counts.Total,
		ActiveProducts:       counts.Active,
		ManufacturedProducts: counts.Manufactured,
	}, nil
}
