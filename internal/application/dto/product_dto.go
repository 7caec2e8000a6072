package dto

import (
	"time"

	"github.com/jhoicas/stockledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU                string          `json:"sku" validate:"required,min=1,max=100"`
	Barcode            string          `json:"barcode" validate:"max=64"`
	Name               string          `json:"name" validate:"required,min=1,max=200"`
	Category           string          `json:"category" validate:"max=100"`
	ItemType           string          `json:"item_type" validate:"required,oneof=purchased manufactured"`
	ProductionStrategy string          `json:"production_strategy" validate:"omitempty,oneof=make_to_stock make_to_order"`
	BaseUnitOfMeasure  string          `json:"base_unit_of_measure" validate:"required,max=20"`
	CostingMethod      string          `json:"costing_method" validate:"required,oneof=fifo lifo weighted_average standard"`
	StandardCost       decimal.Decimal `json:"standard_cost"`
	SalePrice          decimal.Decimal `json:"sale_price"`
	MinimumStockLevel  decimal.Decimal `json:"minimum_stock_level"`
	LeadTimeDays       int             `json:"lead_time_days" validate:"min=0,max=365"`
}

// UpdateProductRequest edición de datos y clasificación (la existencia solo cambia vía ledger).
type UpdateProductRequest struct {
	Name               *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Barcode            *string          `json:"barcode" validate:"omitempty,max=64"`
	Category           *string          `json:"category" validate:"omitempty,max=100"`
	ItemType           *string          `json:"item_type" validate:"omitempty,oneof=purchased manufactured"`
	ProductionStrategy *string          `json:"production_strategy" validate:"omitempty,oneof=make_to_stock make_to_order"`
	CostingMethod      *string          `json:"costing_method" validate:"omitempty,oneof=fifo lifo weighted_average standard"`
	StandardCost       *decimal.Decimal `json:"standard_cost"`
	SalePrice          *decimal.Decimal `json:"sale_price"`
	MinimumStockLevel  *decimal.Decimal `json:"minimum_stock_level"`
	LeadTimeDays       *int             `json:"lead_time_days" validate:"omitempty,min=0,max=365"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                 string          `json:"id"`
	SKU                string          `json:"sku"`
	Barcode            string          `json:"barcode"`
	Name               string          `json:"name"`
	Category           string          `json:"category"`
	ItemType           string          `json:"item_type"`
	ProductionStrategy string          `json:"production_strategy,omitempty"`
	BaseUnitOfMeasure  string          `json:"base_unit_of_measure"`
	CostingMethod      string          `json:"costing_method"`
	StandardCost       decimal.Decimal `json:"standard_cost"`
	SalePrice          decimal.Decimal `json:"sale_price"`
	MinimumStockLevel  decimal.Decimal `json:"minimum_stock_level"`
	LeadTimeDays       int             `json:"lead_time_days"`
	OnHandQuantity     decimal.Decimal `json:"on_hand_quantity"`
	Retired            bool            `json:"retired"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ToProductResponse convierte la entidad en DTO.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		SKU:                p.SKU,
		Barcode:            p.Barcode,
		Name:               p.Name,
		Category:           p.Category,
		ItemType:           string(p.ItemType),
		ProductionStrategy: string(p.ProductionStrategy),
		BaseUnitOfMeasure:  p.BaseUnitOfMeasure,
		CostingMethod:      string(p.CostingMethod),
		StandardCost:       p.StandardCost,
		SalePrice:          p.SalePrice,
		MinimumStockLevel:  p.MinimumStockLevel,
		LeadTimeDays:       p.LeadTimeDays,
		OnHandQuantity:     p.OnHandQuantity,
		Retired:            p.Retired,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// UsageResponse conteos de productos para medición de uso.
type UsageResponse struct {
	TotalProducts        int `json:"total_products"`
	ActiveProducts       int `json:"active_products"`
	ManufacturedProducts int `json:"manufactured_products"`
}

// CreateLocationRequest entrada para crear una ubicación.
type CreateLocationRequest struct {
	Code string `json:"code" validate:"required,min=1,max=50"`
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ToLocationResponse convierte la entidad en DTO.
func ToLocationResponse(l *entity.Location) LocationResponse {
	return LocationResponse{ID: l.ID, Code: l.Code, Name: l.Name, CreatedAt: l.CreatedAt}
}
