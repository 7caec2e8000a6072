package entity

import "time"

// Location representa una bodega, sucursal o ubicación física de inventario.
type Location struct {
	ID        string
	TenantID  string
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
