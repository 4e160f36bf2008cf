package entity

import "time"

// InventoryRecord cantidad disponible de un empaque en una bodega.
// Un único registro por par (packaging_id, warehouse_id), garantizado por constraint UNIQUE.
type InventoryRecord struct {
	PackagingID string
	WarehouseID string
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
