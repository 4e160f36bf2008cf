package repository

import "context"

// WarehouseLookup puerto de solo lectura sobre bodegas administradas por otro módulo.
type WarehouseLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
