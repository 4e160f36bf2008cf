package repository

import "context"

// PackagingLookup puerto de solo lectura sobre empaques administrados por otro módulo.
type PackagingLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}
