package postgres

import (
	"context"

	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
	"github.com/jhoicas/packaging-ledger/pkg/logger"
)

var (
	_ repository.WarehouseLookup = (*WarehouseRepo)(nil)
	_ repository.PackagingLookup = (*PackagingRepo)(nil)
)

// lookup consulta de existencia con la misma política de reintentos que las unidades de trabajo.
type lookup struct {
	q      Querier
	policy RetryPolicy
	log    *logger.Logger
}

func (l lookup) exists(ctx context.Context, op, query, id string) (bool, error) {
	var ok bool
	err := l.policy.Do(ctx, l.log, op, func() error {
		if err := l.q.QueryRow(ctx, query, id).Scan(&ok); err != nil {
			return classify(op+" "+id, err, "", "")
		}
		return nil
	})
	return ok, err
}

// WarehouseRepo consulta de existencia de bodegas. Las bodegas se administran en otro módulo.
type WarehouseRepo struct {
	lookup
}

// NewWarehouseRepository construye el adaptador de lectura para bodegas.
func NewWarehouseRepository(q Querier, policy RetryPolicy, log *logger.Logger) *WarehouseRepo {
	return &WarehouseRepo{lookup{q: q, policy: policy, log: log}}
}

// Exists indica si la bodega existe.
func (r *WarehouseRepo) Exists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "lookup warehouse", `SELECT EXISTS (SELECT 1 FROM warehouses WHERE id = $1)`, id)
}

// PackagingRepo consulta de existencia de empaques.
type PackagingRepo struct {
	lookup
}

// NewPackagingRepository construye el adaptador de lectura para empaques.
func NewPackagingRepository(q Querier, policy RetryPolicy, log *logger.Logger) *PackagingRepo {
	return &PackagingRepo{lookup{q: q, policy: policy, log: log}}
}

// Exists indica si el empaque existe.
func (r *PackagingRepo) Exists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "lookup packaging", `SELECT EXISTS (SELECT 1 FROM packagings WHERE id = $1)`, id)
}
