package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
// GetOrCreate y ApplyDeltas solo tienen sentido dentro de una tx: el bloqueo se libera en Commit/Rollback.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const (
	insertIfAbsentSQL = `
		INSERT INTO inventory_records (packaging_id, warehouse_id, quantity, created_at, updated_at)
		VALUES ($1, $2, 0, now(), now())
		ON CONFLICT (packaging_id, warehouse_id) DO NOTHING`
	selectForUpdateSQL = `
		SELECT packaging_id, warehouse_id, quantity, created_at, updated_at
		FROM inventory_records WHERE packaging_id = $1 AND warehouse_id = $2
		FOR UPDATE`
)

// GetOrCreate inserta el par en 0 si no existe y lee la fila bloqueándola (SELECT FOR UPDATE).
// Ambas sentencias viajan en un solo batch. Si otra tx está creando el mismo par, el INSERT espera
// su commit y el SELECT posterior ve la fila ya confirmada.
func (r *InventoryRepo) GetOrCreate(ctx context.Context, packagingID, warehouseID string) (*entity.InventoryRecord, error) {
	b := &pgx.Batch{}
	b.Queue(insertIfAbsentSQL, packagingID, warehouseID)
	b.Queue(selectForUpdateSQL, packagingID, warehouseID)

	br := r.q.SendBatch(ctx, b)
	var rec entity.InventoryRecord
	_, err := br.Exec()
	if err == nil {
		err = br.QueryRow().Scan(&rec.PackagingID, &rec.WarehouseID, &rec.Quantity, &rec.CreatedAt, &rec.UpdatedAt)
	}
	if cerr := br.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// La fila desapareció entre el INSERT y el SELECT: tratar como conflicto y reintentar.
			return nil, &domain.ConcurrencyConflictError{PackagingID: packagingID, WarehouseID: warehouseID, Err: err}
		}
		return nil, classify("get or create inventory record", err, packagingID, warehouseID)
	}
	return &rec, nil
}

// ApplyDeltas suma, por par, los signed_quantity de los ítems de la transacción en una sola sentencia.
// Las filas ya están bloqueadas por GetOrCreate dentro de la misma tx.
func (r *InventoryRepo) ApplyDeltas(ctx context.Context, transactionID string) error {
	query := `
		WITH d AS (
			SELECT packaging_id, warehouse_id, SUM(signed_quantity) AS delta
			FROM transaction_items
			WHERE transaction_id = $1
			GROUP BY packaging_id, warehouse_id
		), u AS (
			UPDATE inventory_records r
			SET quantity = r.quantity + d.delta, updated_at = now()
			FROM d
			WHERE r.packaging_id = d.packaging_id AND r.warehouse_id = d.warehouse_id
			RETURNING 1
		)
		SELECT (SELECT count(*) FROM d), (SELECT count(*) FROM u)`
	var pairs, updated int64
	if err := r.q.QueryRow(ctx, query, transactionID).Scan(&pairs, &updated); err != nil {
		return classify("apply deltas", err, "", "")
	}
	if pairs != updated {
		return &domain.PersistenceError{
			Op:  "apply deltas",
			Err: fmt.Errorf("transacción %s: %d pares con ítems, %d registros actualizados", transactionID, pairs, updated),
		}
	}
	return nil
}

// Get obtiene el registro sin bloquear; un par inexistente se devuelve en 0.
func (r *InventoryRepo) Get(ctx context.Context, packagingID, warehouseID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT packaging_id, warehouse_id, quantity, created_at, updated_at
		FROM inventory_records WHERE packaging_id = $1 AND warehouse_id = $2`
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, query, packagingID, warehouseID).Scan(
		&rec.PackagingID, &rec.WarehouseID, &rec.Quantity, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryRecord{PackagingID: packagingID, WarehouseID: warehouseID}, nil
		}
		return nil, classify("get inventory record", err, packagingID, warehouseID)
	}
	return &rec, nil
}

// ListByWarehouse lista existencias de una bodega con paginación.
func (r *InventoryRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT packaging_id, warehouse_id, quantity, created_at, updated_at
		FROM inventory_records WHERE warehouse_id = $1
		ORDER BY packaging_id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, classify("list inventory records", err, "", warehouseID)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.PackagingID, &rec.WarehouseID, &rec.Quantity, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list inventory records", err, "", warehouseID)
	}
	return list, nil
}
