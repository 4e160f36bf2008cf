package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
)

var _ repository.TransactionLedger = (*TransactionLedgerRepo)(nil)

// TransactionLedgerRepo implementación append-only sobre PostgreSQL (usable con pool o tx).
type TransactionLedgerRepo struct {
	q Querier
}

// NewTransactionLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionLedgerRepository(q Querier) *TransactionLedgerRepo {
	return &TransactionLedgerRepo{q: q}
}

const headerColumns = `t.id, t.type, t.from_warehouse_id, COALESCE(t.to_warehouse_id, ''), t.note,
	t.transaction_date, t.status, t.created_by, t.created_at, t.updated_at`

// Insert persiste cabecera e ítems en un solo batch; los ítems referencian el id generado.
// Debe llamarse dentro de la tx de TxRunner para que sea todo o nada.
func (r *TransactionLedgerRepo) Insert(ctx context.Context, header *entity.Transaction, items []entity.TransactionItem) (*entity.Transaction, error) {
	tx := *header
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	var toWarehouse *string
	if tx.ToWarehouseID != "" {
		toWarehouse = &tx.ToWarehouseID
	}

	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO transactions (id, type, from_warehouse_id, to_warehouse_id, note, transaction_date, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tx.ID, string(tx.Type), tx.FromWarehouseID, toWarehouse, tx.Note,
		tx.TransactionDate, string(tx.Status), tx.CreatedBy, tx.CreatedAt, tx.UpdatedAt,
	)
	tx.Items = make([]entity.TransactionItem, len(items))
	for i, it := range items {
		it.TransactionID = tx.ID
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		b.Queue(`
			INSERT INTO transaction_items (id, transaction_id, line_no, packaging_id, warehouse_id, quantity, signed_quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.TransactionID, i+1, it.PackagingID, it.WarehouseID, it.Quantity, it.SignedQuantity,
		)
		tx.Items[i] = it
	}

	br := r.q.SendBatch(ctx, b)
	var err error
	for i := 0; i < b.Len() && err == nil; i++ {
		_, err = br.Exec()
	}
	if cerr := br.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, classify("insert transaction", err, "", "")
	}
	return &tx, nil
}

// GetByID obtiene una transacción con sus ítems; nil si no existe.
func (r *TransactionLedgerRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	query := `SELECT ` + headerColumns + ` FROM transactions t WHERE t.id = $1`
	tx, err := scanHeader(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify("get transaction", err, "", "")
	}
	byID, err := r.itemsFor(ctx, []string{tx.ID})
	if err != nil {
		return nil, err
	}
	tx.Items = byID[tx.ID]
	return tx, nil
}

// List devuelve transacciones que cumplen todos los predicados, con sus ítems.
func (r *TransactionLedgerRepo) List(ctx context.Context, filter repository.TransactionFilter) ([]*entity.Transaction, error) {
	where, args, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `SELECT `+headerColumns+` FROM transactions t`+where, args...)
	if err != nil {
		return nil, classify("list transactions", err, "", "")
	}
	defer rows.Close()
	var (
		list []*entity.Transaction
		ids  []string
	)
	for rows.Next() {
		tx, err := scanHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, tx)
		ids = append(ids, tx.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list transactions", err, "", "")
	}
	if len(ids) == 0 {
		return list, nil
	}
	byID, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, tx := range list {
		tx.Items = byID[tx.ID]
	}
	return list, nil
}

// CompletedItems ítems de transacciones COMPLETED para un par, en orden de aplicación.
func (r *TransactionLedgerRepo) CompletedItems(ctx context.Context, packagingID, warehouseID string) ([]entity.TransactionItem, error) {
	query := `
		SELECT i.id, i.transaction_id, i.packaging_id, i.warehouse_id, i.quantity, i.signed_quantity
		FROM transaction_items i
		JOIN transactions t ON t.id = i.transaction_id
		WHERE t.status = 'COMPLETED' AND i.packaging_id = $1 AND i.warehouse_id = $2
		ORDER BY t.created_at, i.transaction_id, i.line_no`
	rows, err := r.q.Query(ctx, query, packagingID, warehouseID)
	if err != nil {
		return nil, classify("list completed items", err, packagingID, warehouseID)
	}
	defer rows.Close()
	var items []entity.TransactionItem
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.PackagingID, &it.WarehouseID, &it.Quantity, &it.SignedQuantity); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list completed items", err, packagingID, warehouseID)
	}
	return items, nil
}

func (r *TransactionLedgerRepo) itemsFor(ctx context.Context, ids []string) (map[string][]entity.TransactionItem, error) {
	query := `
		SELECT id, transaction_id, packaging_id, warehouse_id, quantity, signed_quantity
		FROM transaction_items WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, line_no`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, classify("list transaction items", err, "", "")
	}
	defer rows.Close()
	out := make(map[string][]entity.TransactionItem, len(ids))
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.PackagingID, &it.WarehouseID, &it.Quantity, &it.SignedQuantity); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		out[it.TransactionID] = append(out[it.TransactionID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list transaction items", err, "", "")
	}
	return out, nil
}

func scanHeader(row pgx.Row) (*entity.Transaction, error) {
	var (
		tx       entity.Transaction
		txType   string
		txStatus string
	)
	if err := row.Scan(&tx.ID, &txType, &tx.FromWarehouseID, &tx.ToWarehouseID, &tx.Note,
		&tx.TransactionDate, &txStatus, &tx.CreatedBy, &tx.CreatedAt, &tx.UpdatedAt); err != nil {
		return nil, err
	}
	tx.Type = entity.TransactionType(txType)
	tx.Status = entity.TransactionStatus(txStatus)
	return &tx, nil
}
