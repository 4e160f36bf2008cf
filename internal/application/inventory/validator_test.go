package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/packaging-ledger/internal/application/inventory"
	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
)

func validInput() inventory.SubmitTransactionInput {
	return inventory.SubmitTransactionInput{
		ActorID:         actor,
		Type:            entity.TransactionTypeExport,
		FromWarehouseID: w1,
		Status:          entity.TransactionStatusCompleted,
		Items:           []inventory.ItemInput{item(p1, 2)},
	}
}

func TestValidate_Forma(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*inventory.SubmitTransactionInput)
		field  string
	}{
		{"sin actor", func(in *inventory.SubmitTransactionInput) { in.ActorID = "" }, "actor"},
		{"tipo desconocido", func(in *inventory.SubmitTransactionInput) { in.Type = "RETURN" }, "type"},
		{"estado desconocido", func(in *inventory.SubmitTransactionInput) { in.Status = "CANCELLED" }, "status"},
		{"sin bodega origen", func(in *inventory.SubmitTransactionInput) { in.FromWarehouseID = "" }, "from_warehouse_id"},
		{"traslado sin destino", func(in *inventory.SubmitTransactionInput) {
			in.Type = entity.TransactionTypeTransfer
		}, "to_warehouse_id"},
		{"traslado a la misma bodega", func(in *inventory.SubmitTransactionInput) {
			in.Type = entity.TransactionTypeTransfer
			in.ToWarehouseID = w1
		}, "to_warehouse_id"},
		{"destino fuera de traslado", func(in *inventory.SubmitTransactionInput) { in.ToWarehouseID = w2 }, "to_warehouse_id"},
		{"sin ítems", func(in *inventory.SubmitTransactionInput) { in.Items = nil }, "items"},
		{"ítem sin empaque", func(in *inventory.SubmitTransactionInput) {
			in.Items = append(in.Items, item("", 1))
		}, "items[1].packaging_id"},
		{"cantidad cero", func(in *inventory.SubmitTransactionInput) { in.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"cantidad negativa", func(in *inventory.SubmitTransactionInput) { in.Items[0].Quantity = -3 }, "items[0].quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore([]string{w1, w2}, []string{p1})
			v := inventory.NewTransactionValidator(warehouseLookup{store}, packagingLookup{store})
			in := validInput()
			tt.mutate(&in)

			err := v.Validate(context.Background(), in)

			var ir *domain.InvalidRequestError
			require.ErrorAs(t, err, &ir)
			assert.Equal(t, tt.field, ir.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.False(t, domain.IsRetryable(err))
		})
	}
}

func TestValidate_Referencias(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*inventory.SubmitTransactionInput)
		kind   string
		id     string
	}{
		{"bodega origen inexistente", func(in *inventory.SubmitTransactionInput) { in.FromWarehouseID = "W9" }, domain.ReferenceWarehouse, "W9"},
		{"bodega destino inexistente", func(in *inventory.SubmitTransactionInput) {
			in.Type = entity.TransactionTypeTransfer
			in.ToWarehouseID = "W9"
		}, domain.ReferenceWarehouse, "W9"},
		{"empaque inexistente", func(in *inventory.SubmitTransactionInput) {
			in.Items = append(in.Items, item("P9", 1))
		}, domain.ReferencePackaging, "P9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore([]string{w1, w2}, []string{p1})
			v := inventory.NewTransactionValidator(warehouseLookup{store}, packagingLookup{store})
			in := validInput()
			tt.mutate(&in)

			err := v.Validate(context.Background(), in)

			var nf *domain.ReferenceNotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.kind, nf.Kind)
			assert.Equal(t, tt.id, nf.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestValidate_Valida(t *testing.T) {
	store := newMemStore([]string{w1, w2}, []string{p1, p2})
	v := inventory.NewTransactionValidator(warehouseLookup{store}, packagingLookup{store})

	in := validInput()
	in.Type = entity.TransactionTypeTransfer
	in.ToWarehouseID = w2
	in.Items = []inventory.ItemInput{item(p1, 1), item(p2, 4), item(p1, 3)}

	assert.NoError(t, v.Validate(context.Background(), in))
}

func TestValidate_FallaDeConsulta_EsPersistencia(t *testing.T) {
	store := newMemStore([]string{w1}, []string{p1})
	store.lookupErr = errors.New("pool cerrado")
	v := inventory.NewTransactionValidator(warehouseLookup{store}, packagingLookup{store})

	err := v.Validate(context.Background(), validInput())

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "lookup warehouse W1", perr.Op)
	assert.True(t, domain.IsRetryable(err))
}

func TestValidate_ErrorTipadoDeConsulta_PasaSinEnvolver(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"bloqueo", &domain.LockTimeoutError{Err: errors.New("55P03")}, true},
		{"persistencia agotada", &domain.PersistenceError{Op: "lookup warehouse W1", Err: errors.New("eof"), Fatal: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore([]string{w1}, []string{p1})
			store.lookupErr = tt.err
			v := inventory.NewTransactionValidator(warehouseLookup{store}, packagingLookup{store})

			err := v.Validate(context.Background(), validInput())

			assert.Same(t, tt.err, err)
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
		})
	}
}
