package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/packaging-ledger/internal/domain/inventory"
	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
	"github.com/jhoicas/packaging-ledger/pkg/logger"
)

var tracer = otel.Tracer("github.com/jhoicas/packaging-ledger/internal/application/inventory")

// SubmitTransactionInput entrada ya tipada para registrar una transacción.
// ToWarehouseID solo aplica a TRANSFER. Status vacío equivale a DRAFT y
// TransactionDate en cero equivale al momento de la llamada.
type SubmitTransactionInput struct {
	ActorID         string
	Type            entity.TransactionType
	FromWarehouseID string
	ToWarehouseID   string
	Note            string
	TransactionDate time.Time
	Status          entity.TransactionStatus
	Items           []ItemInput
}

// ItemInput línea enviada por el llamador: magnitud siempre positiva.
type ItemInput struct {
	PackagingID string
	Quantity    int64
}

// SubmitTransactionUseCase registra transacciones de inventario de forma atómica:
// valida, bloquea los pares afectados (SELECT FOR UPDATE), verifica suficiencia,
// persiste cabecera e ítems y, si el estado es COMPLETED, aplica los deltas.
type SubmitTransactionUseCase struct {
	txRunner  TxRunner
	validator *TransactionValidator
	log       *logger.Logger
	now       func() time.Time
}

// NewSubmitTransactionUseCase construye el caso de uso.
func NewSubmitTransactionUseCase(txRunner TxRunner, validator *TransactionValidator, log *logger.Logger) *SubmitTransactionUseCase {
	return &SubmitTransactionUseCase{
		txRunner:  txRunner,
		validator: validator,
		log:       log,
		now:       time.Now,
	}
}

// SubmitTransaction es el punto de entrada del ledger. Devuelve la transacción persistida con sus
// ítems expandidos o un error tipado de domain. Nunca deja efectos parciales.
func (uc *SubmitTransactionUseCase) SubmitTransaction(ctx context.Context, in SubmitTransactionInput) (*entity.Transaction, error) {
	in = uc.withDefaults(in)

	ctx, span := tracer.Start(ctx, "inventory.SubmitTransaction", trace.WithAttributes(
		attribute.String("transaction.type", string(in.Type)),
		attribute.String("transaction.status", string(in.Status)),
		attribute.Int("transaction.lines", len(in.Items)),
	))
	defer span.End()

	if err := uc.validator.Validate(ctx, in); err != nil {
		return nil, uc.reject(span, in, err)
	}

	var created *entity.Transaction
	err := uc.txRunner.Run(ctx, func(inventoryRepo repository.InventoryRepository, ledger repository.TransactionLedger) error {
		items, err := buildItems(ctx, inventoryRepo, in)
		if err != nil {
			return err
		}
		now := uc.now().UTC()
		header := &entity.Transaction{
			Type:            in.Type,
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Note:            in.Note,
			TransactionDate: in.TransactionDate,
			Status:          in.Status,
			CreatedBy:       in.ActorID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		tx, err := ledger.Insert(ctx, header, items)
		if err != nil {
			return err
		}
		// DRAFT y CREATED quedan en el ledger sin tocar cantidades.
		if tx.Status == entity.TransactionStatusCompleted {
			if err := inventoryRepo.ApplyDeltas(ctx, tx.ID); err != nil {
				return err
			}
		}
		created = tx
		return nil
	})
	if err != nil {
		return nil, uc.reject(span, in, typed(err))
	}

	span.SetAttributes(attribute.String("transaction.id", created.ID))
	uc.log.Info().
		Str("transaction_id", created.ID).
		Str("type", string(created.Type)).
		Str("status", string(created.Status)).
		Int("items", len(created.Items)).
		Str("actor", in.ActorID).
		Msg("transacción registrada")
	return created, nil
}

func (uc *SubmitTransactionUseCase) withDefaults(in SubmitTransactionInput) SubmitTransactionInput {
	if in.Status == "" {
		in.Status = entity.TransactionStatusDraft
	}
	if in.TransactionDate.IsZero() {
		in.TransactionDate = uc.now().UTC()
	}
	return in
}

func (uc *SubmitTransactionUseCase) reject(span trace.Span, in SubmitTransactionInput, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	ev := uc.log.Warn()
	if errors.Is(err, domain.ErrPersistence) {
		ev = uc.log.Error()
	}
	ev.Err(err).
		Str("type", string(in.Type)).
		Str("status", string(in.Status)).
		Str("from_warehouse_id", in.FromWarehouseID).
		Bool("retryable", domain.IsRetryable(err)).
		Msg("transacción rechazada")
	return err
}

// buildItems bloquea todos los pares en orden determinista y luego recorre las líneas en el orden
// recibido, llevando un saldo por par: dos líneas sobre el mismo par ven el efecto de la anterior.
func buildItems(ctx context.Context, inventoryRepo repository.InventoryRepository, in SubmitTransactionInput) ([]entity.TransactionItem, error) {
	legsByLine := make([][]domaininv.Leg, len(in.Items))
	seen := make(map[domaininv.Pair]struct{})
	var pairs []domaininv.Pair
	for i, it := range in.Items {
		legs := domaininv.Legs(in.Type, in.FromWarehouseID, in.ToWarehouseID, it.PackagingID, it.Quantity)
		legsByLine[i] = legs
		for _, leg := range legs {
			if _, ok := seen[leg.Pair]; ok {
				continue
			}
			seen[leg.Pair] = struct{}{}
			pairs = append(pairs, leg.Pair)
		}
	}
	domaininv.SortPairs(pairs)

	balance := make(map[domaininv.Pair]int64, len(pairs))
	for _, p := range pairs {
		rec, err := inventoryRepo.GetOrCreate(ctx, p.PackagingID, p.WarehouseID)
		if err != nil {
			return nil, err
		}
		balance[p] = rec.Quantity
	}

	items := make([]entity.TransactionItem, 0, len(pairs))
	for i, legs := range legsByLine {
		for _, leg := range legs {
			current := balance[leg.Pair]
			if err := domaininv.CheckSufficiency(in.Type, leg, current); err != nil {
				return nil, err
			}
			delta, next, ok := domaininv.NextBalance(in.Type, leg, current)
			if !ok {
				return nil, &domain.InvalidRequestError{
					Field:  itemField(i, "quantity"),
					Reason: fmt.Sprintf("desborda el saldo de %s en %s", leg.PackagingID, leg.WarehouseID),
				}
			}
			balance[leg.Pair] = next
			items = append(items, entity.TransactionItem{
				PackagingID:    leg.PackagingID,
				WarehouseID:    leg.WarehouseID,
				Quantity:       leg.Quantity,
				SignedQuantity: delta,
			})
		}
	}
	return items, nil
}

// typed garantiza que todo error que sale del caso de uso pertenezca a la taxonomía de domain.
func typed(err error) error {
	var (
		invalid  *domain.InvalidRequestError
		notFound *domain.ReferenceNotFoundError
		stock    *domain.InsufficientStockError
		conflict *domain.ConcurrencyConflictError
		timeout  *domain.LockTimeoutError
		persist  *domain.PersistenceError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &notFound), errors.As(err, &stock),
		errors.As(err, &conflict), errors.As(err, &timeout), errors.As(err, &persist):
		return err
	}
	return &domain.PersistenceError{Op: "submit transaction", Err: err}
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}
