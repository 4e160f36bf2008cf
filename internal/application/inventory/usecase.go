package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/packaging-ledger/internal/application/dto"
	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
)

// SubmitTransactionFromRequest adapta el request HTTP al caso de uso SubmitTransaction(ctx, SubmitTransactionInput).
// actorID viene de la identidad autenticada (middleware), nunca del body.
func (uc *SubmitTransactionUseCase) SubmitTransactionFromRequest(ctx context.Context, actorID string, in dto.SubmitTransactionRequest) (*dto.TransactionResponse, error) {
	input, err := InputFromRequest(actorID, in)
	if err != nil {
		return nil, err
	}
	tx, err := uc.SubmitTransaction(ctx, input)
	if err != nil {
		return nil, err
	}
	out := ToTransactionResponse(tx)
	return &out, nil
}

// InputFromRequest convierte el body JSON en la entrada tipada del caso de uso.
func InputFromRequest(actorID string, in dto.SubmitTransactionRequest) (SubmitTransactionInput, error) {
	input := SubmitTransactionInput{
		ActorID:         actorID,
		Type:            entity.TransactionType(strings.ToUpper(strings.TrimSpace(in.Type))),
		FromWarehouseID: strings.TrimSpace(in.FromWarehouseID),
		ToWarehouseID:   strings.TrimSpace(in.ToWarehouseID),
		Note:            in.Note,
		Status:          entity.TransactionStatus(strings.ToUpper(strings.TrimSpace(in.Status))),
		Items:           make([]ItemInput, 0, len(in.Items)),
	}
	if in.TransactionDate != "" {
		d, err := time.Parse(time.RFC3339, in.TransactionDate)
		if err != nil {
			return SubmitTransactionInput{}, &domain.InvalidRequestError{Field: "transaction_date", Reason: "formato ISO-8601 inválido"}
		}
		input.TransactionDate = d.UTC()
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, ItemInput{
			PackagingID: strings.TrimSpace(it.PackagingID),
			Quantity:    it.Quantity,
		})
	}
	return input, nil
}

// ToTransactionResponse mapea la entidad a la salida HTTP.
func ToTransactionResponse(tx *entity.Transaction) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:              tx.ID,
		Type:            string(tx.Type),
		FromWarehouseID: tx.FromWarehouseID,
		ToWarehouseID:   tx.ToWarehouseID,
		Note:            tx.Note,
		TransactionDate: tx.TransactionDate,
		Status:          string(tx.Status),
		CreatedBy:       tx.CreatedBy,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
		Items:           make([]dto.TransactionItemResponse, 0, len(tx.Items)),
	}
	for _, it := range tx.Items {
		out.Items = append(out.Items, dto.TransactionItemResponse{
			ID:             it.ID,
			PackagingID:    it.PackagingID,
			WarehouseID:    it.WarehouseID,
			Quantity:       it.Quantity,
			SignedQuantity: it.SignedQuantity,
		})
	}
	return out
}
