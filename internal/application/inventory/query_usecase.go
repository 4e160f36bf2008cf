package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/packaging-ledger/internal/application/dto"
	"github.com/jhoicas/packaging-ledger/internal/domain"
	"github.com/jhoicas/packaging-ledger/internal/domain/entity"
	"github.com/jhoicas/packaging-ledger/internal/domain/repository"
)

// QueryUseCase consultas de solo lectura sobre el ledger y las existencias.
type QueryUseCase struct {
	ledger        repository.TransactionLedger
	inventoryRepo repository.InventoryRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(ledger repository.TransactionLedger, inventoryRepo repository.InventoryRepository) *QueryUseCase {
	return &QueryUseCase{ledger: ledger, inventoryRepo: inventoryRepo}
}

// ListTransactionsInput filtros opcionales; los vacíos no se aplican.
type ListTransactionsInput struct {
	Type        string
	Status      string
	WarehouseID string
	PackagingID string
	From        *time.Time
	To          *time.Time
	Page        dto.PageRequest
}

// GetTransaction devuelve una transacción con sus ítems.
func (uc *QueryUseCase) GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	tx, err := uc.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, &domain.ReferenceNotFoundError{Kind: domain.ReferenceTransaction, ID: id}
	}
	out := ToTransactionResponse(tx)
	return &out, nil
}

// ListTransactions arma los predicados tipados a partir de los filtros presentes.
func (uc *QueryUseCase) ListTransactions(ctx context.Context, in ListTransactionsInput) (*dto.TransactionListResponse, error) {
	filter, err := BuildFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.ledger.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.TransactionListResponse{
		Items: make([]dto.TransactionResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}
	for _, tx := range list {
		out.Items = append(out.Items, ToTransactionResponse(tx))
	}
	return out, nil
}

// BuildFilter traduce los filtros de entrada en predicados del repositorio.
func BuildFilter(in ListTransactionsInput) (repository.TransactionFilter, error) {
	in.Page.DefaultPage()
	filter := repository.TransactionFilter{Limit: in.Page.Limit, Offset: in.Page.Offset}
	if in.Type != "" {
		t := entity.TransactionType(in.Type)
		if !t.Valid() {
			return filter, &domain.InvalidRequestError{Field: "type", Reason: "filtro inválido"}
		}
		filter.Predicates = append(filter.Predicates, repository.TypeIs{Type: t})
	}
	if in.Status != "" {
		s := entity.TransactionStatus(in.Status)
		if !s.Valid() {
			return filter, &domain.InvalidRequestError{Field: "status", Reason: "filtro inválido"}
		}
		filter.Predicates = append(filter.Predicates, repository.StatusIs{Status: s})
	}
	if in.WarehouseID != "" {
		filter.Predicates = append(filter.Predicates, repository.TouchesWarehouse{WarehouseID: in.WarehouseID})
	}
	if in.PackagingID != "" {
		filter.Predicates = append(filter.Predicates, repository.HasPackaging{PackagingID: in.PackagingID})
	}
	if in.From != nil || in.To != nil {
		if in.From != nil && in.To != nil && in.To.Before(*in.From) {
			return filter, &domain.InvalidRequestError{Field: "to", Reason: "anterior a from"}
		}
		filter.Predicates = append(filter.Predicates, repository.DateBetween{From: in.From, To: in.To})
	}
	return filter, nil
}

// GetStock devuelve la cantidad disponible del par; un par sin registro vale 0.
func (uc *QueryUseCase) GetStock(ctx context.Context, packagingID, warehouseID string) (*dto.StockResponse, error) {
	if packagingID == "" || warehouseID == "" {
		return nil, &domain.InvalidRequestError{Reason: "packaging_id y warehouse_id son requeridos"}
	}
	rec, err := uc.inventoryRepo.Get(ctx, packagingID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &dto.StockResponse{
		PackagingID: rec.PackagingID,
		WarehouseID: rec.WarehouseID,
		Quantity:    rec.Quantity,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}

// ListStockByWarehouse lista las existencias de una bodega.
func (uc *QueryUseCase) ListStockByWarehouse(ctx context.Context, warehouseID string, page dto.PageRequest) (*dto.StockListResponse, error) {
	page.DefaultPage()
	list, err := uc.inventoryRepo.ListByWarehouse(ctx, warehouseID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.StockListResponse{
		Items: make([]dto.StockResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, rec := range list {
		out.Items = append(out.Items, dto.StockResponse{
			PackagingID: rec.PackagingID,
			WarehouseID: rec.WarehouseID,
			Quantity:    rec.Quantity,
			UpdatedAt:   rec.UpdatedAt,
		})
	}
	return out, nil
}
