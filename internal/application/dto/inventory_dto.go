package dto

import "time"

// SubmitTransactionRequest body para POST /api/inventory/transactions.
// to_warehouse_id solo para TRANSFER; transaction_date en ISO-8601 (RFC 3339).
type SubmitTransactionRequest struct {
	Type            string                   `json:"type"`
	FromWarehouseID string                   `json:"from_warehouse_id"`
	ToWarehouseID   string                   `json:"to_warehouse_id,omitempty"`
	Note            string                   `json:"note"`
	TransactionDate string                   `json:"transaction_date"`
	Status          string                   `json:"status,omitempty"`
	Items           []TransactionItemRequest `json:"items"`
}

// TransactionItemRequest línea de la solicitud.
type TransactionItemRequest struct {
	PackagingID string `json:"packaging_id"`
	Quantity    int64  `json:"quantity"`
}

// TransactionResponse salida de una transacción persistida con sus ítems expandidos.
type TransactionResponse struct {
	ID              string                    `json:"id"`
	Type            string                    `json:"type"`
	FromWarehouseID string                    `json:"from_warehouse_id"`
	ToWarehouseID   string                    `json:"to_warehouse_id,omitempty"`
	Note            string                    `json:"note"`
	TransactionDate time.Time                 `json:"transaction_date"`
	Status          string                    `json:"status"`
	CreatedBy       string                    `json:"created_by"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
	Items           []TransactionItemResponse `json:"items"`
}

// TransactionItemResponse ítem persistido (warehouse_id y signed_quantity incluidos).
type TransactionItemResponse struct {
	ID             string `json:"id"`
	PackagingID    string `json:"packaging_id"`
	WarehouseID    string `json:"warehouse_id"`
	Quantity       int64  `json:"quantity"`
	SignedQuantity int64  `json:"signed_quantity"`
}

// TransactionListResponse lista paginada de transacciones.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StockResponse cantidad disponible de un empaque en una bodega.
type StockResponse struct {
	PackagingID string    `json:"packaging_id"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// StockListResponse lista paginada de existencias de una bodega.
type StockListResponse struct {
	Items []StockResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// ReplayReportResponse comparación entre la cantidad almacenada y la reconstruida desde el ledger.
type ReplayReportResponse struct {
	PackagingID string `json:"packaging_id"`
	WarehouseID string `json:"warehouse_id"`
	Stored      int64  `json:"stored"`
	Replayed    int64  `json:"replayed"`
	Drift       int64  `json:"drift"`
	Consistent  bool   `json:"consistent"`
}
