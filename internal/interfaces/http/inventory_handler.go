package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/packaging-ledger/internal/application/dto"
	"github.com/jhoicas/packaging-ledger/internal/application/inventory"
	"github.com/jhoicas/packaging-ledger/internal/domain"
)

// TransactionSubmitter caso de uso de registro (inventory.SubmitTransactionUseCase).
type TransactionSubmitter interface {
	SubmitTransactionFromRequest(ctx context.Context, actorID string, in dto.SubmitTransactionRequest) (*dto.TransactionResponse, error)
}

// LedgerQueries consultas del ledger (inventory.QueryUseCase).
type LedgerQueries interface {
	GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error)
	ListTransactions(ctx context.Context, in inventory.ListTransactionsInput) (*dto.TransactionListResponse, error)
	GetStock(ctx context.Context, packagingID, warehouseID string) (*dto.StockResponse, error)
	ListStockByWarehouse(ctx context.Context, warehouseID string, page dto.PageRequest) (*dto.StockListResponse, error)
}

// LedgerVerifier reconstrucción desde el ledger (inventory.ReplayUseCase).
type LedgerVerifier interface {
	Verify(ctx context.Context, packagingID, warehouseID string) (*dto.ReplayReportResponse, error)
}

// InventoryHandler maneja las peticiones HTTP del ledger de inventario (protegido).
type InventoryHandler struct {
	submitter TransactionSubmitter
	queries   LedgerQueries
	verifier  LedgerVerifier
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(submitter TransactionSubmitter, queries LedgerQueries, verifier LedgerVerifier) *InventoryHandler {
	return &InventoryHandler{submitter: submitter, queries: queries, verifier: verifier}
}

// SubmitTransaction godoc
// @Summary      Registrar transacción de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitTransactionRequest  true  "type, from_warehouse_id (to_warehouse_id en TRANSFER), status, items"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [post]
func (h *InventoryHandler) SubmitTransaction(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SubmitTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.submitter.SubmitTransactionFromRequest(c.UserContext(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetTransaction godoc
// @Summary      Obtener transacción por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id} [get]
func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.queries.GetTransaction(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTransactions godoc
// @Summary      Listar transacciones
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        type          query  string  false  "IMPORT | EXPORT | ADJUST | TRANSFER"
// @Param        status        query  string  false  "DRAFT | CREATED | COMPLETED"
// @Param        warehouse_id  query  string  false  "Bodega origen o destino"
// @Param        packaging_id  query  string  false  "Empaque"
// @Param        from          query  string  false  "Fecha inicial (RFC 3339)"
// @Param        to            query  string  false  "Fecha final (RFC 3339)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	in := inventory.ListTransactionsInput{
		Type:        c.Query("type"),
		Status:      c.Query("status"),
		WarehouseID: c.Query("warehouse_id"),
		PackagingID: c.Query("packaging_id"),
		Page:        dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)},
	}
	var err error
	if in.From, err = queryTime(c, "from"); err != nil {
		return writeError(c, err)
	}
	if in.To, err = queryTime(c, "to"); err != nil {
		return writeError(c, err)
	}
	out, err := h.queries.ListTransactions(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Existencia de un empaque en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        packaging_id  query  string  true  "Empaque"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.queries.GetStock(c.UserContext(), c.Query("packaging_id"), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListStock godoc
// @Summary      Existencias de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la bodega"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.StockListResponse
// @Router       /api/inventory/warehouses/{id}/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.queries.ListStockByWarehouse(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// VerifyStock godoc
// @Summary      Comparar existencia contra el ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        packaging_id  query  string  true  "Empaque"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.ReplayReportResponse
// @Router       /api/inventory/stock/verify [get]
func (h *InventoryHandler) VerifyStock(c *fiber.Ctx) error {
	packagingID, warehouseID := c.Query("packaging_id"), c.Query("warehouse_id")
	if packagingID == "" || warehouseID == "" {
		return writeError(c, &domain.InvalidRequestError{Reason: "packaging_id y warehouse_id son requeridos"})
	}
	out, err := h.verifier.Verify(c.UserContext(), packagingID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, &domain.InvalidRequestError{Field: key, Reason: "formato RFC 3339 inválido"}
	}
	return &t, nil
}
