package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/packaging-ledger/internal/application/dto"
	"github.com/jhoicas/packaging-ledger/internal/domain"
)

// writeError traduce los errores tipados del ledger a códigos HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var (
		invalid  *domain.InvalidRequestError
		notFound *domain.ReferenceNotFoundError
		stock    *domain.InsufficientStockError
		conflict *domain.ConcurrencyConflictError
		timeout  *domain.LockTimeoutError
	)
	switch {
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: invalid.Error()})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound.Error()})
	case errors.As(err, &stock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stock.Error()})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "conflicto de concurrencia, reintente", Retryable: true})
	case errors.As(err, &timeout):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "inventario ocupado, reintente", Retryable: true})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno", Retryable: domain.IsRetryable(err)})
}
