package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Submitter TransactionSubmitter
	Queries   LedgerQueries
	Verifier  LedgerVerifier
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invGroup := protected.Group("/inventory")
	h := NewInventoryHandler(deps.Submitter, deps.Queries, deps.Verifier)
	invGroup.Post("/transactions", h.SubmitTransaction)
	invGroup.Get("/transactions", h.ListTransactions)
	invGroup.Get("/transactions/:id", h.GetTransaction)
	invGroup.Get("/stock", h.GetStock)
	invGroup.Get("/stock/verify", h.VerifyStock)
	invGroup.Get("/warehouses/:id/stock", h.ListStock)
}
