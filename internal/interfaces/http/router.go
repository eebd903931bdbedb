package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/invlabs/stock-ledger-api/internal/application/reservation"
	"github.com/invlabs/stock-ledger-api/internal/application/restock"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	ReservationUC *reservation.UseCase
	RestockUC     *restock.UseCase
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	ledgerHandler := NewLedgerHandler(deps.ReservationUC, deps.RestockUC)
	ledgers := api.Group("/ledger")
	ledgers.Post("/", ledgerHandler.Create)
	// Registered before the param routes so "restock-needed" is not read as a productId.
	ledgers.Get("/restock-needed", ledgerHandler.ListRestockNeeded)
	ledgers.Get("/:productId/:storeId", ledgerHandler.Get)
	ledgers.Post("/:productId/:storeId/stock", ledgerHandler.AddStock)

	reservationHandler := NewReservationHandler(deps.ReservationUC)
	reservations := api.Group("/reservations")
	reservations.Post("/", reservationHandler.Reserve)
	reservations.Get("/:orderRef", reservationHandler.Get)
	reservations.Post("/:orderRef/release", reservationHandler.Release)
	reservations.Post("/:orderRef/confirm", reservationHandler.Confirm)
}
