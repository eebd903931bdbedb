package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/invlabs/stock-ledger-api/internal/application/dto"
	"github.com/invlabs/stock-ledger-api/internal/application/reservation"
)

// ReservationHandler handles reservation HTTP requests.
type ReservationHandler struct {
	uc *reservation.UseCase
}

// NewReservationHandler builds the handler.
func NewReservationHandler(uc *reservation.UseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Reserve places a hold against a ledger row for an order reference.
// Replaying the same order_ref returns the current snapshot without a second
// mutation, so callers can retry safely.
// POST /api/reservations
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}
	entry, err := h.uc.Reserve(c.Context(), reservation.ReserveInput{
		ProductID: in.ProductID,
		StoreID:   in.StoreID,
		Quantity:  in.Quantity,
		OrderRef:  in.OrderRef,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SnapshotFromEntry(entry))
}

// Get returns the reservation record for an order reference (audit lookup).
// GET /api/reservations/:orderRef
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	res, err := h.uc.GetReservation(c.Context(), c.Params("orderRef"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.ReservationFromEntity(res))
}

// Release returns held stock to available (order cancelled).
// POST /api/reservations/:orderRef/release
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	entry, err := h.uc.Release(c.Context(), c.Params("orderRef"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.SnapshotFromEntry(entry))
}

// Confirm permanently deducts held stock (order fulfilled).
// POST /api/reservations/:orderRef/confirm
func (h *ReservationHandler) Confirm(c *fiber.Ctx) error {
	entry, err := h.uc.Confirm(c.Context(), c.Params("orderRef"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.SnapshotFromEntry(entry))
}
