package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/invlabs/stock-ledger-api/internal/application/dto"
	"github.com/invlabs/stock-ledger-api/internal/domain"
)

// domainError maps a domain sentinel to its HTTP status and stable API code.
// LOCK_TIMEOUT comes back as 503 because the operation did not apply and is
// safe to retry with backoff; the conflict-class business errors (409) are
// terminal and must not be retried.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return respond(c, fiber.StatusBadRequest, "INVALID_INPUT", "missing or malformed fields")
	case errors.Is(err, domain.ErrInvalidQuantity):
		return respond(c, fiber.StatusBadRequest, "INVALID_QUANTITY", "quantity must be a positive integer")
	case errors.Is(err, domain.ErrLedgerNotFound):
		return respond(c, fiber.StatusNotFound, "LEDGER_NOT_FOUND", "no ledger entry for product and store")
	case errors.Is(err, domain.ErrReservationNotFound):
		return respond(c, fiber.StatusNotFound, "RESERVATION_NOT_FOUND", "no reservation for order reference")
	case errors.Is(err, domain.ErrAlreadyExists):
		return respond(c, fiber.StatusConflict, "ALREADY_EXISTS", "ledger entry already exists")
	case errors.Is(err, domain.ErrInsufficientStock):
		return respond(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", "not enough available stock")
	case errors.Is(err, domain.ErrOverRelease):
		return respond(c, fiber.StatusConflict, "OVER_RELEASE", "release exceeds reserved stock")
	case errors.Is(err, domain.ErrOverConfirm):
		return respond(c, fiber.StatusConflict, "OVER_CONFIRM", "confirm exceeds reserved stock")
	case errors.Is(err, domain.ErrLockTimeout):
		return respond(c, fiber.StatusServiceUnavailable, "LOCK_TIMEOUT", "ledger row is busy, retry with backoff")
	default:
		return respond(c, fiber.StatusInternalServerError, "INTERNAL", err.Error())
	}
}

func respond(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}
