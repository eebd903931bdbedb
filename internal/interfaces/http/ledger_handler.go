package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/invlabs/stock-ledger-api/internal/application/dto"
	"github.com/invlabs/stock-ledger-api/internal/application/reservation"
	"github.com/invlabs/stock-ledger-api/internal/application/restock"
)

// defaultMinStockLevel applies when a create request omits min_stock_level.
const defaultMinStockLevel = 10

// LedgerHandler handles ledger entry HTTP requests.
type LedgerHandler struct {
	uc      *reservation.UseCase
	restock *restock.UseCase
}

// NewLedgerHandler builds the handler.
func NewLedgerHandler(uc *reservation.UseCase, restock *restock.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc, restock: restock}
}

// Create registers stock for a (product, store) pair.
// POST /api/ledger
func (h *LedgerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLedgerRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}
	minLevel := int64(defaultMinStockLevel)
	if in.MinStockLevel != nil {
		minLevel = *in.MinStockLevel
	}
	entry, err := h.uc.CreateLedger(c.Context(), in.ProductID, in.StoreID, in.InitialQuantity, minLevel)
	if err != nil {
		return domainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SnapshotFromEntry(entry))
}

// Get returns the current snapshot of one ledger row.
// GET /api/ledger/:productId/:storeId
func (h *LedgerHandler) Get(c *fiber.Ctx) error {
	entry, err := h.uc.GetLedger(c.Context(), c.Params("productId"), c.Params("storeId"))
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.SnapshotFromEntry(entry))
}

// AddStock adds quantity to a ledger row (restocking).
// POST /api/ledger/:productId/:storeId/stock
func (h *LedgerHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return respond(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
	}
	entry, err := h.uc.AddStock(c.Context(), c.Params("productId"), c.Params("storeId"), in.Quantity)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(dto.SnapshotFromEntry(entry))
}

// ListRestockNeeded lists rows below their restock threshold.
// GET /api/ledger/restock-needed?store_id=
func (h *LedgerHandler) ListRestockNeeded(c *fiber.Ctx) error {
	entries, err := h.restock.ListRestockNeeded(c.Context(), c.Query("store_id"))
	if err != nil {
		return domainError(c, err)
	}
	snapshots := make([]dto.LedgerSnapshot, 0, len(entries))
	for _, e := range entries {
		snapshots = append(snapshots, dto.SnapshotFromEntry(e))
	}
	return c.JSON(fiber.Map{
		"total":   len(snapshots),
		"entries": snapshots,
	})
}
