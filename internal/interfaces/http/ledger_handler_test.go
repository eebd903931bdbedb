package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/invlabs/stock-ledger-api/internal/application/reservation"
	"github.com/invlabs/stock-ledger-api/internal/application/restock"
	httpRouter "github.com/invlabs/stock-ledger-api/internal/interfaces/http"
	"github.com/invlabs/stock-ledger-api/internal/infrastructure/memory"
	"github.com/invlabs/stock-ledger-api/pkg/logger"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore(time.Second)
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	reservationUC := reservation.NewUseCase(store, time.Hour, log)
	restockUC := restock.NewUseCase(store)

	app := fiber.New()
	httpRouter.Router(app, httpRouter.RouterDeps{
		ReservationUC: reservationUC,
		RestockUC:     restockUC,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func createLedger(t *testing.T, app *fiber.App, productID, storeID string, initial int64) {
	t.Helper()
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/ledger", fiber.Map{
		"product_id":       productID,
		"store_id":         storeID,
		"initial_quantity": initial,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestCreateLedger_ReturnsSnapshot(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/ledger", fiber.Map{
		"product_id":       "p1",
		"store_id":         "s1",
		"initial_quantity": 20,
		"min_stock_level":  5,
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(20), body["available_quantity"])
	assert.Equal(t, float64(0), body["reserved_quantity"])
	assert.Equal(t, float64(20), body["total_quantity"])
	assert.Equal(t, float64(5), body["min_stock_level"])
	assert.Equal(t, false, body["needs_restock"])
}

func TestCreateLedger_DuplicateConflict(t *testing.T) {
	app := newTestApp(t)
	createLedger(t, app, "p1", "s1", 20)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/ledger", fiber.Map{
		"product_id":       "p1",
		"store_id":         "s1",
		"initial_quantity": 1,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_EXISTS", body["code"])
}

func TestGetLedger_NotFound(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/ledger/ghost/s1", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "LEDGER_NOT_FOUND", body["code"])
}

func TestReserveFlow_OverHTTP(t *testing.T) {
	app := newTestApp(t)
	createLedger(t, app, "p1", "s1", 10)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/reservations", fiber.Map{
		"product_id": "p1",
		"store_id":   "s1",
		"quantity":   4,
		"order_ref":  "O1",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(6), body["available_quantity"])
	assert.Equal(t, float64(4), body["reserved_quantity"])

	// Audit lookup shows the hold.
	resp, body = doJSON(t, app, fiber.MethodGet, "/api/reservations/O1", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "HELD", body["status"])

	// Release restores availability.
	resp, body = doJSON(t, app, fiber.MethodPost, "/api/reservations/O1/release", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(10), body["available_quantity"])
	assert.Equal(t, float64(0), body["reserved_quantity"])
}

func TestReserve_InsufficientStockConflict(t *testing.T) {
	app := newTestApp(t)
	createLedger(t, app, "p1", "s1", 3)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/reservations", fiber.Map{
		"product_id": "p1",
		"store_id":   "s1",
		"quantity":   4,
		"order_ref":  "O1",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestReserve_InvalidQuantity(t *testing.T) {
	app := newTestApp(t)
	createLedger(t, app, "p1", "s1", 3)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/reservations", fiber.Map{
		"product_id": "p1",
		"store_id":   "s1",
		"quantity":   0,
		"order_ref":  "O1",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_QUANTITY", body["code"])
}

func TestConfirm_UnknownOrderRef(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/reservations/ghost/confirm", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RESERVATION_NOT_FOUND", body["code"])
}

func TestAddStockAndRestockList(t *testing.T) {
	app := newTestApp(t)
	createLedger(t, app, "p1", "s1", 2) // min_stock_level defaults to 10

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/ledger/restock-needed", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total"])

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/ledger/p1/s1/stock", fiber.Map{
		"quantity": 20,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(22), body["available_quantity"])
	assert.Equal(t, false, body["needs_restock"])

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/ledger/restock-needed", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total"])
}
