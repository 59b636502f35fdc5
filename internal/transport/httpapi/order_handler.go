package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/service/idempotency"
)

const maxOrderBodyBytes = 1 << 20

type orderHandler struct {
	svc    OrderService
	guard  *idempotency.Guard
	logger *log.Entry
}

// POST /api/orders
//
// С заголовком Idempotency-Key ответ сохраняется, и повтор с тем же телом
// получает его без повторного размещения заказа.
func (h *orderHandler) placeOrder(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxOrderBodyBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}

	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	if key == "" || h.guard == nil {
		status, payload := h.place(c, body)
		writeRaw(c, status, encode(payload))
		return
	}

	ctx := c.Request.Context()
	replay, err := h.guard.Begin(ctx, key, body)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if replay != nil {
		c.Header(HeaderIdempotentReplay, "true")
		writeRaw(c, replay.HTTPStatus, replay.Body)
		return
	}

	// Паника до Finish не должна оставлять ключ в processing до истечения TTL.
	defer func() {
		if rec := recover(); rec != nil {
			failed := encode(envelope{OK: false, Error: "internal error"})
			if err := h.guard.Finish(context.WithoutCancel(ctx), key, http.StatusInternalServerError, failed); err != nil {
				h.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to release idempotency key after panic")
			}
			panic(rec)
		}
	}()

	status, payload := h.place(c, body)
	encoded := encode(payload)
	if err := h.guard.Finish(ctx, key, status, encoded); err != nil {
		h.logger.WithError(err).WithFields(log.Fields{
			"request_id":      requestIDFrom(c),
			"idempotency_key": key,
		}).Warn("failed to store idempotent response")
	}
	writeRaw(c, status, encoded)
}

func (h *orderHandler) place(c *gin.Context, body []byte) (int, envelope) {
	var req domain.PlaceOrderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, envelope{OK: false, Error: "invalid json body: " + err.Error()}
	}

	orderID, err := h.svc.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		return errorEnvelope(c, h.logger, err)
	}
	return http.StatusCreated, envelope{OK: true, Data: gin.H{"order_id": orderID}}
}

// GET /api/users/:id/orders
func (h *orderHandler) ordersByUser(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	orders, err := h.svc.OrdersByUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	ok(c, orders)
}

// GET /api/paytypes
func (h *orderHandler) listPaytypes(c *gin.Context) {
	paytypes, err := h.svc.ListPaytypes(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if paytypes == nil {
		paytypes = []domain.Paytype{}
	}
	ok(c, paytypes)
}

// GET /api/orders/:id/cart
func (h *orderHandler) cartByOrder(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items, err := h.svc.CartByOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	ok(c, items)
}
