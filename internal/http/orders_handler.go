package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/fjod/tradehub/internal/orders"
)

// dateLayout is the format of the from/to order filters.
const dateLayout = "2006-01-02"

type OrdersHandler struct {
	orders  *orders.Service
	timeout time.Duration
}

func NewOrdersHandler(service *orders.Service, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  service,
		timeout: timeout,
	}
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status" validate:"required"`
}

type OrderListResponse struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
}

func dateParam(r *http.Request, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// ListOrders answers GET /orders?q=&status=&from=&to=&min_price=&max_price=.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return
	}

	q := r.URL.Query()
	filter := orders.Filter{Status: q.Get("status")}
	if filter.Status != "" && filter.Status != orders.StatusAll && !domain.OrderStatus(filter.Status).Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "unknown order status "+filter.Status)
		return
	}

	if filter.From, ok = dateParam(r, "from"); !ok {
		respondError(w, http.StatusBadRequest, "invalid_date", "from must be formatted as "+dateLayout)
		return
	}
	if filter.To, ok = dateParam(r, "to"); !ok {
		respondError(w, http.StatusBadRequest, "invalid_date", "to must be formatted as "+dateLayout)
		return
	}

	var err error
	if filter.MinPrice, err = decimalParam(r, "min_price"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}
	if filter.MaxPrice, err = decimalParam(r, "max_price"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
		return
	}

	result, err := h.orders.Find(ctx, user.ID, q.Get("q"), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if result == nil {
		result = []domain.Order{}
	}

	respondJSON(w, http.StatusOK, OrderListResponse{Orders: result, Total: len(result)})
}

func (h *OrdersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return
	}

	stats, err := h.orders.Stats(ctx, user.ID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// ownedOrder loads an order of the signed-in user. Orders of other users are reported as missing.
func (h *OrdersHandler) ownedOrder(ctx context.Context, w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	user, ok := userFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return nil, false
	}

	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}

	order, err := h.orders.Get(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return nil, false
	}
	if order == nil || order.UserID != user.ID {
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return nil, false
	}
	return order, true
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, ok := h.ownedOrder(ctx, w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateOrderStatusRequestDTO
	if !decodeRequest(w, r, &req) {
		return
	}

	order, ok := h.ownedOrder(ctx, w, r)
	if !ok {
		return
	}

	updated, err := h.orders.UpdateStatus(ctx, order.ID, domain.OrderStatus(req.Status))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
