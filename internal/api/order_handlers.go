package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/otaku-market/internal/api/middleware"
	"github.com/example/otaku-market/internal/model"
	"github.com/example/otaku-market/internal/order"
	"github.com/example/otaku-market/internal/payment"
)

// PlaceOrder serves both guests and logged-in customers; OptionalAuth fills
// the user id when a token is present.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req order.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	placed, err := h.orders.Place(r.Context(), req, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.OrdersPlaced.Inc()
	if placed.CheckoutURL == "" {
		h.metrics.CheckoutErrors.Inc()
	}
	respondJSON(w, http.StatusCreated, placed)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.OrderByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !canReadOrder(r, o) {
		// 404, not 403: do not confirm the order exists to strangers.
		respondError(w, "not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.OrdersByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// RetryCheckout recreates the payment session for an order whose original
// session creation failed after commit.
func (h *Handlers) RetryCheckout(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.OrderByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !canReadOrder(r, o) {
		respondError(w, "not found", http.StatusNotFound)
		return
	}

	url, err := h.orders.CreateCheckoutSession(r.Context(), o.ID)
	if err != nil {
		h.metrics.CheckoutErrors.Inc()
		respondError(w, "payment provider unavailable", http.StatusBadGateway)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"checkout_url": url})
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.orders.Transition(r.Context(), r.PathValue("id"), model.OrderStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// PaymentWebhook acknowledges provider events. Unknown types and
// redeliveries are acknowledged with 200 so the provider stops retrying.
func (h *Handlers) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var ev payment.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.orders.HandleWebhook(r.Context(), ev); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"received": ev.ID})
}

// canReadOrder allows the order's owner and admins. Guest orders have no
// owner and are only visible to admins.
func canReadOrder(r *http.Request, o *model.Order) bool {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return false
	}
	if claims.IsAdmin {
		return true
	}
	return o.UserID != nil && *o.UserID == claims.UserID
}
