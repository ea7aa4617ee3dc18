// Package notification turns domain events into outgoing email. It runs in
// the notifier binary, off the request path.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/email"
	"github.com/example/otaku-market/internal/events"
	"github.com/example/otaku-market/internal/store"
)

// AlertStore is the slice of the stock alert repository the handler needs.
type AlertStore interface {
	PendingRecipients(ctx context.Context, productID string) ([]store.PendingRecipient, error)
	MarkNotified(ctx context.Context, userID, productID string) error
}

type Handler struct {
	sender  email.Sender
	alerts  AlertStore
	baseURL string
	logger  *zap.Logger
}

func NewHandler(sender email.Sender, alerts AlertStore, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{sender: sender, alerts: alerts, baseURL: baseURL, logger: logger}
}

// Handle dispatches one envelope. Unknown event types are ignored so the
// topic can grow without breaking older notifiers.
func (h *Handler) Handle(ctx context.Context, env events.Envelope) error {
	switch env.Type {
	case events.TypeOrderPlaced:
		return h.handleOrderPlaced(env)
	case events.TypeOrderStatusChanged:
		return h.handleStatusChanged(env)
	case events.TypeProductRestocked:
		return h.handleRestocked(ctx, env)
	default:
		h.logger.Debug("ignoring event", zap.String("type", env.Type))
		return nil
	}
}

func (h *Handler) handleOrderPlaced(env events.Envelope) error {
	var ev events.OrderPlaced
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		return fmt.Errorf("decode order.placed: %w", err)
	}

	items := make([]email.OrderItem, 0, len(ev.Items))
	for _, line := range ev.Items {
		items = append(items, email.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}

	if err := h.sender.SendOrderConfirmation(ev.Email, ev.OrderID, ev.Total, items); err != nil {
		return fmt.Errorf("send confirmation for order %s: %w", ev.OrderID, err)
	}
	h.logger.Info("sent order confirmation",
		zap.String("order_id", ev.OrderID),
		zap.String("to", ev.Email))
	return nil
}

func (h *Handler) handleStatusChanged(env events.Envelope) error {
	var ev events.OrderStatusChanged
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		return fmt.Errorf("decode order.status_changed: %w", err)
	}

	if err := h.sender.SendOrderStatusUpdate(ev.Email, ev.CustomerName, ev.OrderID, ev.Status); err != nil {
		return fmt.Errorf("send status update for order %s: %w", ev.OrderID, err)
	}
	h.logger.Info("sent status update",
		zap.String("order_id", ev.OrderID),
		zap.String("status", ev.Status))
	return nil
}

// handleRestocked fans one restock event out to every pending subscriber.
// A send failure for one recipient does not block the rest; subscribers who
// were mailed are marked notified so a redelivery skips them.
func (h *Handler) handleRestocked(ctx context.Context, env events.Envelope) error {
	var ev events.ProductRestocked
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		return fmt.Errorf("decode product.restocked: %w", err)
	}

	recipients, err := h.alerts.PendingRecipients(ctx, ev.ProductID)
	if err != nil {
		return fmt.Errorf("load subscribers for product %s: %w", ev.ProductID, err)
	}
	if len(recipients) == 0 {
		return nil
	}

	productURL := fmt.Sprintf("%s/products/%s", h.baseURL, ev.Slug)
	var failed int
	for _, rec := range recipients {
		if err := h.sender.SendRestockAlert(rec.Email, ev.Name, productURL); err != nil {
			failed++
			h.logger.Error("send restock alert",
				zap.String("product_id", ev.ProductID),
				zap.String("to", rec.Email),
				zap.Error(err))
			continue
		}
		if err := h.alerts.MarkNotified(ctx, rec.UserID, ev.ProductID); err != nil {
			h.logger.Error("mark notified",
				zap.String("product_id", ev.ProductID),
				zap.String("user_id", rec.UserID),
				zap.Error(err))
		}
	}

	h.logger.Info("sent restock alerts",
		zap.String("product_id", ev.ProductID),
		zap.Int("sent", len(recipients)-failed),
		zap.Int("failed", failed))
	if failed == len(recipients) {
		return fmt.Errorf("all %d restock alerts failed for product %s", failed, ev.ProductID)
	}
	return nil
}
