package payment

// Webhook event types delivered by the provider. Delivery is at-least-once;
// handlers must guard on the order's current payment status.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// WebhookEvent is the provider's callback payload. OrderID echoes the
// correlation metadata set at session creation.
type WebhookEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	OrderID   string `json:"order_id"`
}
