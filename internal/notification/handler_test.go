package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/email"
	"github.com/example/otaku-market/internal/events"
	"github.com/example/otaku-market/internal/store"
)

type sentMail struct {
	kind    string
	to      string
	orderID string
	status  string
	product string
	url     string
	total   int64
	items   []email.OrderItem
}

type fakeSender struct {
	sent    []sentMail
	failFor map[string]error
}

func (f *fakeSender) SendOrderConfirmation(to, orderID string, total int64, items []email.OrderItem) error {
	if err := f.failFor[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{kind: "confirmation", to: to, orderID: orderID, total: total, items: items})
	return nil
}

func (f *fakeSender) SendOrderStatusUpdate(to, customerName, orderID, status string) error {
	if err := f.failFor[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{kind: "status", to: to, orderID: orderID, status: status})
	return nil
}

func (f *fakeSender) SendRestockAlert(to, productName, productURL string) error {
	if err := f.failFor[to]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentMail{kind: "restock", to: to, product: productName, url: productURL})
	return nil
}

type fakeAlerts struct {
	pending  []store.PendingRecipient
	notified []string
}

func (f *fakeAlerts) PendingRecipients(_ context.Context, _ string) ([]store.PendingRecipient, error) {
	return f.pending, nil
}

func (f *fakeAlerts) MarkNotified(_ context.Context, userID, _ string) error {
	f.notified = append(f.notified, userID)
	return nil
}

func envelope(t *testing.T, eventType string, data any) events.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return events.Envelope{ID: "evt_1", Type: eventType, OccurredAt: time.Now(), Data: raw}
}

func TestHandle_OrderPlacedSendsConfirmation(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, &fakeAlerts{}, "https://shop.example.com", zap.NewNop())

	env := envelope(t, events.TypeOrderPlaced, events.OrderPlaced{
		OrderID: "ord_1",
		Email:   "rin@example.com",
		Total:   6000,
		Items: []events.OrderLine{
			{ProductID: "prd_1", Name: "Nendoroid Miku", Quantity: 2, Price: 2500},
		},
	})

	require.NoError(t, h.Handle(context.Background(), env))
	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	assert.Equal(t, "confirmation", mail.kind)
	assert.Equal(t, "rin@example.com", mail.to)
	assert.Equal(t, "ord_1", mail.orderID)
	assert.Equal(t, int64(6000), mail.total)
	require.Len(t, mail.items, 1)
	assert.Equal(t, "Nendoroid Miku", mail.items[0].Name)
}

func TestHandle_StatusChangedSendsUpdate(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, &fakeAlerts{}, "https://shop.example.com", zap.NewNop())

	env := envelope(t, events.TypeOrderStatusChanged, events.OrderStatusChanged{
		OrderID:      "ord_1",
		Email:        "rin@example.com",
		CustomerName: "Rin",
		Status:       "SHIPPED",
	})

	require.NoError(t, h.Handle(context.Background(), env))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "status", sender.sent[0].kind)
	assert.Equal(t, "SHIPPED", sender.sent[0].status)
}

func TestHandle_RestockFansOutAndMarksNotified(t *testing.T) {
	sender := &fakeSender{}
	alerts := &fakeAlerts{pending: []store.PendingRecipient{
		{UserID: "usr_1", Email: "a@example.com"},
		{UserID: "usr_2", Email: "b@example.com"},
	}}
	h := NewHandler(sender, alerts, "https://shop.example.com", zap.NewNop())

	env := envelope(t, events.TypeProductRestocked, events.ProductRestocked{
		ProductID: "prd_1",
		Name:      "Nendoroid Miku",
		Slug:      "nendoroid-miku",
		Stock:     12,
	})

	require.NoError(t, h.Handle(context.Background(), env))
	require.Len(t, sender.sent, 2)
	assert.Equal(t, "https://shop.example.com/products/nendoroid-miku", sender.sent[0].url)
	assert.ElementsMatch(t, []string{"usr_1", "usr_2"}, alerts.notified)
}

func TestHandle_RestockSendFailureSkipsMarkNotified(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{"a@example.com": errors.New("smtp down")}}
	alerts := &fakeAlerts{pending: []store.PendingRecipient{
		{UserID: "usr_1", Email: "a@example.com"},
		{UserID: "usr_2", Email: "b@example.com"},
	}}
	h := NewHandler(sender, alerts, "https://shop.example.com", zap.NewNop())

	env := envelope(t, events.TypeProductRestocked, events.ProductRestocked{
		ProductID: "prd_1", Name: "Nendoroid Miku", Slug: "nendoroid-miku", Stock: 3,
	})

	require.NoError(t, h.Handle(context.Background(), env))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"usr_2"}, alerts.notified)
}

func TestHandle_RestockNoSubscribersIsNoop(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, &fakeAlerts{}, "https://shop.example.com", zap.NewNop())

	env := envelope(t, events.TypeProductRestocked, events.ProductRestocked{
		ProductID: "prd_1", Name: "Nendoroid Miku", Slug: "nendoroid-miku", Stock: 5,
	})

	require.NoError(t, h.Handle(context.Background(), env))
	assert.Empty(t, sender.sent)
}

func TestHandle_UnknownEventTypeIgnored(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, &fakeAlerts{}, "https://shop.example.com", zap.NewNop())

	env := events.Envelope{ID: "evt_9", Type: "inventory.counted", Data: json.RawMessage(`{}`)}
	require.NoError(t, h.Handle(context.Background(), env))
	assert.Empty(t, sender.sent)
}

func TestHandle_MalformedPayloadErrors(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, &fakeAlerts{}, "https://shop.example.com", zap.NewNop())

	env := events.Envelope{ID: "evt_9", Type: events.TypeOrderPlaced, Data: json.RawMessage(`{broken`)}
	assert.Error(t, h.Handle(context.Background(), env))
}
