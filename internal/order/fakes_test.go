package order

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/otaku-market/internal/model"
	"github.com/example/otaku-market/internal/payment"
)

// fakeStore is an in-memory Store with honest transaction semantics: a Tx
// holds the store lock for its whole lifetime (serializing transactions the
// way row locks do) and keeps an undo log so Rollback really reverts every
// staged change.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]*model.Product
	orders   map[string]*model.Order

	beginCalls int
}

func newFakeStore(products ...*model.Product) *fakeStore {
	s := &fakeStore{
		products: make(map[string]*model.Product),
		orders:   make(map[string]*model.Order),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	s.beginCalls++
	return &fakeTx{s: s}, nil
}

func (s *fakeStore) OrderByID(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *fakeStore) OrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) SetCheckoutSession(ctx context.Context, orderID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	o.CheckoutSessionID = &sessionID
	return nil
}

func (s *fakeStore) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.PaymentStatus != model.PaymentUnpaid {
		return false, nil
	}
	o.PaymentStatus = model.PaymentPaid
	return true, nil
}

func (s *fakeStore) stock(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeTx struct {
	s    *fakeStore
	undo []func()
	done bool
}

func (t *fakeTx) ProductByID(ctx context.Context, id string) (*model.Product, error) {
	p, ok := t.s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (t *fakeTx) DecrementStock(ctx context.Context, productID string, qty int) error {
	p, ok := t.s.products[productID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if p.Stock < qty {
		return &InsufficientStockError{ProductID: productID, Requested: qty, Remaining: p.Stock}
	}
	p.Stock -= qty
	t.undo = append(t.undo, func() { p.Stock += qty })
	return nil
}

func (t *fakeTx) IncrementStock(ctx context.Context, productID string, qty int) error {
	p, ok := t.s.products[productID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	p.Stock += qty
	t.undo = append(t.undo, func() { p.Stock -= qty })
	return nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, o *model.Order) error {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	t.s.orders[o.ID] = &cp
	t.undo = append(t.undo, func() { delete(t.s.orders, o.ID) })
	return nil
}

func (t *fakeTx) OrderForUpdate(ctx context.Context, id string) (*model.Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (t *fakeTx) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus, pay model.PaymentStatus) error {
	o, ok := t.s.orders[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	prevStatus, prevPay := o.Status, o.PaymentStatus
	o.Status, o.PaymentStatus = status, pay
	t.undo = append(t.undo, func() { o.Status, o.PaymentStatus = prevStatus, prevPay })
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

// fakePaymentClient records session requests and can be told to fail.
type fakePaymentClient struct {
	mu    sync.Mutex
	calls []payment.SessionParams
	err   error
	n     int
}

func (c *fakePaymentClient) CreateSession(ctx context.Context, params payment.SessionParams) (*payment.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, params)
	if c.err != nil {
		return nil, c.err
	}
	c.n++
	id := fmt.Sprintf("sess_%d", c.n)
	return &payment.Session{ID: id, RedirectURL: "https://pay.example.com/" + id}, nil
}

func (c *fakePaymentClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// fakePublisher records fire-and-forget publications synchronously so tests
// can assert scheduling without timing races.
type fakePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

type publishedEvent struct {
	Type string
	Key  string
	Data any
}

func (p *fakePublisher) PublishAsync(eventType, key string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, publishedEvent{Type: eventType, Key: key, Data: data})
}

func (p *fakePublisher) events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.published...)
}
