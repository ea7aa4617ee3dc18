package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/config"
	"github.com/example/otaku-market/internal/events"
	"github.com/example/otaku-market/internal/model"
	"github.com/example/otaku-market/internal/payment"
)

// placementTimeout bounds the placement transaction; a deadline hit rolls
// the whole transaction back.
const placementTimeout = 5 * time.Second

// Line is one requested (product, quantity) pair.
type Line struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// PlaceRequest carries the shipping snapshot and cart lines. Validation
// runs before any database interaction.
type PlaceRequest struct {
	CustomerName string `json:"customer_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Address      string `json:"address" validate:"required"`
	City         string `json:"city" validate:"required"`
	ZipCode      string `json:"zip_code" validate:"required"`
	Items        []Line `json:"items" validate:"required,min=1,dive"`
}

// PlacedOrder is the placement result. CheckoutURL is empty when the order
// committed but the checkout session could not be created; the client may
// retry session creation separately.
type PlacedOrder struct {
	Order       *model.Order `json:"order"`
	CheckoutURL string       `json:"checkout_url,omitempty"`
}

type Service struct {
	store     Store
	payments  payment.Client
	publisher events.Publisher
	logger    *zap.Logger
	validate  *validator.Validate

	shippingFee            int64
	enforceStockCheck      bool
	enforceTransitionGraph bool
}

func NewService(store Store, payments payment.Client, publisher events.Publisher, cfg config.ShopConfig, logger *zap.Logger) *Service {
	return &Service{
		store:                  store,
		payments:               payments,
		publisher:              publisher,
		logger:                 logger,
		validate:               validator.New(),
		shippingFee:            cfg.ShippingFeeCents,
		enforceStockCheck:      cfg.EnforceStockCheck,
		enforceTransitionGraph: cfg.EnforceTransitionGraph,
	}
}

// Place creates an order. Product resolution, pricing and stock decrements
// run inside one transaction; either all lines succeed or nothing is
// persisted. The checkout session and the confirmation email happen after
// commit and never undo the order.
func (s *Service) Place(ctx context.Context, req PlaceRequest, userID string) (*PlacedOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, placementTimeout)
	defer cancel()

	tx, err := s.store.Begin(txCtx)
	if err != nil {
		return nil, fmt.Errorf("begin placement: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	o := &model.Order{
		ID:            uuid.New().String(),
		CustomerName:  req.CustomerName,
		Email:         req.Email,
		Address:       req.Address,
		City:          req.City,
		ZipCode:       req.ZipCode,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if userID != "" {
		o.UserID = &userID
	}

	var total int64
	for _, line := range req.Items {
		p, err := tx.ProductByID(txCtx, line.ProductID)
		if err != nil {
			return nil, err
		}

		if s.enforceStockCheck && line.Quantity > p.Stock {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Requested: line.Quantity,
				Remaining: p.Stock,
			}
		}

		if err := tx.DecrementStock(txCtx, p.ID, line.Quantity); err != nil {
			return nil, err
		}

		price := p.ChargePrice()
		o.Items = append(o.Items, model.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       price,
		})
		total += price * int64(line.Quantity)
	}

	o.Total = total + s.shippingFee

	if err := tx.InsertOrder(txCtx, o); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit placement: %w", err)
	}

	placed := &PlacedOrder{Order: o}
	url, err := s.CreateCheckoutSession(ctx, o.ID)
	if err != nil {
		// The order is already durable; the client can retry the session.
		s.logger.Error("checkout session creation failed",
			zap.String("order_id", o.ID),
			zap.Error(err))
	} else {
		placed.CheckoutURL = url
	}

	s.publisher.PublishAsync(events.TypeOrderPlaced, o.ID, orderPlacedEvent(o))
	return placed, nil
}

// CreateCheckoutSession asks the payment provider for a session and
// persists the session id on the order. Callable on its own to retry after
// a post-commit provider failure.
func (s *Service) CreateCheckoutSession(ctx context.Context, orderID string) (string, error) {
	o, err := s.store.OrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	items := make([]payment.LineItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = payment.LineItem{
			Name:       it.ProductName,
			UnitAmount: it.Price,
			Quantity:   it.Quantity,
		}
	}
	items = append(items, payment.LineItem{
		Name:       "Shipping",
		UnitAmount: s.shippingFee,
		Quantity:   1,
	})

	session, err := s.payments.CreateSession(ctx, payment.SessionParams{
		OrderID: o.ID,
		Email:   o.Email,
		Items:   items,
	})
	if err != nil {
		return "", err
	}

	if err := s.store.SetCheckoutSession(ctx, o.ID, session.ID); err != nil {
		return "", fmt.Errorf("persist checkout session: %w", err)
	}
	return session.RedirectURL, nil
}

// Transition applies an admin status change. Cancellation restores stock
// for every line in the same transaction as the status write; an already
// cancelled order is rejected so inventory is never refunded twice.
func (s *Service) Transition(ctx context.Context, orderID string, to model.OrderStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	o, err := tx.OrderForUpdate(ctx, orderID)
	if err != nil {
		return err
	}

	// Double-cancel would double-refund inventory; refuse it regardless of
	// graph enforcement.
	if o.Status == model.StatusCancelled {
		return ErrAlreadyCancelled
	}
	if s.enforceTransitionGraph && !CanTransition(o.Status, to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}

	if to == model.StatusCancelled {
		for _, it := range o.Items {
			if err := tx.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("restore stock for %s: %w", it.ProductID, err)
			}
		}
	}

	if err := tx.UpdateOrderStatus(ctx, o.ID, to, o.PaymentStatus); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}

	s.publisher.PublishAsync(events.TypeOrderStatusChanged, o.ID, events.OrderStatusChanged{
		OrderID:      o.ID,
		Email:        o.Email,
		CustomerName: o.CustomerName,
		Status:       string(to),
	})
	return nil
}

// HandleWebhook applies a payment provider callback. Delivery is
// at-least-once, so both branches guard on the order still being UNPAID; a
// redelivered event mutates nothing and is acknowledged.
func (s *Service) HandleWebhook(ctx context.Context, ev payment.WebhookEvent) error {
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		applied, err := s.store.MarkPaid(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		if !applied {
			s.logger.Info("duplicate payment webhook ignored",
				zap.String("order_id", ev.OrderID),
				zap.String("event_id", ev.ID))
		}
		return nil

	case payment.EventCheckoutExpired:
		return s.expireSession(ctx, ev.OrderID)

	default:
		s.logger.Info("unhandled webhook type", zap.String("type", ev.Type))
		return nil
	}
}

func (s *Service) expireSession(ctx context.Context, orderID string) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin expiry: %w", err)
	}
	defer tx.Rollback()

	o, err := tx.OrderForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	if o.PaymentStatus != model.PaymentUnpaid {
		// Paid or already failed; the expiry is stale.
		return nil
	}

	// An admin cancellation already restored stock; the session expiry only
	// settles the payment status on such orders.
	if o.Status == model.StatusCancelled {
		if err := tx.UpdateOrderStatus(ctx, o.ID, model.StatusCancelled, model.PaymentFailed); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit expiry: %w", err)
		}
		return nil
	}

	for _, it := range o.Items {
		if err := tx.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("restore stock for %s: %w", it.ProductID, err)
		}
	}
	if err := tx.UpdateOrderStatus(ctx, o.ID, model.StatusCancelled, model.PaymentFailed); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expiry: %w", err)
	}

	s.publisher.PublishAsync(events.TypeOrderStatusChanged, o.ID, events.OrderStatusChanged{
		OrderID:      o.ID,
		Email:        o.Email,
		CustomerName: o.CustomerName,
		Status:       string(model.StatusCancelled),
	})
	return nil
}

// OrderByID returns one order with its items and product names.
func (s *Service) OrderByID(ctx context.Context, id string) (*model.Order, error) {
	return s.store.OrderByID(ctx, id)
}

// OrdersByUser lists the caller's orders, newest first.
func (s *Service) OrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.store.OrdersByUser(ctx, userID)
}

func orderPlacedEvent(o *model.Order) events.OrderPlaced {
	lines := make([]events.OrderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = events.OrderLine{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	return events.OrderPlaced{
		OrderID:      o.ID,
		Email:        o.Email,
		CustomerName: o.CustomerName,
		Total:        o.Total,
		Items:        lines,
	}
}
