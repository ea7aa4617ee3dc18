package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/example/otaku-market/internal/model"
)

type StockAlertRepository struct {
	db *sqlx.DB
}

func NewStockAlertRepository(db *sqlx.DB) *StockAlertRepository {
	return &StockAlertRepository{db: db}
}

// Subscribe upserts the subscription. Re-subscribing resets the notified
// flag so the user is alerted again on the next restock.
func (r *StockAlertRepository) Subscribe(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock_alerts (user_id, product_id, notified)
		VALUES ($1, $2, FALSE)
		ON CONFLICT (user_id, product_id) DO UPDATE SET notified = FALSE`, userID, productID)
	return err
}

func (r *StockAlertRepository) Unsubscribe(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM stock_alerts WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return err
}

func (r *StockAlertRepository) ListByUser(ctx context.Context, userID string) ([]model.StockAlert, error) {
	var alerts []model.StockAlert
	err := r.db.SelectContext(ctx, &alerts, `
		SELECT user_id, product_id, notified FROM stock_alerts WHERE user_id = $1`, userID)
	return alerts, err
}

// PendingRecipient is a subscriber awaiting a restock email.
type PendingRecipient struct {
	UserID string `db:"user_id"`
	Email  string `db:"email"`
}

// PendingRecipients returns every not-yet-notified subscriber for a product
// with their email, batched in one join.
func (r *StockAlertRepository) PendingRecipients(ctx context.Context, productID string) ([]PendingRecipient, error) {
	var recipients []PendingRecipient
	err := r.db.SelectContext(ctx, &recipients, `
		SELECT sa.user_id, u.email
		FROM stock_alerts sa
		JOIN users u ON u.id = sa.user_id
		WHERE sa.product_id = $1 AND sa.notified = FALSE`, productID)
	return recipients, err
}

// MarkNotified flips the flag for one subscriber after their email went out,
// so a consumer retry does not mail them twice.
func (r *StockAlertRepository) MarkNotified(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE stock_alerts SET notified = TRUE
		WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return err
}
