package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/example/otaku-market/internal/model"
)

type WishlistRepository struct {
	db *sqlx.DB
}

func NewWishlistRepository(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add is idempotent; re-adding an already wishlisted product is a no-op.
func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID)
	return err
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	return err
}

// ListProducts returns the user's wishlisted products in one batch query
// instead of resolving each membership row separately.
func (r *WishlistRepository) ListProducts(ctx context.Context, userID string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.SelectContext(ctx, &products, `
		SELECT p.*
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY p.name`, userID)
	return products, err
}
