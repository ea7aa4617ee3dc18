package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/otaku-market/internal/model"
)

type AddressRepository struct {
	db *sqlx.DB
}

func NewAddressRepository(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// Create inserts the address; when it is marked default, any previous
// default for the user is cleared in the same transaction.
func (r *AddressRepository) Create(ctx context.Context, a *model.Address) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1`, a.UserID); err != nil {
			return err
		}
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO addresses (id, user_id, label, recipient, street, city, zip_code, is_default, created_at, updated_at)
		VALUES (:id, :user_id, :label, :recipient, :street, :city, :zip_code, :is_default, :created_at, :updated_at)`, a)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *AddressRepository) Update(ctx context.Context, a *model.Address) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if a.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2`, a.UserID, a.ID); err != nil {
			return err
		}
	}
	res, err := tx.NamedExecContext(ctx, `
		UPDATE addresses
		SET label = :label, recipient = :recipient, street = :street,
		    city = :city, zip_code = :zip_code, is_default = :is_default,
		    updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id`, a)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: address %s", ErrNotFound, a.ID)
	}
	return tx.Commit()
}

func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: address %s", ErrNotFound, id)
	}
	return nil
}

func (r *AddressRepository) FindByID(ctx context.Context, userID, id string) (*model.Address, error) {
	var a model.Address
	err := r.db.GetContext(ctx, &a, `SELECT * FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: address %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &a, nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.SelectContext(ctx, &addresses, `
		SELECT * FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`, userID)
	return addresses, err
}
