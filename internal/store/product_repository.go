package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/example/otaku-market/internal/model"
)

// ProductFilters narrows and orders catalog listings.
type ProductFilters struct {
	Category    string
	Series      string
	OnSale      *bool
	SearchQuery string
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO products (
			id, name, slug, description, image_url, price, sale_price,
			is_sale, stock, category, series, created_at, updated_at
		) VALUES (
			:id, :name, :slug, :description, :image_url, :price, :sale_price,
			:is_sale, :stock, :category, :series, :created_at, :updated_at
		)`, p)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: slug %q", ErrDuplicate, p.Slug)
	}
	return err
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var p model.Product
	err := r.db.GetContext(ctx, &p, `SELECT * FROM products WHERE slug = $1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, slug)
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, f *ProductFilters) ([]model.Product, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if f.Series != "" {
		conditions = append(conditions, "series = :series")
		args["series"] = f.Series
	}
	if f.OnSale != nil {
		conditions = append(conditions, "is_sale = :is_sale")
		args["is_sale"] = *f.OnSale
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	rows, err := r.db.NamedQueryContext(ctx, "SELECT count(*) FROM products"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return nil, 0, err
		}
	}

	// Sort fields are whitelisted; anything else falls back to newest first.
	orderBy := "created_at DESC"
	switch f.SortBy {
	case "name":
		orderBy = "name"
	case "price":
		orderBy = "price"
	case "created_at":
		orderBy = "created_at"
	}
	if f.SortBy != "" {
		if strings.EqualFold(f.SortOrder, "asc") {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	var products []model.Product
	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}
	return products, count, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *model.Product) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE products
		SET name = :name,
		    slug = :slug,
		    description = :description,
		    image_url = :image_url,
		    price = :price,
		    sale_price = :sale_price,
		    is_sale = :is_sale,
		    category = :category,
		    series = :series,
		    updated_at = :updated_at
		WHERE id = :id`, p)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, p.ID)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return nil
}

// SetStock replaces a product's stock level and returns the previous level
// so the caller can detect a restock (zero to positive).
func (r *ProductRepository) SetStock(ctx context.Context, id string, stock int) (previous int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &previous, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		return 0, err
	}
	_, err = tx.ExecContext(ctx, `UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`, stock, id)
	if err != nil {
		return 0, err
	}
	return previous, tx.Commit()
}

// Slugs lists every product slug, newest first, for the sitemap.
func (r *ProductRepository) Slugs(ctx context.Context) ([]string, error) {
	var slugs []string
	err := r.db.SelectContext(ctx, &slugs, `SELECT slug FROM products ORDER BY created_at DESC`)
	return slugs, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
