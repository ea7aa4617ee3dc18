package model

// Product is a catalog entry. Prices are in cents. Stock is kept
// non-negative by the store layer; nothing in the application caches it
// between a check and a decrement.
type Product struct {
	BaseModel
	Name        string  `db:"name" json:"name"`
	Slug        string  `db:"slug" json:"slug"`
	Description *string `db:"description" json:"description"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	Price       int64   `db:"price" json:"price"`
	SalePrice   *int64  `db:"sale_price" json:"sale_price"`
	IsSale      bool    `db:"is_sale" json:"is_sale"`
	Stock       int     `db:"stock" json:"stock"`
	Category    string  `db:"category" json:"category"`
	Series      string  `db:"series" json:"series"`
}

// ChargePrice returns the authoritative unit price: the sale price when the
// product is on sale and a sale price is set, the regular price otherwise.
func (p *Product) ChargePrice() int64 {
	if p.IsSale && p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// WishlistItem is a membership record, unique per (user, product).
type WishlistItem struct {
	UserID    string `db:"user_id" json:"user_id"`
	ProductID string `db:"product_id" json:"product_id"`
}

// StockAlert is a per-user subscription to a product restock. Notified is
// set once an email has gone out for the current restock event and reset
// when the user re-subscribes.
type StockAlert struct {
	UserID    string `db:"user_id" json:"user_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Notified  bool   `db:"notified" json:"notified"`
}
