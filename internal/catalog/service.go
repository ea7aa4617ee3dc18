// Package catalog manages products and the per-user subscriptions hanging
// off them (wishlists and stock alerts).
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/otaku-market/internal/events"
	"github.com/example/otaku-market/internal/model"
	"github.com/example/otaku-market/internal/store"
)

type ProductStore interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindAll(ctx context.Context, f *store.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	SetStock(ctx context.Context, id string, stock int) (previous int, err error)
	Slugs(ctx context.Context) ([]string, error)
}

// ProductReader serves single-product reads; in production it is the redis
// cache decorator, with the repository behind it.
type ProductReader interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

type WishlistStore interface {
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
	ListProducts(ctx context.Context, userID string) ([]model.Product, error)
}

type AlertStore interface {
	Subscribe(ctx context.Context, userID, productID string) error
	Unsubscribe(ctx context.Context, userID, productID string) error
	ListByUser(ctx context.Context, userID string) ([]model.StockAlert, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, id string)
}

type ProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	Price       int64   `json:"price" validate:"required,min=1"`
	SalePrice   *int64  `json:"sale_price" validate:"omitempty,min=1"`
	IsSale      bool    `json:"is_sale"`
	Stock       int     `json:"stock" validate:"min=0"`
	Category    string  `json:"category"`
	Series      string  `json:"series"`
}

type Service struct {
	products  ProductStore
	reader    ProductReader
	wishlist  WishlistStore
	alerts    AlertStore
	cache     Invalidator
	publisher events.Publisher
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewService(products ProductStore, reader ProductReader, wishlist WishlistStore, alerts AlertStore, cache Invalidator, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		products:  products,
		reader:    reader,
		wishlist:  wishlist,
		alerts:    alerts,
		cache:     cache,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
	}
}

func (s *Service) ListProducts(ctx context.Context, f *store.ProductFilters) ([]model.Product, int, error) {
	return s.products.FindAll(ctx, f)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.reader.FindByID(ctx, id)
}

func (s *Service) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.products.FindBySlug(ctx, slug)
}

func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &model.Product{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		IsSale:      input.IsSale,
		Stock:       input.Stock,
		Category:    input.Category,
		Series:      input.Series,
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, input ProductInput) (*model.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	// Read the update base from the repository, not the cache, so a stale
	// cached row never clobbers fresher fields.
	existing, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = input.Name
	if input.Slug != "" {
		existing.Slug = input.Slug
	}
	existing.Description = input.Description
	existing.ImageURL = input.ImageURL
	existing.Price = input.Price
	existing.SalePrice = input.SalePrice
	existing.IsSale = input.IsSale
	existing.Category = input.Category
	existing.Series = input.Series
	existing.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return existing, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

// SetStock replaces a product's stock level. Raising it from zero publishes
// a restock event so subscribed users get their alert.
func (s *Service) SetStock(ctx context.Context, id string, stock int) error {
	previous, err := s.products.SetStock(ctx, id, stock)
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)

	if previous == 0 && stock > 0 {
		p, err := s.reader.FindByID(ctx, id)
		if err != nil {
			s.logger.Warn("restocked product vanished before event", zap.String("id", id), zap.Error(err))
			return nil
		}
		s.publisher.PublishAsync(events.TypeProductRestocked, id, events.ProductRestocked{
			ProductID: p.ID,
			Name:      p.Name,
			Slug:      p.Slug,
			Stock:     stock,
		})
	}
	return nil
}

func (s *Service) ProductSlugs(ctx context.Context) ([]string, error) {
	return s.products.Slugs(ctx)
}

func (s *Service) AddToWishlist(ctx context.Context, userID, productID string) error {
	if _, err := s.reader.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.wishlist.Add(ctx, userID, productID)
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return s.wishlist.Remove(ctx, userID, productID)
}

func (s *Service) Wishlist(ctx context.Context, userID string) ([]model.Product, error) {
	return s.wishlist.ListProducts(ctx, userID)
}

func (s *Service) SubscribeStockAlert(ctx context.Context, userID, productID string) error {
	if _, err := s.reader.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.alerts.Subscribe(ctx, userID, productID)
}

func (s *Service) UnsubscribeStockAlert(ctx context.Context, userID, productID string) error {
	return s.alerts.Unsubscribe(ctx, userID, productID)
}

func (s *Service) StockAlerts(ctx context.Context, userID string) ([]model.StockAlert, error) {
	return s.alerts.ListByUser(ctx, userID)
}

// Slugify lowercases the name and squeezes everything non-alphanumeric into
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
