// Package api exposes the storefront over HTTP. Handlers stay thin; the
// services own validation and business rules.
package api

import (
	"github.com/example/otaku-market/internal/auth"
	"github.com/example/otaku-market/internal/catalog"
	"github.com/example/otaku-market/internal/metrics"
	"github.com/example/otaku-market/internal/order"
	"github.com/example/otaku-market/internal/sitemap"
	"github.com/example/otaku-market/internal/store"
)

type Handlers struct {
	catalog   *catalog.Service
	orders    *order.Service
	users     *store.UserRepository
	addresses *store.AddressRepository
	tokens    *auth.TokenService
	sitemap   *sitemap.Service
	metrics   *metrics.ServerMetrics
}

func NewHandlers(
	catalogSvc *catalog.Service,
	orderSvc *order.Service,
	users *store.UserRepository,
	addresses *store.AddressRepository,
	tokens *auth.TokenService,
	sitemapSvc *sitemap.Service,
	m *metrics.ServerMetrics,
) *Handlers {
	return &Handlers{
		catalog:   catalogSvc,
		orders:    orderSvc,
		users:     users,
		addresses: addresses,
		tokens:    tokens,
		sitemap:   sitemapSvc,
		metrics:   m,
	}
}
