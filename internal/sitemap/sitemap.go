// Package sitemap renders the product sitemap for search engines. The XML is
// rebuilt from the catalog on demand and cached in Redis for a short TTL.
package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cacheKey = "sitemap:products"
	cacheTTL = 10 * time.Minute
)

// SlugLister is satisfied by the catalog service.
type SlugLister interface {
	ProductSlugs(ctx context.Context) ([]string, error)
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []urlEntry
}

type urlEntry struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	ChangeFreq string   `xml:"changefreq,omitempty"`
	Priority   string   `xml:"priority,omitempty"`
}

type Service struct {
	catalog SlugLister
	rdb     *redis.Client
	baseURL string
	logger  *zap.Logger
}

func NewService(catalog SlugLister, rdb *redis.Client, baseURL string, logger *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		rdb:     rdb,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Render returns the sitemap XML. Redis failures degrade to a rebuild; a
// cache outage must never break the endpoint.
func (s *Service) Render(ctx context.Context) ([]byte, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("sitemap cache read", zap.Error(err))
		}
	}

	body, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, cacheKey, body, cacheTTL).Err(); err != nil {
			s.logger.Warn("sitemap cache write", zap.Error(err))
		}
	}
	return body, nil
}

// Invalidate drops the cached XML so the next Render rebuilds it. Called
// after catalog writes.
func (s *Service) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("sitemap cache invalidate", zap.Error(err))
	}
}

func (s *Service) build(ctx context.Context) ([]byte, error) {
	slugs, err := s.catalog.ProductSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product slugs: %w", err)
	}

	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []urlEntry{
			{Loc: s.baseURL + "/", ChangeFreq: "daily", Priority: "1.0"},
			{Loc: s.baseURL + "/products", ChangeFreq: "daily", Priority: "0.9"},
		},
	}
	for _, slug := range slugs {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        fmt.Sprintf("%s/products/%s", s.baseURL, slug),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
