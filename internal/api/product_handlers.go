package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/example/otaku-market/internal/api/middleware"
	"github.com/example/otaku-market/internal/catalog"
	"github.com/example/otaku-market/internal/store"
)

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	filters := productFilters(r)
	products, total, err := h.catalog.ListProducts(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"total":    total,
		"page":     filters.Page,
	})
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	h.sitemap.Invalidate(r.Context())
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input catalog.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	h.sitemap.Invalidate(r.Context())
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	h.sitemap.Invalidate(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func (h *Handlers) SetProductStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stock int `json:"stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Stock < 0 {
		respondError(w, "stock must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.catalog.SetStock(r.Context(), r.PathValue("id"), req.Stock); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stock": req.Stock})
}

// Wishlist

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	products, err := h.catalog.Wishlist(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.catalog.AddToWishlist(r.Context(), userID, r.PathValue("productID")); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "added to wishlist"})
}

func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.catalog.RemoveFromWishlist(r.Context(), userID, r.PathValue("productID")); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "removed from wishlist"})
}

// Stock alerts

func (h *Handlers) ListStockAlerts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	alerts, err := h.catalog.StockAlerts(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handlers) SubscribeStockAlert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.catalog.SubscribeStockAlert(r.Context(), userID, r.PathValue("productID")); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "subscribed"})
}

func (h *Handlers) UnsubscribeStockAlert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.catalog.UnsubscribeStockAlert(r.Context(), userID, r.PathValue("productID")); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "unsubscribed"})
}

// Sitemap

func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	body, err := h.sitemap.Render(r.Context())
	if err != nil {
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func productFilters(r *http.Request) *store.ProductFilters {
	q := r.URL.Query()
	f := &store.ProductFilters{
		Category:    q.Get("category"),
		Series:      q.Get("series"),
		SearchQuery: q.Get("q"),
		SortBy:      q.Get("sort"),
		SortOrder:   q.Get("order"),
		Page:        1,
		PageSize:    20,
	}
	if raw := q.Get("on_sale"); raw != "" {
		onSale := raw == "true" || raw == "1"
		f.OnSale = &onSale
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		f.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil && size > 0 && size <= 100 {
		f.PageSize = size
	}
	return f
}
