package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/otaku-market/internal/api/middleware"
	"github.com/example/otaku-market/internal/model"
)

type AddressRequest struct {
	Label     string `json:"label"`
	Recipient string `json:"recipient"`
	Street    string `json:"street"`
	City      string `json:"city"`
	ZipCode   string `json:"zip_code"`
	IsDefault bool   `json:"is_default"`
}

func (r AddressRequest) validate() string {
	switch {
	case r.Recipient == "":
		return "recipient is required"
	case r.Street == "":
		return "street is required"
	case r.City == "":
		return "city is required"
	case r.ZipCode == "":
		return "zip_code is required"
	}
	return ""
}

func (h *Handlers) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	addresses, err := h.addresses.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (h *Handlers) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	now := time.Now()
	address := &model.Address{
		UserID:    middleware.GetUserID(r.Context()),
		Label:     req.Label,
		Recipient: req.Recipient,
		Street:    req.Street,
		City:      req.City,
		ZipCode:   req.ZipCode,
		IsDefault: req.IsDefault,
	}
	address.ID = uuid.NewString()
	address.CreatedAt = now
	address.UpdatedAt = now

	if err := h.addresses.Create(r.Context(), address); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, address)
}

func (h *Handlers) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	userID := middleware.GetUserID(r.Context())
	address, err := h.addresses.FindByID(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	address.Label = req.Label
	address.Recipient = req.Recipient
	address.Street = req.Street
	address.City = req.City
	address.ZipCode = req.ZipCode
	address.IsDefault = req.IsDefault
	address.UpdatedAt = time.Now()

	if err := h.addresses.Update(r.Context(), address); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, address)
}

func (h *Handlers) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if err := h.addresses.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "address deleted"})
}
