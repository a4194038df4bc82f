package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/api/middleware"
	"github.com/renohub/renohub/internal/service"
)

// DiscountHandler handles discount code validation and consumption
type DiscountHandler struct {
	discountService *service.DiscountService
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discountService *service.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
	}
}

type discountRequest struct {
	Code string `json:"code"`
}

// Redeem validates a discount code for the authenticated account
func (h *DiscountHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.discountService.Redeem(r.Context(), req.Code, middleware.GetAccount(r.Context()))
	if err != nil {
		log.Error().Err(err).Msg("Failed to validate discount code")
		respondError(w, http.StatusInternalServerError, "Failed to validate discount code")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Consume marks a discount code as used after a confirmed purchase
func (h *DiscountHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.discountService.MarkUsed(r.Context(), req.Code)
	if err != nil {
		log.Error().Err(err).Msg("Failed to consume discount code")
		respondError(w, http.StatusInternalServerError, "Failed to consume discount code")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
