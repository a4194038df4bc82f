package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/domain"
	"github.com/renohub/renohub/internal/repository"
	"github.com/renohub/renohub/internal/service"
)

// AdminHandler handles operator endpoints
type AdminHandler struct {
	accountRepo        *repository.AccountRepository
	entitlementService *service.EntitlementService
	telemetryService   *service.TelemetryService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(accountRepo *repository.AccountRepository, entitlementService *service.EntitlementService, telemetryService *service.TelemetryService) *AdminHandler {
	return &AdminHandler{
		accountRepo:        accountRepo,
		entitlementService: entitlementService,
		telemetryService:   telemetryService,
	}
}

type premiumRequest struct {
	Account string `json:"account"`
}

// AddPremium sets the permanent premium flag on an account
func (h *AdminHandler) AddPremium(w http.ResponseWriter, r *http.Request) {
	var req premiumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account := domain.NormalizeAccount(req.Account)
	if account == "" {
		respondError(w, http.StatusBadRequest, "account is required")
		return
	}

	if err := h.accountRepo.SetPermanentFlag(r.Context(), account, true); err != nil {
		log.Error().Err(err).Str("account", account).Msg("Failed to set premium flag")
		respondError(w, http.StatusInternalServerError, "Failed to set premium flag")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"premium": true,
	})
}

// RemovePremium clears the permanent premium flag on an account
func (h *AdminHandler) RemovePremium(w http.ResponseWriter, r *http.Request) {
	var req premiumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account := domain.NormalizeAccount(req.Account)
	if account == "" {
		respondError(w, http.StatusBadRequest, "account is required")
		return
	}

	if err := h.accountRepo.SetPermanentFlag(r.Context(), account, false); err != nil {
		log.Error().Err(err).Str("account", account).Msg("Failed to clear premium flag")
		respondError(w, http.StatusInternalServerError, "Failed to clear premium flag")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account": account,
		"premium": false,
	})
}

type grantRequest struct {
	Account string `json:"account"`
	Feature string `json:"feature"`
	Days    int    `json:"days"`
}

// AddGrant issues or extends a time-boxed feature grant
func (h *AdminHandler) AddGrant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	feature, err := domain.ParseFeature(req.Feature)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown feature")
		return
	}

	grant, err := h.entitlementService.ExtendGrant(r.Context(), req.Account, feature, req.Days)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAccount) || errors.Is(err, service.ErrInvalidGrant) {
			respondError(w, http.StatusBadRequest, "account and a positive number of days are required")
			return
		}
		log.Error().Err(err).Str("account", req.Account).Msg("Failed to extend grant")
		respondError(w, http.StatusInternalServerError, "Failed to extend grant")
		return
	}

	respondJSON(w, http.StatusCreated, grant)
}

// Stats returns account totals and the current usage snapshot
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accountRepo.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load account stats")
		respondError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accounts":  stats,
		"usage":     h.telemetryService.Snapshot(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
