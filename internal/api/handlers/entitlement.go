package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/api/middleware"
	"github.com/renohub/renohub/internal/domain"
	"github.com/renohub/renohub/internal/service"
)

// EntitlementHandler handles entitlement resolution requests
type EntitlementHandler struct {
	entitlementService *service.EntitlementService
}

// NewEntitlementHandler creates a new entitlement handler
func NewEntitlementHandler(entitlementService *service.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
	}
}

// Check resolves whether the authenticated account has access to a feature
func (h *EntitlementHandler) Check(w http.ResponseWriter, r *http.Request) {
	feature, err := domain.ParseFeature(chi.URLParam(r, "feature"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown feature")
		return
	}

	account := middleware.GetAccount(r.Context())

	decision, err := h.entitlementService.ResolveAccess(r.Context(), account, feature)
	if err != nil {
		log.Error().Err(err).Str("account", account).Str("feature", string(feature)).Msg("Failed to resolve access")
		respondError(w, http.StatusInternalServerError, "Failed to resolve access")
		return
	}

	respondJSON(w, http.StatusOK, decision)
}
