package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/renohub/renohub/internal/provider"
	"github.com/renohub/renohub/internal/service"
)

// PaymentHandler handles payment-provider notifications, both the push
// webhook and the on-demand status poll
type PaymentHandler struct {
	paymentService *service.PaymentService
	providerClient *provider.Client
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService, providerClient *provider.Client) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		providerClient: providerClient,
	}
}

// Webhook receives provider push notifications. Failures return 5xx so
// the provider redelivers the whole notification.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	notification, err := decodeNotification(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid notification payload")
		return
	}

	result, err := h.paymentService.ApplyNotification(r.Context(), notification.Event())
	if err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			respondError(w, http.StatusBadRequest, "Notification missing transaction or account")
			return
		}
		log.Error().Err(err).Msg("Failed to apply provider notification")
		respondError(w, http.StatusInternalServerError, "Failed to apply notification")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

type checkRequest struct {
	PageRequestUID string `json:"page_request_uid"`
}

// Check polls the provider for a transaction's current status and feeds
// the result through the same reconciliation path as the webhook
func (h *PaymentHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PageRequestUID == "" {
		respondError(w, http.StatusBadRequest, "page_request_uid is required")
		return
	}

	event, err := h.providerClient.Fetch(r.Context(), req.PageRequestUID)
	if err != nil {
		log.Error().Err(err).Str("page_request_uid", req.PageRequestUID).Msg("Failed to fetch transaction status")
		respondError(w, http.StatusBadGateway, "Failed to query payment provider")
		return
	}

	result, err := h.paymentService.ApplyNotification(r.Context(), event)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEvent) {
			respondError(w, http.StatusBadRequest, "Transaction missing account details")
			return
		}
		log.Error().Err(err).Msg("Failed to apply provider notification")
		respondError(w, http.StatusInternalServerError, "Failed to apply notification")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// decodeNotification accepts both encodings the provider sends: JSON for
// IPN callbacks, form-urlencoded for redirect-style callbacks
func decodeNotification(r *http.Request) (*provider.Notification, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return &provider.Notification{
			TransactionUID: r.PostFormValue("transaction_uid"),
			PageRequestUID: r.PostFormValue("page_request_uid"),
			StatusCode:     provider.FlexString(r.PostFormValue("status_code")),
			Amount:         provider.FlexString(r.PostFormValue("amount")),
			MoreInfo:       r.PostFormValue("more_info"),
			MoreInfo1:      r.PostFormValue("more_info_1"),
			MoreInfo3:      r.PostFormValue("more_info_3"),
			Type:           r.PostFormValue("type"),
			RecurringID:    r.PostFormValue("recurring_id"),
		}, nil
	}

	var notification provider.Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		return nil, err
	}
	return &notification, nil
}
