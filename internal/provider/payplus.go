// Package provider talks to the payment provider's REST API and maps its
// wire payloads onto the reconciler's event shape. The webhook push and
// the polling fallback both normalize through here, so the reconciler has
// exactly one entry point.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/renohub/renohub/internal/domain"
)

// FlexString accepts both string and bare-number JSON encodings. The
// provider is not consistent between its callback and status endpoints.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		*s = FlexString(val)
	case float64:
		*s = FlexString(strconv.FormatFloat(val, 'f', -1, 64))
	case nil:
		*s = ""
	default:
		return fmt.Errorf("unsupported value %v", v)
	}
	return nil
}

// Notification is the provider's callback payload. The provider smuggles
// application data through its free-form more_info fields: more_info is
// the product class, more_info_1 the purchaser account, more_info_3 an
// optional discount code.
type Notification struct {
	TransactionUID string     `json:"transaction_uid"`
	PageRequestUID string     `json:"page_request_uid"`
	StatusCode     FlexString `json:"status_code"`
	Amount         FlexString `json:"amount"`
	MoreInfo       string     `json:"more_info"`
	MoreInfo1      string     `json:"more_info_1"`
	MoreInfo3      string     `json:"more_info_3"`
	Type           string     `json:"type"`
	RecurringID    string     `json:"recurring_id"`
}

// Event converts the wire payload to a provider event
func (n *Notification) Event() *domain.ProviderEvent {
	transactionID := n.TransactionUID
	if transactionID == "" {
		transactionID = n.RecurringID
	}
	if transactionID == "" {
		transactionID = n.PageRequestUID
	}

	productClass := domain.ProductClass(n.MoreInfo)
	if productClass == "" && n.Type == "recurring_payment" {
		// Subscription renewals arrive without a product field
		productClass = domain.ProductVision
	}

	var amountCents int
	if f, err := strconv.ParseFloat(string(n.Amount), 64); err == nil {
		amountCents = int(math.Round(f * 100))
	}

	return &domain.ProviderEvent{
		TransactionID: transactionID,
		StatusCode:    string(n.StatusCode),
		Account:       n.MoreInfo1,
		ProductClass:  productClass,
		DiscountCode:  n.MoreInfo3,
		Cancellation:  n.Type == "recurring_cancel",
		AmountCents:   amountCents,
	}
}

// Client polls the provider's transaction status endpoint. It is the
// fallback path for notifications whose push callback was delayed or lost.
type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new provider client
func NewClient(apiKey, secretKey, baseURL string) *Client {
	return &Client{
		apiKey:    apiKey,
		secretKey: secretKey,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type ipnResponse struct {
	Data struct {
		Notification
		Transaction *Notification `json:"transaction"`
	} `json:"data"`
}

// Fetch retrieves the current status of a transaction by its page request
// id and returns it as the same event shape the webhook produces
func (c *Client) Fetch(ctx context.Context, pageRequestUID string) (*domain.ProviderEvent, error) {
	body, err := json.Marshal(map[string]string{"payment_request_uid": pageRequestUID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode status request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/PaymentPages/ipn", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("secret-key", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var ipn ipnResponse
	if err := json.NewDecoder(resp.Body).Decode(&ipn); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	// The status endpoint sometimes nests the payload one level deeper
	notification := &ipn.Data.Notification
	if ipn.Data.Transaction != nil {
		notification = ipn.Data.Transaction
	}

	event := notification.Event()
	if event.TransactionID == "" {
		event.TransactionID = pageRequestUID
	}

	return event, nil
}
