package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/renohub/renohub/internal/domain"
)

func TestNotificationEventMapping(t *testing.T) {
	n := &Notification{
		TransactionUID: "tx-1",
		PageRequestUID: "page-1",
		StatusCode:     "0",
		Amount:         "49.90",
		MoreInfo:       "premium",
		MoreInfo1:      "dana@example.com",
		MoreInfo3:      "RENO20",
	}

	event := n.Event()
	if event.TransactionID != "tx-1" {
		t.Fatalf("expected transaction_uid to win, got %q", event.TransactionID)
	}
	if event.ProductClass != domain.ProductPremium {
		t.Fatalf("unexpected product class %q", event.ProductClass)
	}
	if event.Account != "dana@example.com" {
		t.Fatalf("unexpected account %q", event.Account)
	}
	if event.DiscountCode != "RENO20" {
		t.Fatalf("unexpected discount code %q", event.DiscountCode)
	}
	if event.AmountCents != 4990 {
		t.Fatalf("expected 4990 cents, got %d", event.AmountCents)
	}
	if !event.Succeeded() {
		t.Fatal("status code 0 means success")
	}
	if event.Cancellation {
		t.Fatal("plain purchase is not a cancellation")
	}
}

func TestNotificationDecodesMixedEncodings(t *testing.T) {
	payload := `{"transaction_uid":"tx-1","status_code":0,"amount":"49.90"}`

	var n Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.StatusCode != "0" {
		t.Fatalf("numeric status_code should decode, got %q", n.StatusCode)
	}
	if n.Amount != "49.90" {
		t.Fatalf("string amount should decode, got %q", n.Amount)
	}
}

func TestNotificationEventTransactionIDFallback(t *testing.T) {
	n := &Notification{RecurringID: "rec-1", PageRequestUID: "page-1"}
	if got := n.Event().TransactionID; got != "rec-1" {
		t.Fatalf("expected recurring_id fallback, got %q", got)
	}

	n = &Notification{PageRequestUID: "page-1"}
	if got := n.Event().TransactionID; got != "page-1" {
		t.Fatalf("expected page_request_uid fallback, got %q", got)
	}
}

func TestNotificationEventRecurringRenewal(t *testing.T) {
	n := &Notification{
		TransactionUID: "tx-2",
		StatusCode:     "000",
		MoreInfo1:      "dana@example.com",
		Type:           "recurring_payment",
	}

	event := n.Event()
	if event.ProductClass != domain.ProductVision {
		t.Fatalf("renewal without a product field should map to vision, got %q", event.ProductClass)
	}
	if !event.Succeeded() {
		t.Fatal("status code 000 means success")
	}
}

func TestNotificationEventCancellation(t *testing.T) {
	n := &Notification{
		TransactionUID: "tx-3",
		MoreInfo1:      "dana@example.com",
		Type:           "recurring_cancel",
	}

	if !n.Event().Cancellation {
		t.Fatal("recurring_cancel should map to a cancellation event")
	}
}

func TestFetchNestedTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/PaymentPages/ipn" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("api-key") != "key" || r.Header.Get("secret-key") != "secret" {
			t.Error("missing provider credentials")
		}

		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["payment_request_uid"] != "page-1" {
			t.Errorf("unexpected request uid %q", req["payment_request_uid"])
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"status_code": "999",
				"transaction": map[string]interface{}{
					"transaction_uid": "tx-9",
					"status_code":     "0",
					"more_info":       "vision_pass",
					"more_info_1":     "dana@example.com",
					"amount":          12.5,
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)

	event, err := client.Fetch(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	// The nested transaction object wins over the outer payload
	if event.TransactionID != "tx-9" {
		t.Fatalf("unexpected transaction id %q", event.TransactionID)
	}
	if event.ProductClass != domain.ProductVisionPass {
		t.Fatalf("unexpected product class %q", event.ProductClass)
	}
	if event.AmountCents != 1250 {
		t.Fatalf("expected 1250 cents, got %d", event.AmountCents)
	}
	if !event.Succeeded() {
		t.Fatal("nested status code 0 means success")
	}
}

func TestFetchBackfillsTransactionID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"status_code": "1",
				"more_info_1": "dana@example.com",
			},
		})
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)

	event, err := client.Fetch(context.Background(), "page-2")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if event.TransactionID != "page-2" {
		t.Fatalf("expected the page request uid as fallback id, got %q", event.TransactionID)
	}
	if event.Succeeded() {
		t.Fatal("status code 1 is not success")
	}
}

func TestFetchProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("key", "secret", server.URL)

	if _, err := client.Fetch(context.Background(), "page-3"); err == nil {
		t.Fatal("expected error for provider failure status")
	}
}
