package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/renohub/renohub/internal/domain"
)

type fakeDiscountStore struct {
	codes map[string]*domain.DiscountCode
}

func newFakeDiscountStore() *fakeDiscountStore {
	return &fakeDiscountStore{codes: make(map[string]*domain.DiscountCode)}
}

func (f *fakeDiscountStore) GetCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	return f.codes[code], nil
}

func (f *fakeDiscountStore) MarkUsed(ctx context.Context, code string) (bool, error) {
	dc, ok := f.codes[code]
	if !ok || dc.UsedAt != nil {
		return false, nil
	}
	usedAt := time.Now()
	dc.UsedAt = &usedAt
	return true, nil
}

func newTestDiscountService(store *fakeDiscountStore, now time.Time) *DiscountService {
	s := NewDiscountService(store)
	s.now = func() time.Time { return now }
	return s
}

func TestRedeemValidCode(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeDiscountStore()
	store.codes["RENO20"] = &domain.DiscountCode{
		Code:            "RENO20",
		OwnerAccount:    "dana@example.com",
		DiscountPercent: 20,
		ExpiresAt:       now.Add(24 * time.Hour),
	}

	s := newTestDiscountService(store, now)

	// Input is normalized: lower-case code, differently-cased account
	result, err := s.Redeem(context.Background(), " reno20 ", "Dana@Example.com")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !result.Valid || result.DiscountPercent != 20 {
		t.Fatalf("expected valid result with 20%%, got %+v", result)
	}

	// Redeem is read-only, repeated calls keep succeeding
	result, err = s.Redeem(context.Background(), "RENO20", "dana@example.com")
	if err != nil {
		t.Fatalf("second redeem: %v", err)
	}
	if !result.Valid {
		t.Fatal("redeem must not consume the code")
	}
}

func TestRedeemFailuresAreIndistinguishable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	usedAt := now.Add(-time.Hour)
	store := newFakeDiscountStore()
	store.codes["OWNED"] = &domain.DiscountCode{
		Code: "OWNED", OwnerAccount: "other@example.com", DiscountPercent: 10, ExpiresAt: now.Add(24 * time.Hour),
	}
	store.codes["USED"] = &domain.DiscountCode{
		Code: "USED", OwnerAccount: "dana@example.com", DiscountPercent: 10, ExpiresAt: now.Add(24 * time.Hour), UsedAt: &usedAt,
	}
	store.codes["EXPIRED"] = &domain.DiscountCode{
		Code: "EXPIRED", OwnerAccount: "dana@example.com", DiscountPercent: 10, ExpiresAt: now,
	}

	s := newTestDiscountService(store, now)

	var results []*domain.RedeemResult
	for _, code := range []string{"NOSUCH", "OWNED", "USED", "EXPIRED", ""} {
		result, err := s.Redeem(context.Background(), code, "dana@example.com")
		if err != nil {
			t.Fatalf("redeem %q: %v", code, err)
		}
		results = append(results, result)
	}

	// Anti-enumeration: every failure mode must produce the same payload
	for i, result := range results {
		if result.Valid {
			t.Fatalf("result %d should be invalid", i)
		}
		if !reflect.DeepEqual(result, results[0]) {
			t.Fatalf("failure payloads differ: %+v vs %+v", result, results[0])
		}
	}
}

func TestRedeemCodeExpiringNowIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeDiscountStore()
	store.codes["EDGE"] = &domain.DiscountCode{
		Code: "EDGE", OwnerAccount: "dana@example.com", DiscountPercent: 10, ExpiresAt: now,
	}

	s := newTestDiscountService(store, now)

	result, err := s.Redeem(context.Background(), "EDGE", "dana@example.com")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if result.Valid {
		t.Fatal("a code expiring exactly now must be treated as expired")
	}
}

func TestMarkUsedConsumesOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeDiscountStore()
	store.codes["RENO20"] = &domain.DiscountCode{
		Code: "RENO20", OwnerAccount: "dana@example.com", DiscountPercent: 20, ExpiresAt: now.Add(24 * time.Hour),
	}

	s := newTestDiscountService(store, now)

	first, err := s.MarkUsed(context.Background(), "reno20")
	if err != nil {
		t.Fatalf("mark used: %v", err)
	}
	if !first.Valid {
		t.Fatal("first consume should win")
	}

	second, err := s.MarkUsed(context.Background(), "RENO20")
	if err != nil {
		t.Fatalf("second mark used: %v", err)
	}
	if second.Valid {
		t.Fatal("second consume must lose the race and get the generic invalid result")
	}
}
