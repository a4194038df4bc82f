package domain

import (
	"testing"
	"time"
)

func TestNormalizeAccount(t *testing.T) {
	cases := map[string]string{
		" Dana@Example.COM ": "dana@example.com",
		"dana@example.com":   "dana@example.com",
		"   ":                "",
	}
	for input, want := range cases {
		if got := NormalizeAccount(input); got != want {
			t.Fatalf("NormalizeAccount(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseFeature(t *testing.T) {
	if f, err := ParseFeature(" Vision "); err != nil || f != FeatureVision {
		t.Fatalf("expected vision, got %q (%v)", f, err)
	}
	if f, err := ParseFeature("premium"); err != nil || f != FeaturePremium {
		t.Fatalf("expected premium, got %q (%v)", f, err)
	}
	if _, err := ParseFeature("sauna"); err == nil {
		t.Fatal("unknown feature should be rejected")
	}
	if _, err := ParseFeature(""); err == nil {
		t.Fatal("empty feature should be rejected")
	}
}

func TestGrantActiveBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	g := Grant{ExpiresAt: now.Add(time.Second)}
	if !g.Active(now) {
		t.Fatal("grant expiring after now is active")
	}

	g = Grant{ExpiresAt: now}
	if g.Active(now) {
		t.Fatal("grant expiring exactly now is expired")
	}
}
