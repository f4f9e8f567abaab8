package shared

import (
	"testing"
	"time"
)

func TestValidatorDateAcceptsBothFormats(t *testing.T) {
	v := NewValidator()

	plain, ok := v.Date("validFrom", "2026-01-15")
	if !ok || !plain.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected plain date to parse, got (%v, %v)", plain, ok)
	}

	stamped, ok := v.Date("validTo", "2026-01-15T10:30:00Z")
	if !ok || stamped.Hour() != 10 {
		t.Fatalf("expected RFC3339 value to parse, got (%v, %v)", stamped, ok)
	}
	if v.HasIssues() {
		t.Fatalf("no issues expected, got %v", v.Issues())
	}
}

func TestValidatorDateRejectsGarbage(t *testing.T) {
	v := NewValidator()

	for _, raw := range []string{"", "  ", "15/01/2026", "not-a-date"} {
		if _, ok := v.Date("validFrom", raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
	if len(v.Issues()) != 4 {
		t.Fatalf("expected one issue per bad value, got %v", v.Issues())
	}
}

func TestValidatorDateOrder(t *testing.T) {
	v := NewValidator()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	v.DateOrder("validFrom", start, "validTo", end)
	if !v.HasIssues() {
		t.Fatal("expected inverted range to be flagged")
	}

	ordered := NewValidator()
	ordered.DateOrder("validFrom", end, "validTo", start)
	ordered.DateOrder("validFrom", start, "validTo", start)
	if ordered.HasIssues() {
		t.Fatalf("ordered and equal bounds are valid, got %v", ordered.Issues())
	}
}
