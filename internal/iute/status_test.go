package iute

import (
	"testing"

	"iutesync/internal/model"
)

func TestNormalizeStatusMapping(t *testing.T) {
	cases := []struct {
		payload map[string]any
		want    model.Status
	}{
		{map[string]any{"status": "PENDING"}, model.StatusPending},
		{map[string]any{"status": "IN PROGRESS"}, model.StatusInProgress},
		{map[string]any{"status": "IN_PROGRESS"}, model.StatusInProgress},
		{map[string]any{"status": "PAID"}, model.StatusPaid},
		{map[string]any{"status": "SIGNED"}, model.StatusPaid},
		{map[string]any{"status": "APPROVED"}, model.StatusPaid},
		{map[string]any{"status": "CANCELLED"}, model.StatusCancelled},
		{map[string]any{"status": "CANCELED"}, model.StatusCancelled},
		{map[string]any{"status": "SOMETHING_ELSE"}, model.StatusUnknown},
	}
	for _, c := range cases {
		if got := NormalizeStatus(c.payload); got != c.want {
			t.Fatalf("normalize %v: got %s want %s", c.payload, got, c.want)
		}
	}
}

func TestNormalizeStatusCaseInsensitive(t *testing.T) {
	for _, raw := range []string{"paid", "PAID", "Paid", "pAiD"} {
		if got := NormalizeStatus(map[string]any{"status": raw}); got != model.StatusPaid {
			t.Fatalf("normalize %q: got %s want PAID", raw, got)
		}
	}
}

func TestNormalizeStatusFieldProbing(t *testing.T) {
	// status wins over applicationStatus wins over state
	p := map[string]any{"status": "paid", "applicationStatus": "cancelled", "state": "pending"}
	if got := NormalizeStatus(p); got != model.StatusPaid {
		t.Fatalf("probing: got %s want PAID", got)
	}
	p = map[string]any{"applicationStatus": "cancelled", "state": "pending"}
	if got := NormalizeStatus(p); got != model.StatusCancelled {
		t.Fatalf("probing: got %s want CANCELLED", got)
	}
	p = map[string]any{"state": "pending"}
	if got := NormalizeStatus(p); got != model.StatusPending {
		t.Fatalf("probing: got %s want PENDING", got)
	}
	// empty strings are skipped
	p = map[string]any{"status": "", "state": "signed"}
	if got := NormalizeStatus(p); got != model.StatusPaid {
		t.Fatalf("empty field: got %s want PAID", got)
	}
}

func TestNormalizeStatusNeverFails(t *testing.T) {
	for _, p := range []map[string]any{
		nil,
		{},
		{"unrelated": "x"},
		{"status": 42},
		{"status": map[string]any{"nested": true}},
		{"status": nil},
	} {
		if got := NormalizeStatus(p); got != model.StatusUnknown {
			t.Fatalf("garbage %v: got %s want UNKNOWN", p, got)
		}
	}
}

func TestRawStatusUppercases(t *testing.T) {
	if got := RawStatus(map[string]any{"status": "signed"}); got != "SIGNED" {
		t.Fatalf("raw: got %q want SIGNED", got)
	}
	if got := RawStatus(map[string]any{}); got != "" {
		t.Fatalf("raw empty: got %q", got)
	}
}
