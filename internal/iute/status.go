package iute

import (
	"strings"

	"iutesync/internal/model"
)

// statusFields are probed in order; the first present, non-empty one wins.
// Field names are case-sensitive as received from the provider.
var statusFields = []string{"status", "applicationStatus", "state"}

// RawStatus extracts the status string from a loosely-structured provider
// payload and upper-cases it. Missing or non-string fields yield "".
func RawStatus(payload map[string]any) string {
	for _, f := range statusFields {
		if v, ok := payload[f].(string); ok && v != "" {
			return strings.ToUpper(v)
		}
	}
	return ""
}

// NormalizeStatus collapses a raw provider payload into a canonical Status.
// It never fails: partial or variant payloads are expected in production,
// so anything unrecognized degrades to StatusUnknown.
func NormalizeStatus(payload map[string]any) model.Status {
	switch RawStatus(payload) {
	case "PENDING":
		return model.StatusPending
	case "IN PROGRESS", "IN_PROGRESS":
		return model.StatusInProgress
	case "PAID", "SIGNED", "APPROVED":
		return model.StatusPaid
	case "CANCELLED", "CANCELED":
		return model.StatusCancelled
	default:
		return model.StatusUnknown
	}
}
