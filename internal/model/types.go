package model

// Status is the canonical loan-application status this service reasons
// about. Raw provider payloads are collapsed into this closed set at the
// boundary and never leak past it.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaid       Status = "PAID"
	StatusCancelled  Status = "CANCELLED"
	StatusUnknown    Status = "UNKNOWN"
)

// OrderRef identifies a Shopify order matched by its correlation tag.
// The GID is the Admin API global id used in mutations.
type OrderRef struct {
	GID               string   `json:"id"`
	Name              string   `json:"name"`
	FinancialStatus   string   `json:"displayFinancialStatus,omitempty"`
	FulfillmentStatus string   `json:"displayFulfillmentStatus,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// SyncResult reports the outcome of syncing one iute order. It is returned
// to the HTTP responder or the poll driver and never persisted.
type SyncResult struct {
	OK          bool   `json:"ok"`
	IuteOrderID string `json:"iuteOrderId"`
	Status      Status `json:"iuteStatus,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// ProductMapping links an iute loan product to a shop SKU. Managed through
// the provider's mapping endpoints and passed through by this service.
type ProductMapping struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
}
