package ordersync

import (
	"context"

	"iutesync/internal/model"
)

// StatusTag is the order tag recording the last synced canonical status.
func StatusTag(status model.Status) string {
	return "IUTE_STATUS:" + string(status)
}

// apply maps a canonical status to its Shopify action. Tags are
// set-semantics at Shopify, so every branch is safe to repeat; Unknown
// deliberately does nothing.
func (o *Orchestrator) apply(ctx context.Context, orderGID string, status model.Status, raw string) error {
	note := "Iute status: " + raw
	switch status {
	case model.StatusPending, model.StatusInProgress:
		return o.Commerce.AddOrderTag(ctx, orderGID, StatusTag(status))
	case model.StatusPaid:
		if err := o.Commerce.UpdateOrderNote(ctx, orderGID, note); err != nil {
			return err
		}
		return o.Commerce.AddOrderTag(ctx, orderGID, StatusTag(status))
	case model.StatusCancelled:
		if err := o.Commerce.CancelOrder(ctx, orderGID, note); err != nil {
			return err
		}
		return o.Commerce.AddOrderTag(ctx, orderGID, StatusTag(status))
	default:
		return nil
	}
}
