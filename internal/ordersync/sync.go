// Package ordersync reconciles iute loan-application status with the
// matching Shopify order. Both the webhook path and the poll driver run
// through the same orchestrator.
package ordersync

import (
	"context"

	"iutesync/internal/iute"
	"iutesync/internal/metrics"
	"iutesync/internal/model"
)

// ReasonOrderNotFound is reported when no Shopify order carries the
// correlation tag yet. It is an expected condition, not an error: orders
// are tagged out-of-band and may lag the first webhook.
const ReasonOrderNotFound = "order not found"

// Provider fetches loan-application status from iute.
type Provider interface {
	LoanApplicationStatus(ctx context.Context, orderID string) (map[string]any, error)
}

// Commerce applies order mutations on the Shopify side.
type Commerce interface {
	FindOrderByIuteID(ctx context.Context, iuteOrderID string) (*model.OrderRef, error)
	AddOrderTag(ctx context.Context, orderGID, tag string) error
	UpdateOrderNote(ctx context.Context, orderGID, note string) error
	CancelOrder(ctx context.Context, orderGID, staffNote string) error
}

// Orchestrator performs one status sync per call. It holds no per-order
// state: the action is recomputed from the current provider status alone,
// so repeating a sync converges rather than duplicating effects.
type Orchestrator struct {
	Provider Provider
	Commerce Commerce
	// Locks serializes syncs of the same order id when a webhook and a
	// poll cycle fire together. Nil disables locking.
	Locks OrderLocks
}

// SyncOne fetches the current loan status for iuteOrderID, resolves the
// tagged Shopify order, and applies the mapped action. A missing order is
// reported as a failed result with nil error; provider and commerce
// failures propagate to the caller.
func (o *Orchestrator) SyncOne(ctx context.Context, iuteOrderID string) (model.SyncResult, error) {
	if o.Locks != nil {
		release, err := o.Locks.Acquire(ctx, iuteOrderID)
		if err != nil {
			return model.SyncResult{IuteOrderID: iuteOrderID, Reason: "sync already in progress"}, err
		}
		defer release()
	}

	payload, err := o.Provider.LoanApplicationStatus(ctx, iuteOrderID)
	if err != nil {
		metrics.Syncs.WithLabelValues("", "error").Inc()
		return model.SyncResult{IuteOrderID: iuteOrderID}, err
	}
	status := iute.NormalizeStatus(payload)

	order, err := o.Commerce.FindOrderByIuteID(ctx, iuteOrderID)
	if err != nil {
		metrics.Syncs.WithLabelValues(string(status), "error").Inc()
		return model.SyncResult{IuteOrderID: iuteOrderID, Status: status}, err
	}
	if order == nil {
		metrics.Syncs.WithLabelValues(string(status), "order_not_found").Inc()
		return model.SyncResult{IuteOrderID: iuteOrderID, Status: status, Reason: ReasonOrderNotFound}, nil
	}

	if err := o.apply(ctx, order.GID, status, iute.RawStatus(payload)); err != nil {
		metrics.Syncs.WithLabelValues(string(status), "error").Inc()
		return model.SyncResult{IuteOrderID: iuteOrderID, Status: status}, err
	}
	metrics.Syncs.WithLabelValues(string(status), "ok").Inc()
	return model.SyncResult{OK: true, IuteOrderID: iuteOrderID, Status: status}, nil
}
