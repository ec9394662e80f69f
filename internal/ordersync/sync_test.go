package ordersync

import (
	"context"
	"errors"
	"testing"

	"iutesync/internal/model"
)

type fakeProvider struct {
	payloads map[string]map[string]any
	errs     map[string]error
	calls    int
}

func (p *fakeProvider) LoanApplicationStatus(_ context.Context, orderID string) (map[string]any, error) {
	p.calls++
	if err := p.errs[orderID]; err != nil {
		return nil, err
	}
	return p.payloads[orderID], nil
}

// fakeCommerce records every mutation in call order.
type fakeCommerce struct {
	order   *model.OrderRef
	findErr error
	mutErr  error
	ops     []string // "tag:<v>", "note:<v>", "cancel:<v>"
}

func (c *fakeCommerce) FindOrderByIuteID(_ context.Context, _ string) (*model.OrderRef, error) {
	return c.order, c.findErr
}
func (c *fakeCommerce) AddOrderTag(_ context.Context, _, tag string) error {
	c.ops = append(c.ops, "tag:"+tag)
	return c.mutErr
}
func (c *fakeCommerce) UpdateOrderNote(_ context.Context, _, note string) error {
	c.ops = append(c.ops, "note:"+note)
	return c.mutErr
}
func (c *fakeCommerce) CancelOrder(_ context.Context, _, staffNote string) error {
	c.ops = append(c.ops, "cancel:"+staffNote)
	return c.mutErr
}

func orderRef() *model.OrderRef {
	return &model.OrderRef{GID: "gid://shopify/Order/1", Name: "#1001"}
}

func orch(p Provider, c Commerce) *Orchestrator {
	return &Orchestrator{Provider: p, Commerce: c, Locks: NewMemoryLocks()}
}

func TestSyncOneInProgress(t *testing.T) {
	p := &fakeProvider{payloads: map[string]map[string]any{"42": {"status": "IN PROGRESS"}}}
	c := &fakeCommerce{order: orderRef()}
	res, err := orch(p, c).SyncOne(context.Background(), "42")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.OK || res.Status != model.StatusInProgress {
		t.Fatalf("result: %+v", res)
	}
	if len(c.ops) != 1 || c.ops[0] != "tag:IUTE_STATUS:IN_PROGRESS" {
		t.Fatalf("ops: %v", c.ops)
	}
}

func TestSyncOneSignedIsPaid(t *testing.T) {
	p := &fakeProvider{payloads: map[string]map[string]any{"42": {"status": "SIGNED"}}}
	c := &fakeCommerce{order: orderRef()}
	res, err := orch(p, c).SyncOne(context.Background(), "42")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.OK || res.Status != model.StatusPaid {
		t.Fatalf("result: %+v", res)
	}
	want := []string{"note:Iute status: SIGNED", "tag:IUTE_STATUS:PAID"}
	if len(c.ops) != 2 || c.ops[0] != want[0] || c.ops[1] != want[1] {
		t.Fatalf("ops: %v want %v", c.ops, want)
	}
}

func TestSyncOneCancelled(t *testing.T) {
	p := &fakeProvider{payloads: map[string]map[string]any{"42": {"applicationStatus": "canceled"}}}
	c := &fakeCommerce{order: orderRef()}
	res, err := orch(p, c).SyncOne(context.Background(), "42")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.OK || res.Status != model.StatusCancelled {
		t.Fatalf("result: %+v", res)
	}
	want := []string{"cancel:Iute status: CANCELED", "tag:IUTE_STATUS:CANCELLED"}
	if len(c.ops) != 2 || c.ops[0] != want[0] || c.ops[1] != want[1] {
		t.Fatalf("ops: %v want %v", c.ops, want)
	}
}

func TestSyncOneUnknownNoAction(t *testing.T) {
	p := &fakeProvider{payloads: map[string]map[string]any{"42": {"status": "WEIRD"}}}
	c := &fakeCommerce{order: orderRef()}
	res, err := orch(p, c).SyncOne(context.Background(), "42")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.OK || res.Status != model.StatusUnknown {
		t.Fatalf("result: %+v", res)
	}
	if len(c.ops) != 0 {
		t.Fatalf("unknown status must not mutate: %v", c.ops)
	}
}

func TestSyncOneOrderNotFound(t *testing.T) {
	p := &fakeProvider{payloads: map[string]map[string]any{"42": {"status": "PAID"}}}
	c := &fakeCommerce{order: nil}
	res, err := orch(p, c).SyncOne(context.Background(), "42")
	if err != nil {
		t.Fatalf("missing order is not an error: %v", err)
	}
	if res.OK || res.Reason != ReasonOrderNotFound {
		t.Fatalf("result: %+v", res)
	}
	if len(c.ops) != 0 {
		t.Fatalf("missing order must not mutate: %v", c.ops)
	}
}

func TestSyncOneProviderError(t *testing.T) {
	boom := errors.New("provider down")
	p := &fakeProvider{errs: map[string]error{"42": boom}}
	c := &fakeCommerce{order: orderRef()}
	res, err := orch(p, c).SyncOne(context.Background(), "42")
	if !errors.Is(err, boom) {
		t.Fatalf("got %v want provider error", err)
	}
	if res.OK {
		t.Fatalf("result: %+v", res)
	}
	if len(c.ops) != 0 {
		t.Fatalf("no mutations after provider failure: %v", c.ops)
	}
}

func TestSyncOneCommerceErrorPropagates(t *testing.T) {
	boom := errors.New("shopify down")
	p := &fakeProvider{payloads: map[string]map[string]any{"42": {"status": "PAID"}}}
	c := &fakeCommerce{order: orderRef(), mutErr: boom}
	if _, err := orch(p, c).SyncOne(context.Background(), "42"); !errors.Is(err, boom) {
		t.Fatalf("got %v want commerce error", err)
	}
}

func TestSyncOneIdempotentRepeat(t *testing.T) {
	p := &fakeProvider{payloads: map[string]map[string]any{"42": {"status": "PENDING"}}}
	c := &fakeCommerce{order: orderRef()}
	o := orch(p, c)
	for i := 0; i < 3; i++ {
		res, err := o.SyncOne(context.Background(), "42")
		if err != nil || !res.OK {
			t.Fatalf("repeat %d: res=%+v err=%v", i, res, err)
		}
	}
	// same tag each time; tags are set-semantics at the collaborator
	for _, op := range c.ops {
		if op != "tag:IUTE_STATUS:PENDING" {
			t.Fatalf("ops: %v", c.ops)
		}
	}
}
