package ordersync

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"iutesync/internal/metrics"
	"iutesync/internal/model"
)

// Poller re-syncs a fixed list of iute order ids on an interval. Per-id
// failures are captured into the cycle report; one bad id never blocks the
// rest of the cycle.
type Poller struct {
	Orchestrator *Orchestrator
	IDs          []string
	Interval     time.Duration
	Stop         chan struct{}
	// OnResult, when set, observes every per-id outcome (used to feed the
	// event stream).
	OnResult func(model.SyncResult, error)
}

func NewPoller(o *Orchestrator, ids []string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{Orchestrator: o, IDs: ids, Interval: interval, Stop: make(chan struct{})}
}

// Start runs cycles on the interval until Stop is closed. Each cycle is
// bounded by the interval so cycles cannot overlap.
func (p *Poller) Start() {
	go func() {
		ticker := time.NewTicker(p.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.Stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), p.Interval)
				rep := p.RunCycle(ctx)
				cancel()
				if rep.Synced+rep.Failed > 0 {
					log.Printf("poll cycle %s: synced=%d failed=%d", rep.CycleID, rep.Synced, rep.Failed)
				}
			}
		}
	}()
}

// CycleReport aggregates per-id outcomes of one poll cycle.
type CycleReport struct {
	CycleID string
	Synced  int
	Failed  int
	Results []model.SyncResult
	Errors  map[string]string // iute order id -> error message
}

// RunCycle syncs every configured id once, sequentially. An empty id list
// performs no work.
func (p *Poller) RunCycle(ctx context.Context) CycleReport {
	rep := CycleReport{CycleID: uuid.New().String(), Errors: map[string]string{}}
	if len(p.IDs) == 0 {
		return rep
	}
	metrics.PollCycles.Inc()
	for _, id := range p.IDs {
		res, err := p.Orchestrator.SyncOne(ctx, id)
		if p.OnResult != nil {
			p.OnResult(res, err)
		}
		rep.Results = append(rep.Results, res)
		if err != nil {
			rep.Failed++
			rep.Errors[id] = err.Error()
			log.Printf("poll sync failed: %s: %v", id, err)
			continue
		}
		rep.Synced++
	}
	return rep
}
