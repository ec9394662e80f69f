// Package api implements HTTP handlers and helpers for the iute sync
// service.
package api

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"iutesync/internal/config"
	"iutesync/internal/iute"
	"iutesync/internal/model"
	"iutesync/internal/ordersync"
	"iutesync/internal/shopify"
)

// Syncer is the orchestration surface the handlers need.
type Syncer interface {
	SyncOne(ctx context.Context, iuteOrderID string) (model.SyncResult, error)
}

// ProviderAdmin covers the management proxy calls forwarded to iute.
type ProviderAdmin interface {
	LoanProducts(ctx context.Context) (json.RawMessage, error)
	ProductMappings(ctx context.Context) (json.RawMessage, error)
	UpsertProductMappings(ctx context.Context, mappings []model.ProductMapping) (json.RawMessage, error)
	DeleteProductMappings(ctx context.Context, mappings []model.ProductMapping) (json.RawMessage, error)
}

type Server struct {
	Cfg      config.Config
	Domain   string
	Verifier *iute.Verifier
	Sync     Syncer
	Admin    ProviderAdmin
	Broker   EventBroker

	orch *ordersync.Orchestrator
}

// NewServer wires the provider client, Shopify client, key cache, locks,
// and broker from configuration. Redis-backed locks and broker are chosen
// when REDIS_URL is set, in-memory otherwise.
func NewServer(cfg config.Config) (*Server, error) {
	domain := iute.DomainForCountry(cfg.Country, cfg.TestMode)
	provider := iute.NewClient(domain, cfg.AdminKey)
	commerce := shopify.NewClient(cfg.Shop, cfg.AdminToken)

	var locks ordersync.OrderLocks = ordersync.NewMemoryLocks()
	var broker EventBroker = NewBroker()
	if cfg.RedisURL != "" {
		if rl, err := ordersync.NewRedisLocks(cfg.RedisURL); err == nil {
			locks = rl
		} else {
			log.Printf("redis locks unavailable, using in-memory: %v", err)
		}
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Printf("redis broker unavailable, using in-memory: %v", err)
		}
	}

	orch := &ordersync.Orchestrator{Provider: provider, Commerce: commerce, Locks: locks}
	return &Server{
		Cfg:      cfg,
		Domain:   domain,
		Verifier: iute.NewVerifier(iute.NewKeyCache(cfg.KeyTTL)),
		Sync:     orch,
		Admin:    provider,
		Broker:   broker,
		orch:     orch,
	}, nil
}

// NewPoller creates the poll driver over the configured order ids, feeding
// its results into the event stream.
func (s *Server) NewPoller() *ordersync.Poller {
	p := ordersync.NewPoller(s.orch, s.Cfg.OrderIDs, s.Cfg.PollInterval)
	p.OnResult = s.PublishSync
	return p
}

// PublishSync turns a sync outcome into a broker event.
func (s *Server) PublishSync(res model.SyncResult, err error) {
	evt := SyncEvent{
		ID:          uuid.New().String(),
		IuteOrderID: res.IuteOrderID,
		Status:      res.Status,
		OK:          res.OK,
		Reason:      res.Reason,
		TS:          time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		evt.Reason = err.Error()
	}
	s.Broker.Publish(evt)
}
