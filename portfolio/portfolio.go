// Package portfolio wires one entity store per kind over a shared cache and
// the REST sources of the portfolio API.
package portfolio

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"portfolio/cache"
	"portfolio/entity"
	"portfolio/record"
	"portfolio/remote"
	"portfolio/scheduler"
	"portfolio/store"
	"portfolio/synthetic"
)

// Cache keys of the full lists
const (
	PropertiesKey  = "properties"
	TenantsKey     = "tenants"
	EventsKey      = "events"
	MaintenanceKey = "maintenance"
	MarketKey      = "market_trends"
)

// KindPolicy is the failure policy of one store.
type KindPolicy struct {
	Read  entity.Policy
	Write entity.Policy
}

// Policies per entity kind. Properties are the source of truth for money and
// never fall back; market data has no write endpoints.
var Policies = map[string]KindPolicy{
	record.KindProperty:    {Read: entity.Strict, Write: entity.Strict},
	record.KindTenant:      {Read: entity.Fallback, Write: entity.Fallback},
	record.KindEvent:       {Read: entity.Fallback, Write: entity.Fallback},
	record.KindMaintenance: {Read: entity.Fallback, Write: entity.Fallback},
	record.KindMarket:      {Read: entity.Fallback, Write: entity.Strict},
}

type Config struct {
	// Base URL of the portfolio API
	BaseURL string
	// Substrate of the cache and the ROI inputs
	Db     store.Store
	Client *http.Client

	// Overrides of Policies, by kind
	Policies map[string]KindPolicy

	// Weekday of the scheduled refresh and how often it is checked
	RefreshPolicy   scheduler.Policy
	RefreshInterval time.Duration

	Now  func() time.Time
	Rand *rand.Rand
}

type Portfolio struct {
	Cache *cache.Cache
	Db    store.Store

	Properties  *entity.Store[record.Property]
	Tenants     *entity.Store[record.Tenant]
	Events      *entity.Store[record.Event]
	Maintenance *entity.Store[record.Maintenance]
	Market      *entity.Store[record.MarketTrend]

	Runner *scheduler.Runner
	now    func() time.Time
	scrape *remote.Action
}

func New(cfg Config) (*Portfolio, error) {
	if cfg.Db == nil {
		return nil, fmt.Errorf("%w: missing store", entity.ErrInvalidConfig)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RefreshPolicy == nil {
		cfg.RefreshPolicy = scheduler.Default
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = scheduler.DefaultInterval
	}
	var opts []remote.HTTPOption
	if cfg.Client != nil {
		opts = append(opts, remote.WithClient(cfg.Client))
	}
	policy := func(kind string) KindPolicy {
		if p, ok := cfg.Policies[kind]; ok {
			return p
		}
		return Policies[kind]
	}

	p := &Portfolio{
		Cache:  cache.New(cfg.Db, cache.WithClock(cfg.Now)),
		Db:     cfg.Db,
		now:    cfg.Now,
		scrape: remote.NewAction(cfg.BaseURL, "market/scrape", opts...),
	}

	var err error
	p.Properties, err = entity.New(entity.Config[record.Property]{
		Kind:        record.KindProperty,
		Source:      remote.NewHTTPSource[record.Property](cfg.BaseURL, "properties", opts...),
		Cache:       p.Cache,
		ListKey:     PropertiesKey,
		Generate:    synthetic.Properties,
		ReadPolicy:  policy(record.KindProperty).Read,
		WritePolicy: policy(record.KindProperty).Write,
		Now:         cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	p.Tenants, err = entity.New(entity.Config[record.Tenant]{
		Kind:        record.KindTenant,
		Source:      remote.NewHTTPSource[record.Tenant](cfg.BaseURL, "tenants", opts...),
		Cache:       p.Cache,
		ListKey:     TenantsKey,
		Generate:    synthetic.Tenants,
		ReadPolicy:  policy(record.KindTenant).Read,
		WritePolicy: policy(record.KindTenant).Write,
		Now:         cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	p.Events, err = entity.New(entity.Config[record.Event]{
		Kind:        record.KindEvent,
		Source:      remote.NewHTTPSource[record.Event](cfg.BaseURL, "events", opts...),
		Cache:       p.Cache,
		ListKey:     EventsKey,
		Generate:    synthetic.Events,
		ReadPolicy:  policy(record.KindEvent).Read,
		WritePolicy: policy(record.KindEvent).Write,
		Now:         cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	p.Maintenance, err = entity.New(entity.Config[record.Maintenance]{
		Kind:        record.KindMaintenance,
		Source:      remote.NewHTTPSource[record.Maintenance](cfg.BaseURL, "maintenance", append(opts, remote.WithoutDelete())...),
		Cache:       p.Cache,
		ListKey:     MaintenanceKey,
		Generate:    synthetic.Maintenance,
		ReadPolicy:  policy(record.KindMaintenance).Read,
		WritePolicy: policy(record.KindMaintenance).Write,
		Now:         cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	p.Market, err = entity.New(entity.Config[record.MarketTrend]{
		Kind:        record.KindMarket,
		Source:      remote.ReadOnly[record.MarketTrend]{Source: remote.NewHTTPSource[record.MarketTrend](cfg.BaseURL, "market/trends", opts...)},
		Cache:       p.Cache,
		ListKey:     MarketKey,
		Generate:    synthetic.MarketTrends(cfg.Rand),
		ReadPolicy:  policy(record.KindMarket).Read,
		WritePolicy: policy(record.KindMarket).Write,
		Now:         cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	p.Runner = scheduler.NewRunner(cfg.RefreshPolicy, p.Cache, cfg.RefreshInterval)
	p.Runner.Now = cfg.Now
	p.Runner.Register(PropertiesKey, refresher(p.Properties))
	p.Runner.Register(TenantsKey, refresher(p.Tenants))
	p.Runner.Register(EventsKey, refresher(p.Events))
	p.Runner.Register(MaintenanceKey, refresher(p.Maintenance))
	p.Runner.Register(MarketKey, refresher(p.Market))
	return p, nil
}

func refresher[T record.Record](s *entity.Store[T]) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.FetchAll(ctx, true)
		return err
	}
}

// LoadAll fetches every list, going to the remote only on cache misses. The
// first error is returned after all kinds were tried.
func (p *Portfolio) LoadAll(ctx context.Context, force bool) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	_, err := p.Properties.FetchAll(ctx, force)
	keep(err)
	_, err = p.Tenants.FetchAll(ctx, force)
	keep(err)
	_, err = p.Events.FetchAll(ctx, force)
	keep(err)
	_, err = p.Maintenance.FetchAll(ctx, force)
	keep(err)
	_, err = p.Market.FetchAll(ctx, force)
	keep(err)
	return first
}

// TriggerScrape asks the API to record fresh market data. The cached trends
// are dropped on success so the next read goes to the remote.
func (p *Portfolio) TriggerScrape(ctx context.Context) error {
	if err := p.scrape.Trigger(ctx); err != nil {
		log.Err(err).Msg("failed to trigger market scrape")
		return fmt.Errorf("trigger market scrape: %w", err)
	}
	p.Cache.Remove(MarketKey)
	log.Info().Msg("market scrape triggered")
	return nil
}

// AutoRefresh runs the weekly refresh checks until ctx is done.
func (p *Portfolio) AutoRefresh(ctx context.Context) {
	log.Info().
		Int("days-until-refresh", p.Runner.Policy.DaysUntil(p.now())).
		Msg("scheduled refresh enabled")
	p.Runner.Run(ctx)
}

// ClearCache drops every cached list and record. ROI inputs are kept.
func (p *Portfolio) ClearCache() {
	p.Cache.ClearAll()
}

// CacheInfo describes the cached lists.
type CacheInfo struct {
	Key       string
	Cached    bool
	Age       time.Duration
	ExpiresIn time.Duration
}

func (p *Portfolio) CacheInfo() []CacheInfo {
	keys := []string{PropertiesKey, TenantsKey, EventsKey, MaintenanceKey, MarketKey}
	infos := make([]CacheInfo, 0, len(keys))
	for _, key := range keys {
		age, expiresIn, ok := p.Cache.Metadata(key)
		infos = append(infos, CacheInfo{Key: key, Cached: ok, Age: age, ExpiresIn: expiresIn})
	}
	return infos
}
