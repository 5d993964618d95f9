// Package signals provides the per-source collectors that feed the
// risk evaluator: property records, court cases, domain presence,
// officer cross-references, and grant history. Each collector returns
// its sub-record or nil for "no data"; a collector failure or timeout
// is logged and treated as no data, never as an analysis error.
package signals

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// Default per-collector timeout when none is configured.
const defaultTimeout = 10 * time.Second

// PropertySource looks up property records by address.
type PropertySource interface {
	Name() string
	Lookup(ctx context.Context, address, county string) (*entity.PropertyRecord, error)
}

// CourtSource searches court cases by entity name and address.
type CourtSource interface {
	Name() string
	Search(ctx context.Context, entityName, county, address string) (*entity.CourtRecord, error)
}

// DomainSource analyzes the entity's web presence.
type DomainSource interface {
	Name() string
	Analyze(ctx context.Context, entityName string) (*entity.DomainRecord, error)
}

// OfficerSource cross-references officers against other entities.
type OfficerSource interface {
	Name() string
	CrossReference(ctx context.Context, entityName string, officers []string) (*entity.OfficerCrossRef, error)
}

// GrantSource looks up grant and contract awards.
type GrantSource interface {
	Name() string
	Awards(ctx context.Context, entityName, ein string) (*entity.GrantRecord, error)
}

// Observer receives collector outcomes for metrics. Implementations
// must be safe for concurrent use.
type Observer interface {
	ObserveCollector(source string, duration time.Duration, err error)
}

// Gatherer runs all configured sources for one analysis request. Any
// nil source is skipped; its sub-record stays absent.
type Gatherer struct {
	Property PropertySource
	Court    CourtSource
	Domain   DomainSource
	Officers OfficerSource
	Grants   GrantSource

	Timeout  time.Duration
	Logger   *zap.Logger
	Observer Observer
}

// Gather invokes every configured source concurrently and assembles the
// signal bundle. Sources are independent reads with no ordering
// dependency; Gather returns once every source has resolved or timed
// out.
func (g *Gatherer) Gather(ctx context.Context, in *entity.Input) *entity.SignalBundle {
	bundle := &entity.SignalBundle{}
	var wg sync.WaitGroup

	if g.Property != nil && in.Address != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Property = collect(g, g.Property.Name(), func(ctx context.Context) (*entity.PropertyRecord, error) {
				return g.Property.Lookup(ctx, in.Address, in.County)
			})(ctx)
		}()
	}
	if g.Court != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Court = collect(g, g.Court.Name(), func(ctx context.Context) (*entity.CourtRecord, error) {
				return g.Court.Search(ctx, in.Name, in.County, in.Address)
			})(ctx)
		}()
	}
	if g.Domain != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Domain = collect(g, g.Domain.Name(), func(ctx context.Context) (*entity.DomainRecord, error) {
				return g.Domain.Analyze(ctx, in.Name)
			})(ctx)
		}()
	}
	if g.Officers != nil && len(in.Officers) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Officers = collect(g, g.Officers.Name(), func(ctx context.Context) (*entity.OfficerCrossRef, error) {
				return g.Officers.CrossReference(ctx, in.Name, in.Officers)
			})(ctx)
		}()
	}
	if g.Grants != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Grants = collect(g, g.Grants.Name(), func(ctx context.Context) (*entity.GrantRecord, error) {
				return g.Grants.Awards(ctx, in.Name, in.EIN)
			})(ctx)
		}()
	}

	wg.Wait()
	return bundle
}

// collect wraps one source call with the per-collector timeout,
// logging, and metrics. Errors collapse to nil: signal absent.
func collect[T any](g *Gatherer, source string, fn func(context.Context) (*T, error)) func(context.Context) *T {
	return func(ctx context.Context) *T {
		timeout := g.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		record, err := fn(ctx)
		if g.Observer != nil {
			g.Observer.ObserveCollector(source, time.Since(start), err)
		}
		if err != nil {
			if g.Logger != nil {
				g.Logger.Warn("collector failed, treating signal as absent",
					zap.String("source", source),
					zap.Error(err),
				)
			}
			return nil
		}
		return record
	}
}
