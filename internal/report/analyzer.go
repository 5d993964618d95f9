// Package report assembles the entity risk report: it gathers signals,
// runs the rule evaluator and the classifier, and merges their output
// with source-verification links into one response record.
package report

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/cache"
	"github.com/Adahandles/ledgertrace/internal/classify"
	"github.com/Adahandles/ledgertrace/internal/entity"
	"github.com/Adahandles/ledgertrace/internal/scoring"
)

// Gatherer resolves the signal bundle for an input. Satisfied by
// *signals.Gatherer.
type Gatherer interface {
	Gather(ctx context.Context, in *entity.Input) *entity.SignalBundle
}

// Observer receives analysis outcomes for metrics.
type Observer interface {
	ObserveAnalysis(tier string, duration time.Duration, anomalies int)
	ObserveCacheLookup(hit bool)
}

// Analyzer produces risk reports. Stateless across requests; safe for
// concurrent use.
type Analyzer struct {
	gatherer Gatherer
	cache    *cache.SignalCache
	logger   *zap.Logger
	observer Observer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache enables the redis signal cache.
func WithCache(c *cache.SignalCache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithObserver wires analysis metrics.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) { a.observer = o }
}

// New creates an Analyzer over the given signal gatherer.
func New(gatherer Gatherer, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{gatherer: gatherer, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze computes the risk report for a validated input. It never
// fails for valid input: missing signals score zero for their
// categories.
func (a *Analyzer) Analyze(ctx context.Context, in *entity.Input) *entity.Report {
	start := time.Now()

	bundle := a.signals(ctx, in)
	result := scoring.Evaluate(in, bundle)
	classification := classify.Classify(in.Name)

	rep := &entity.Report{
		Name:                in.Name,
		RiskScore:           result.Score,
		Tier:                result.Tier,
		Anomalies:           result.Anomalies,
		ClassificationFlags: classify.Flags(classification, in.HasEIN()),
		EntityType:          classification,
		Property:            bundle.Property,
		CourtData:           bundle.Court,
		DomainData:          bundle.Domain,
		OfficerData:         bundle.Officers,
		GrantsData:          bundle.Grants,
		SourceLinks:         sourceLinks(in.Name, classification),
	}

	if a.observer != nil {
		a.observer.ObserveAnalysis(rep.Tier, time.Since(start), len(result.Anomalies))
	}
	if a.logger != nil {
		a.logger.Info("entity analyzed",
			zap.String("entity", in.Name),
			zap.Int("risk_score", rep.RiskScore),
			zap.String("tier", rep.Tier),
			zap.Int("anomalies", len(rep.Anomalies)),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return rep
}

// signals returns the cached bundle when available, otherwise gathers
// a fresh one and populates the cache.
func (a *Analyzer) signals(ctx context.Context, in *entity.Input) *entity.SignalBundle {
	if a.gatherer == nil {
		return &entity.SignalBundle{}
	}
	if a.cache == nil {
		return a.gatherer.Gather(ctx, in)
	}

	key := cache.Key(in)
	if bundle, ok := a.cache.Get(ctx, key); ok {
		if a.observer != nil {
			a.observer.ObserveCacheLookup(true)
		}
		return bundle
	}
	if a.observer != nil {
		a.observer.ObserveCacheLookup(false)
	}
	bundle := a.gatherer.Gather(ctx, in)
	a.cache.Set(ctx, key, bundle)
	return bundle
}

// sourceLinks builds the fixed source-verification URL map for the
// entity, plus any trust-type-specific lookups from the classifier.
func sourceLinks(name string, c entity.Classification) map[string]string {
	encoded := url.QueryEscape(name)
	links := classify.SourceLinks(name, c)
	links["sunbiz"] = "http://search.sunbiz.org/Inquiry/CorporationSearch/SearchResults?InquiryType=EntityName&SearchTerm=" + encoded
	links["irs"] = "https://apps.irs.gov/app/eos/allSearch?names=" + encoded
	links["sba"] = "https://www.sba.gov/partners/contracting-officials/procurement-center-representatives/search?name=" + encoded
	return links
}
