package signals

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// failingCourtSource always errors, standing in for an unreachable
// upstream.
type failingCourtSource struct{}

func (failingCourtSource) Name() string { return "court" }
func (failingCourtSource) Search(ctx context.Context, entityName, county, address string) (*entity.CourtRecord, error) {
	return nil, errors.New("upstream unavailable")
}

// slowPropertySource blocks until its context is canceled.
type slowPropertySource struct{}

func (slowPropertySource) Name() string { return "property" }
func (slowPropertySource) Lookup(ctx context.Context, address, county string) (*entity.PropertyRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// recordingObserver captures collector outcomes.
type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string]error
}

func (o *recordingObserver) ObserveCollector(source string, duration time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]error{}
	}
	o.outcomes[source] = err
}

// TestGather_AllSources verifies a fully wired gatherer populates every
// sub-record for an entity present in each dataset.
func TestGather_AllSources(t *testing.T) {
	g := &Gatherer{
		Property: NewDemoPropertySource(),
		Court:    fixedCourtSource(),
		Domain:   fixedDomainSource(),
		Officers: NewDemoOfficerSource(),
		Grants:   NewDemoGrantSource(),
		Logger:   zap.NewNop(),
	}

	in := &entity.Input{
		Name:     "Sunshine Holdings LLC",
		Address:  "123 Investment Blvd, Ocala, FL",
		Officers: []string{"John Smith"},
	}
	bundle := g.Gather(context.Background(), in)

	if bundle.Property == nil {
		t.Error("Property should be present")
	}
	if bundle.Court == nil {
		t.Error("Court should be present")
	}
	if bundle.Domain == nil {
		t.Error("Domain should be present")
	}
	if bundle.Officers == nil {
		t.Error("Officers should be present")
	}
	if bundle.Grants == nil {
		t.Error("Grants should be present")
	}
}

// TestGather_FailureMeansAbsent verifies a failing collector leaves its
// signal absent while the rest still resolve.
func TestGather_FailureMeansAbsent(t *testing.T) {
	obs := &recordingObserver{}
	g := &Gatherer{
		Court:    failingCourtSource{},
		Grants:   NewDemoGrantSource(),
		Logger:   zap.NewNop(),
		Observer: obs,
	}

	bundle := g.Gather(context.Background(), &entity.Input{Name: "Sunshine Holdings LLC"})

	if bundle.Court != nil {
		t.Errorf("Court = %+v, want nil after collector failure", bundle.Court)
	}
	if bundle.Grants == nil {
		t.Error("Grants should still resolve")
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.outcomes["court"] == nil {
		t.Error("observer should have seen the court failure")
	}
	if obs.outcomes["grants"] != nil {
		t.Errorf("observer grants outcome = %v, want nil", obs.outcomes["grants"])
	}
}

// TestGather_TimeoutMeansAbsent verifies the per-collector timeout
// converts a hung source into an absent signal.
func TestGather_TimeoutMeansAbsent(t *testing.T) {
	g := &Gatherer{
		Property: slowPropertySource{},
		Timeout:  10 * time.Millisecond,
		Logger:   zap.NewNop(),
	}

	in := &entity.Input{Name: "Anything", Address: "1 Main St"}
	done := make(chan *entity.SignalBundle, 1)
	go func() { done <- g.Gather(context.Background(), in) }()

	select {
	case bundle := <-done:
		if bundle.Property != nil {
			t.Errorf("Property = %+v, want nil after timeout", bundle.Property)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Gather did not return after collector timeout")
	}
}

// TestGather_SkipsWithoutInputs verifies property is skipped without an
// address and officers without an officer list.
func TestGather_SkipsWithoutInputs(t *testing.T) {
	g := &Gatherer{
		Property: NewDemoPropertySource(),
		Officers: NewDemoOfficerSource(),
		Logger:   zap.NewNop(),
	}

	bundle := g.Gather(context.Background(), &entity.Input{Name: "No Extras LLC"})

	if bundle.Property != nil {
		t.Error("Property should be skipped without an address")
	}
	if bundle.Officers != nil {
		t.Error("Officers should be skipped without an officer list")
	}
}
