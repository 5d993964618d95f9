package report

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Adahandles/ledgertrace/internal/entity"
	"github.com/Adahandles/ledgertrace/internal/scoring"
)

// stubGatherer returns a fixed bundle regardless of input.
type stubGatherer struct {
	bundle *entity.SignalBundle
	calls  int
}

func (g *stubGatherer) Gather(ctx context.Context, in *entity.Input) *entity.SignalBundle {
	g.calls++
	return g.bundle
}

// countingObserver tallies observer callbacks.
type countingObserver struct {
	analyses int
	hits     int
	misses   int
}

func (o *countingObserver) ObserveAnalysis(tier string, duration time.Duration, anomalies int) {
	o.analyses++
}

func (o *countingObserver) ObserveCacheLookup(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

// TestAnalyze_BaselineMissingEIN verifies the minimal report: a name
// with no EIN and empty signals scores 20, Low, one anomaly.
func TestAnalyze_BaselineMissingEIN(t *testing.T) {
	a := New(&stubGatherer{bundle: &entity.SignalBundle{}}, zap.NewNop())

	rep := a.Analyze(context.Background(), &entity.Input{Name: "Quiet Valley Trust"})

	if rep.RiskScore != 20 {
		t.Errorf("RiskScore = %d, want 20", rep.RiskScore)
	}
	if rep.Tier != scoring.TierLow {
		t.Errorf("Tier = %q, want %q", rep.Tier, scoring.TierLow)
	}
	if !reflect.DeepEqual(rep.Anomalies, []string{"No EIN provided"}) {
		t.Errorf("Anomalies = %v, want [No EIN provided]", rep.Anomalies)
	}
	if !rep.EntityType.IsTrust {
		t.Error("EntityType.IsTrust should be true")
	}
}

// TestAnalyze_AnomaliesStayRuleOnly verifies classifier red flags land
// in ClassificationFlags, never in the anomaly list.
func TestAnalyze_AnomaliesStayRuleOnly(t *testing.T) {
	a := New(&stubGatherer{bundle: &entity.SignalBundle{}}, zap.NewNop())

	rep := a.Analyze(context.Background(), &entity.Input{
		Name: "Offshore International Business Trust",
		EIN:  "12-3456789",
	})

	if len(rep.Anomalies) != 0 {
		t.Errorf("Anomalies = %v, want none with a valid EIN and no signals", rep.Anomalies)
	}
	if len(rep.ClassificationFlags) == 0 {
		t.Error("ClassificationFlags should carry the offshore red flag")
	}
	if !rep.EntityType.HighRisk {
		t.Error("EntityType.HighRisk should be true")
	}
}

// TestAnalyze_SignalsFeedRules verifies gathered signals flow into the
// rule evaluation and the report sub-records.
func TestAnalyze_SignalsFeedRules(t *testing.T) {
	bundle := &entity.SignalBundle{
		Court: &entity.CourtRecord{HasBankruptcy: true, CaseCount: 1},
	}
	a := New(&stubGatherer{bundle: bundle}, zap.NewNop())

	rep := a.Analyze(context.Background(), &entity.Input{
		Name: "Riverbend Partners",
		EIN:  "59-1234567",
	})

	if rep.RiskScore != 20 {
		t.Errorf("RiskScore = %d, want 20 for bankruptcy alone", rep.RiskScore)
	}
	if !reflect.DeepEqual(rep.Anomalies, []string{"Bankruptcy filing on record"}) {
		t.Errorf("Anomalies = %v", rep.Anomalies)
	}
	if rep.CourtData == nil || rep.CourtData.CaseCount != 1 {
		t.Errorf("CourtData = %+v, want the gathered record", rep.CourtData)
	}
}

// TestAnalyze_SourceLinks verifies the fixed verification links are
// always present and escaped.
func TestAnalyze_SourceLinks(t *testing.T) {
	a := New(&stubGatherer{bundle: &entity.SignalBundle{}}, zap.NewNop())

	rep := a.Analyze(context.Background(), &entity.Input{Name: "Smith & Sons LLC"})

	for _, key := range []string{"sunbiz", "irs", "sba"} {
		link, ok := rep.SourceLinks[key]
		if !ok {
			t.Errorf("SourceLinks missing %q: %v", key, rep.SourceLinks)
			continue
		}
		if link == "" {
			t.Errorf("SourceLinks[%q] is empty", key)
		}
	}
}

// TestAnalyze_NilGatherer verifies the analyzer degrades to an empty
// bundle when no gatherer is configured.
func TestAnalyze_NilGatherer(t *testing.T) {
	a := New(nil, zap.NewNop())

	rep := a.Analyze(context.Background(), &entity.Input{Name: "Standalone LLC", EIN: "12-3456789"})

	if rep.RiskScore != 0 {
		t.Errorf("RiskScore = %d, want 0", rep.RiskScore)
	}
	if rep.Property != nil || rep.CourtData != nil {
		t.Error("sub-records should be absent without a gatherer")
	}
}

// TestAnalyze_ObserverSeesEveryRun verifies the analysis metric fires
// once per Analyze call.
func TestAnalyze_ObserverSeesEveryRun(t *testing.T) {
	obs := &countingObserver{}
	a := New(&stubGatherer{bundle: &entity.SignalBundle{}}, zap.NewNop(), WithObserver(obs))

	in := &entity.Input{Name: "Observed LLC"}
	a.Analyze(context.Background(), in)
	a.Analyze(context.Background(), in)

	if obs.analyses != 2 {
		t.Errorf("analyses observed = %d, want 2", obs.analyses)
	}
}
