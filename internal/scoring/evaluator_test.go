package scoring

import (
	"reflect"
	"testing"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// =============================================================================
// Tier Mapping Tests
// =============================================================================

// TestTier_Boundaries verifies the tier thresholds at their exact edges.
func TestTier_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, TierMinimal},
		{9, TierMinimal},
		{10, TierLow},
		{24, TierLow},
		{25, TierMedium},
		{49, TierMedium},
		{50, TierHigh},
		{74, TierHigh},
		{75, TierCritical},
		{100, TierCritical},
	}

	for _, tc := range cases {
		if got := Tier(tc.score); got != tc.want {
			t.Errorf("Tier(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

// TestClamp verifies scores are bounded to [0, 100].
func TestClamp(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-5, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{145, 100},
	}

	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

// =============================================================================
// Evaluation Tests
// =============================================================================

// TestEvaluate_MissingEINOnly verifies the baseline case: a named entity
// with an EIN-less input and no signals scores 20 with a single anomaly.
func TestEvaluate_MissingEINOnly(t *testing.T) {
	in := &entity.Input{Name: "Quiet Valley Trust"}

	result := Evaluate(in, &entity.SignalBundle{})

	if result.Score != 20 {
		t.Errorf("score = %d, want 20", result.Score)
	}
	if result.Tier != TierLow {
		t.Errorf("tier = %q, want %q", result.Tier, TierLow)
	}
	if !reflect.DeepEqual(result.Anomalies, []string{"No EIN provided"}) {
		t.Errorf("anomalies = %v, want [No EIN provided]", result.Anomalies)
	}
}

// TestEvaluate_WithEIN verifies a valid EIN suppresses the missing-EIN
// rule entirely.
func TestEvaluate_WithEIN(t *testing.T) {
	in := &entity.Input{Name: "Quiet Valley Trust", EIN: "12-3456789"}

	result := Evaluate(in, &entity.SignalBundle{})

	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
	if result.Tier != TierMinimal {
		t.Errorf("tier = %q, want %q", result.Tier, TierMinimal)
	}
	if len(result.Anomalies) != 0 {
		t.Errorf("anomalies = %v, want none", result.Anomalies)
	}
}

// TestEvaluate_PropertyRedFlags verifies the high-risk property cluster:
// no EIN, PO Box address, delinquent taxes, and a mail drop land use
// sum to 80 and land in the critical tier.
func TestEvaluate_PropertyRedFlags(t *testing.T) {
	in := &entity.Input{
		Name:    "Shell Holdings LLC",
		Address: "PO Box 991, Ocala, FL",
	}
	sig := &entity.SignalBundle{
		Property: &entity.PropertyRecord{
			LandUse:         "Mail Drop Service",
			DelinquentTaxes: true,
			MarketValue:     "$150,000",
		},
	}

	result := Evaluate(in, sig)

	if result.Score != 80 {
		t.Errorf("score = %d, want 80", result.Score)
	}
	if result.Tier != TierCritical {
		t.Errorf("tier = %q, want %q", result.Tier, TierCritical)
	}
	want := []string{
		"No EIN provided",
		"PO Box detected in address",
		"Delinquent property taxes detected",
		"Property address may be a mail drop service",
	}
	if !reflect.DeepEqual(result.Anomalies, want) {
		t.Errorf("anomalies = %v, want %v", result.Anomalies, want)
	}
}

// TestEvaluate_ClampsAtMaximum verifies that a signal bundle tripping
// most rules cannot push the score past 100.
func TestEvaluate_ClampsAtMaximum(t *testing.T) {
	in := &entity.Input{
		Name:     "Everything Wrong LLC",
		Address:  "PO Box 1, Nowhere, FL",
		Officers: []string{"a", "b", "c", "d", "e", "f"},
	}
	sig := &entity.SignalBundle{
		Property: &entity.PropertyRecord{
			LandUse:         "Vacant Land / Mail Drop",
			DelinquentTaxes: true,
			MarketValue:     "N/A",
		},
		Court: &entity.CourtRecord{
			HasForeclosure: true,
			HasBankruptcy:  true,
			HasTaxLien:     true,
		},
		Domain: &entity.DomainRecord{
			HasActiveWebsite:     false,
			RecentRegistration:   true,
			HasPrivacyProtection: true,
		},
		Grants: &entity.GrantRecord{HasComplianceIssues: true},
		Officers: &entity.OfficerCrossRef{
			HasSharedOfficers:      true,
			TotalEntitiesConnected: 15,
		},
	}

	result := Evaluate(in, sig)

	if result.Score != 100 {
		t.Errorf("score = %d, want 100 (clamped)", result.Score)
	}
	if result.Tier != TierCritical {
		t.Errorf("tier = %q, want %q", result.Tier, TierCritical)
	}
	if len(result.Anomalies) != len(Rules) {
		t.Errorf("anomalies = %d, want all %d rules triggered", len(result.Anomalies), len(Rules))
	}
}

// TestEvaluate_NilBundle verifies nil signals behave as an empty bundle
// rather than panicking.
func TestEvaluate_NilBundle(t *testing.T) {
	in := &entity.Input{Name: "Quiet Valley Trust", EIN: "12-3456789"}

	result := Evaluate(in, nil)

	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
}

// TestEvaluate_Deterministic verifies repeated evaluation of the same
// input yields identical results.
func TestEvaluate_Deterministic(t *testing.T) {
	in := &entity.Input{Name: "Repeat Trust", Address: "PO Box 5"}
	sig := &entity.SignalBundle{
		Court: &entity.CourtRecord{HasTaxLien: true},
	}

	first := Evaluate(in, sig)
	for i := 0; i < 10; i++ {
		if got := Evaluate(in, sig); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

// TestEvaluate_AnomaliesFollowTableOrder verifies anomaly ordering
// matches rule table order regardless of signal arrangement.
func TestEvaluate_AnomaliesFollowTableOrder(t *testing.T) {
	in := &entity.Input{Name: "Ordered LLC", EIN: "59-1234567"}
	sig := &entity.SignalBundle{
		Officers: &entity.OfficerCrossRef{HasSharedOfficers: true},
		Court:    &entity.CourtRecord{HasBankruptcy: true},
	}

	result := Evaluate(in, sig)

	want := []string{
		"Bankruptcy filing on record",
		"Shared officers with flagged entities",
	}
	if !reflect.DeepEqual(result.Anomalies, want) {
		t.Errorf("anomalies = %v, want %v", result.Anomalies, want)
	}
}

// TestRules_UniqueNames guards against accidental duplicate rule names
// when the table is edited.
func TestRules_UniqueNames(t *testing.T) {
	seen := make(map[string]bool, len(Rules))
	for _, rule := range Rules {
		if seen[rule.Name] {
			t.Errorf("duplicate rule name %q", rule.Name)
		}
		seen[rule.Name] = true
		if rule.Points <= 0 {
			t.Errorf("rule %q has non-positive points %d", rule.Name, rule.Points)
		}
		if rule.Message == "" {
			t.Errorf("rule %q has empty message", rule.Name)
		}
	}
}
