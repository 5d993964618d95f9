package signals

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"
)

// fixedCourtSource returns the demo court source pinned to a reference
// date so recency windows are stable in tests.
func fixedCourtSource() *DemoCourtSource {
	return &DemoCourtSource{Now: func() time.Time {
		return time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	}}
}

// TestCourtSearch_ExactMatch verifies an exact entity name pulls its
// case with type flags and indicators.
func TestCourtSearch_ExactMatch(t *testing.T) {
	src := fixedCourtSource()

	rec, err := src.Search(context.Background(), "Sunshine Holdings LLC", "", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.CaseCount != 1 {
		t.Fatalf("CaseCount = %d, want 1", rec.CaseCount)
	}
	if !rec.HasForeclosure {
		t.Error("HasForeclosure should be true")
	}
	if rec.Cases[0].CaseNumber != "2024-CA-001234" {
		t.Errorf("CaseNumber = %q", rec.Cases[0].CaseNumber)
	}

	want := []string{
		"active_foreclosure_cases:1",
		"recent_court_activity:1",
		"high_dollar_cases:1",
	}
	if !reflect.DeepEqual(rec.RiskIndicators, want) {
		t.Errorf("RiskIndicators = %v, want %v", rec.RiskIndicators, want)
	}
}

// TestCourtSearch_FuzzyNameMatch verifies suffix-insensitive matching:
// the core words are enough to hit the record.
func TestCourtSearch_FuzzyNameMatch(t *testing.T) {
	src := fixedCourtSource()

	rec, err := src.Search(context.Background(), "Sunshine Holdings", "", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.CaseCount != 1 {
		t.Errorf("CaseCount = %d, want 1 via fuzzy match", rec.CaseCount)
	}
}

// TestCourtSearch_AddressMatch verifies a case tied to the searched
// address is returned even when the entity name differs.
func TestCourtSearch_AddressMatch(t *testing.T) {
	src := fixedCourtSource()

	rec, err := src.Search(context.Background(), "Totally Different Name",
		"", "123 Investment Blvd, Ocala, FL")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.CaseCount != 1 {
		t.Fatalf("CaseCount = %d, want 1 via address match", rec.CaseCount)
	}
	if rec.Cases[0].CaseNumber != "2024-CA-001234" {
		t.Errorf("CaseNumber = %q", rec.Cases[0].CaseNumber)
	}
}

// TestCourtSearch_NoMatch verifies an unknown entity gets an empty
// record, not an error.
func TestCourtSearch_NoMatch(t *testing.T) {
	src := fixedCourtSource()

	rec, err := src.Search(context.Background(), "Quiet Valley Bakery", "", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if rec.CaseCount != 0 {
		t.Errorf("CaseCount = %d, want 0", rec.CaseCount)
	}
	if len(rec.RiskIndicators) != 0 {
		t.Errorf("RiskIndicators = %v, want none", rec.RiskIndicators)
	}
}

// TestCourtSearch_BankruptcyFlag verifies bankruptcy cases set their
// type flag and carry the chapter.
func TestCourtSearch_BankruptcyFlag(t *testing.T) {
	src := fixedCourtSource()

	rec, err := src.Search(context.Background(), "Offshore Holdings Trust", "", "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !rec.HasBankruptcy {
		t.Error("HasBankruptcy should be true")
	}
	if rec.CaseCount != 1 || rec.Cases[0].Chapter != "Chapter 11" {
		t.Errorf("cases = %+v, want one Chapter 11 filing", rec.Cases)
	}
}

// TestEntityNamesMatch verifies the suffix-stripped word overlap rules.
func TestEntityNamesMatch(t *testing.T) {
	cases := []struct {
		search string
		db     string
		want   bool
	}{
		{"Sunshine Holdings LLC", "Sunshine Holdings LLC", true},
		{"Sunshine Holdings", "Sunshine Holdings LLC", true},
		{"sunshine holdings trust", "Sunshine Holdings LLC", true},
		{"Moonlight Holdings LLC", "Sunshine Holdings LLC", false},
		{"Sunshine Bakery", "Sunshine Holdings LLC", false},
	}

	for _, tc := range cases {
		if got := entityNamesMatch(tc.search, tc.db); got != tc.want {
			t.Errorf("entityNamesMatch(%q, %q) = %v, want %v", tc.search, tc.db, got, tc.want)
		}
	}
}

// TestClerkSearchURL verifies county URL resolution including the
// federal district form and the web-search fallback.
func TestClerkSearchURL(t *testing.T) {
	got := ClerkSearchURL("Marion", "Sunshine Holdings LLC")
	if !strings.HasPrefix(got, "https://www.marioncountyclerk.org/") {
		t.Errorf("marion URL = %q", got)
	}

	got = ClerkSearchURL("Federal - Middle District FL", "Offshore Holdings Trust")
	if !strings.HasPrefix(got, "https://pacer.uscourts.gov") {
		t.Errorf("federal URL = %q", got)
	}

	got = ClerkSearchURL("Okeechobee", "Some Entity")
	if !strings.Contains(got, "google.com/search") {
		t.Errorf("fallback URL = %q", got)
	}

	if got := ClerkSearchURL("", "Some Entity"); got != "" {
		t.Errorf("empty county URL = %q, want empty", got)
	}
}

// TestParseDollars verifies dollar parsing handles separators and junk.
func TestParseDollars(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$450,000", 450000},
		{"$15,750", 15750},
		{"", 0},
		{"N/A", 0},
	}

	for _, tc := range cases {
		if got := parseDollars(tc.in); got != tc.want {
			t.Errorf("parseDollars(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
