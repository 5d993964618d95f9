package signals

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// Case type labels used by the demo dataset.
const (
	caseForeclosure = "Foreclosure"
	caseTaxLien     = "Tax Lien"
	caseCivil       = "Civil Litigation"
	caseBankruptcy  = "Bankruptcy"
)

// highDollarThreshold flags cases at or above this amount.
const highDollarThreshold = 100_000

// recentCaseWindow is the lookback for "recent court activity".
const recentCaseWindow = 180 * 24 * time.Hour

// demoCourtCases is the demo clerk-of-court dataset keyed by entity
// name. A production implementation would query county clerk APIs.
var demoCourtCases = map[string]entity.CourtCase{
	"Sunshine Holdings LLC": {
		CaseType:        caseForeclosure,
		CaseNumber:      "2024-CA-001234",
		Status:          "Open",
		FiledDate:       "2024-11-01",
		County:          "Marion",
		Plaintiff:       "First National Bank",
		PropertyAddress: "123 Investment Blvd, Ocala, FL",
		Amount:          "$450,000",
	},
	"Florida Investment Properties LLC": {
		CaseType:        caseForeclosure,
		CaseNumber:      "2024-CA-005678",
		Status:          "Judgment",
		FiledDate:       "2024-08-15",
		County:          "Orange",
		Plaintiff:       "Community Trust Bank",
		PropertyAddress: "456 Commerce St, Orlando, FL",
		Amount:          "$275,000",
	},
	"Coastal Development Trust": {
		CaseType:        caseTaxLien,
		CaseNumber:      "2024-TX-002134",
		Status:          "Open",
		FiledDate:       "2024-10-15",
		County:          "Brevard",
		Plaintiff:       "Brevard County Tax Collector",
		PropertyAddress: "789 Beachfront Dr, Melbourne, FL",
		Amount:          "$15,750",
	},
	"Business Investment Trust LLC": {
		CaseType:    caseCivil,
		CaseNumber:  "2024-CC-003456",
		Status:      "Open",
		FiledDate:   "2024-09-20",
		County:      "Hillsborough",
		Plaintiff:   "State of Florida DBPR",
		Description: "Unlicensed contractor violations",
		Amount:      "$25,000",
	},
	"Offshore Holdings Trust": {
		CaseType:   caseBankruptcy,
		CaseNumber: "2024-BK-001122",
		Status:     "Active",
		FiledDate:  "2024-07-30",
		County:     "Federal - Middle District FL",
		Chapter:    "Chapter 11",
	},
}

// clerkURLs maps counties to their clerk-of-court search pages.
var clerkURLs = map[string]string{
	"marion":       "https://www.marioncountyclerk.org/court-records/search",
	"orange":       "https://myorangeclerk.com/case-search",
	"brevard":      "https://brevardclerk.us/court-records",
	"hillsborough": "https://hillsclerk.com/records/search",
	"federal":      "https://pacer.uscourts.gov",
}

var nonWordRe = regexp.MustCompile(`[^\w\s]`)

// entitySuffixes are dropped before comparing entity names.
var entitySuffixes = map[string]bool{
	"llc": true, "inc": true, "corp": true,
	"trust": true, "ltd": true, "foundation": true,
}

// DemoCourtSource searches the demo court dataset with fuzzy entity
// name matching.
type DemoCourtSource struct {
	// Now is injected for tests; defaults to time.Now.
	Now func() time.Time
}

// NewDemoCourtSource returns the demo court collector.
func NewDemoCourtSource() *DemoCourtSource {
	return &DemoCourtSource{Now: time.Now}
}

// Name identifies this source in logs and metrics.
func (s *DemoCourtSource) Name() string { return "court" }

// Search returns court activity matched to the entity by name or, when
// provided, by property address.
func (s *DemoCourtSource) Search(ctx context.Context, entityName, county, address string) (*entity.CourtRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(entityName) == "" {
		return nil, nil
	}

	var cases []entity.CourtCase
	for dbName, c := range demoCourtCases {
		if entityNamesMatch(entityName, dbName) {
			c.SearchURL = ClerkSearchURL(c.County, entityName)
			cases = append(cases, c)
		}
	}
	if address != "" {
		for dbName, c := range demoCourtCases {
			if c.PropertyAddress != "" && !entityNamesMatch(entityName, dbName) &&
				addressesMatch(address, c.PropertyAddress) {
				c.SearchURL = ClerkSearchURL(c.County, entityName)
				cases = append(cases, c)
			}
		}
	}

	// Map iteration order is random; keep output deterministic.
	sort.Slice(cases, func(i, j int) bool { return cases[i].CaseNumber < cases[j].CaseNumber })

	record := &entity.CourtRecord{
		Cases:          cases,
		CaseCount:      len(cases),
		RiskIndicators: s.caseRiskIndicators(cases),
	}
	for _, c := range cases {
		switch c.CaseType {
		case caseForeclosure:
			record.HasForeclosure = true
		case caseTaxLien:
			record.HasTaxLien = true
		case caseCivil:
			record.HasCivil = true
		case caseBankruptcy:
			record.HasBankruptcy = true
		}
	}
	return record, nil
}

// caseRiskIndicators derives pattern indicators from the matched cases.
func (s *DemoCourtSource) caseRiskIndicators(cases []entity.CourtCase) []string {
	indicators := []string{}
	if len(cases) == 0 {
		return indicators
	}

	counts := map[string]int{}
	for _, c := range cases {
		counts[c.CaseType]++
	}
	if counts[caseForeclosure] > 0 {
		indicators = append(indicators, fmt.Sprintf("active_foreclosure_cases:%d", counts[caseForeclosure]))
	}
	if counts[caseTaxLien] > 0 {
		indicators = append(indicators, fmt.Sprintf("tax_lien_cases:%d", counts[caseTaxLien]))
	}
	if counts[caseCivil] > 0 {
		indicators = append(indicators, fmt.Sprintf("civil_litigation_cases:%d", counts[caseCivil]))
	}
	if counts[caseBankruptcy] > 0 {
		indicators = append(indicators, fmt.Sprintf("bankruptcy_cases:%d", counts[caseBankruptcy]))
	}
	if len(counts) >= 2 {
		indicators = append(indicators, "multiple_case_types")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().Add(-recentCaseWindow)
	recent := 0
	for _, c := range cases {
		filed, err := time.Parse("2006-01-02", c.FiledDate)
		if err == nil && !filed.Before(cutoff) {
			recent++
		}
	}
	if recent > 0 {
		indicators = append(indicators, fmt.Sprintf("recent_court_activity:%d", recent))
	}

	highDollar := 0
	for _, c := range cases {
		if parseDollars(c.Amount) >= highDollarThreshold {
			highDollar++
		}
	}
	if highDollar > 0 {
		indicators = append(indicators, fmt.Sprintf("high_dollar_cases:%d", highDollar))
	}

	return indicators
}

// entityNamesMatch compares names after stripping punctuation and
// common entity suffixes; 70% of the shorter name's core words must
// overlap.
func entityNamesMatch(searchName, dbName string) bool {
	searchClean := nonWordRe.ReplaceAllString(strings.ToLower(searchName), "")
	dbClean := nonWordRe.ReplaceAllString(strings.ToLower(dbName), "")
	if searchClean == dbClean {
		return true
	}

	searchCore := coreWords(searchClean)
	dbCore := coreWords(dbClean)
	if len(searchCore) == 0 || len(dbCore) == 0 {
		return false
	}

	overlap := 0
	for w := range searchCore {
		if dbCore[w] {
			overlap++
		}
	}
	min := len(searchCore)
	if len(dbCore) < min {
		min = len(dbCore)
	}
	return float64(overlap) >= float64(min)*0.7
}

func coreWords(name string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(name) {
		if !entitySuffixes[w] {
			words[w] = true
		}
	}
	return words
}

// addressesMatch requires at least two shared tokens, typically the
// street number and name.
func addressesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aWords := strings.Fields(nonWordRe.ReplaceAllString(strings.ToLower(a), " "))
	bWords := map[string]bool{}
	for _, w := range strings.Fields(nonWordRe.ReplaceAllString(strings.ToLower(b), " ")) {
		bWords[w] = true
	}
	matching := 0
	for _, w := range aWords {
		if bWords[w] {
			matching++
		}
	}
	return matching >= 2
}

// ClerkSearchURL builds a clerk-of-court search URL for the entity,
// falling back to a web search when the county is unknown.
func ClerkSearchURL(county, entityName string) string {
	if county == "" {
		return ""
	}
	key := strings.ReplaceAll(strings.ToLower(county), " county", "")
	key = strings.ReplaceAll(key, " ", "")
	if strings.HasPrefix(key, "federal") {
		key = "federal"
	}
	encoded := url.QueryEscape(entityName)
	if base, ok := clerkURLs[key]; ok {
		return base + "?q=" + encoded
	}
	return fmt.Sprintf("https://www.google.com/search?q=%%22%s%%22+%s+clerk+court", encoded, url.QueryEscape(county))
}

// parseDollars extracts the numeric value from an amount string like
// "$450,000". Unparseable amounts count as zero.
func parseDollars(amount string) float64 {
	if amount == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range amount {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}
