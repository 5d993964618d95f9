package signals

import (
	"context"
	"strings"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// countyPatterns maps address substrings to Florida counties for
// auto-detection when no county is supplied.
var countyPatterns = []struct {
	pattern string
	county  string
}{
	{"villages", "Sumter"},
	{"lady lake", "Lake"},
	{"leesburg", "Lake"},
	{"ocala", "Marion"},
	{"gainesville", "Alachua"},
	{"tampa", "Hillsborough"},
	{"orlando", "Orange"},
	{"miami", "Miami-Dade"},
	{"jacksonville", "Duval"},
	{"tallahassee", "Leon"},
}

// appraiserURLs maps counties to their property appraiser sites.
var appraiserURLs = map[string]string{
	"Sumter":       "https://www.sumterpa.com/",
	"Lake":         "https://www.lakepa.org/",
	"Marion":       "https://www.pa.marion.fl.us/",
	"Alachua":      "https://www.acpafl.org/",
	"Orange":       "https://www.ocpafl.org/",
	"Hillsborough": "https://www.hcpafl.org/",
	"Miami-Dade":   "https://www.miamidade.gov/pa/",
	"Duval":        "https://paopropertysearch.coj.net/",
	"Leon":         "https://www.leonpa.org/",
}

const fallbackAppraiserURL = "https://www.floridapropertyappraisers.com/"

// DemoPropertySource serves deterministic demo property data derived
// from address patterns. A production implementation would query the
// county appraiser sites directly.
type DemoPropertySource struct{}

// NewDemoPropertySource returns the demo property collector.
func NewDemoPropertySource() *DemoPropertySource {
	return &DemoPropertySource{}
}

// Name identifies this source in logs and metrics.
func (s *DemoPropertySource) Name() string { return "property" }

// Lookup returns property data for the address, or nil when the
// address is empty.
func (s *DemoPropertySource) Lookup(ctx context.Context, address, county string) (*entity.PropertyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(address) == "" {
		return nil, nil
	}
	if county == "" {
		county = DetectCounty(address)
	}

	record := &entity.PropertyRecord{
		County:      county,
		Address:     address,
		OwnerName:   "Property Owner LLC",
		LandUse:     "Residential",
		MarketValue: "$250,000",
		SourceURL:   AppraiserURL(county),
	}

	lower := strings.ToLower(address)
	switch {
	case strings.Contains(lower, "po box") || strings.Contains(lower, "p.o. box"):
		record.LandUse = "Mail Drop Service"
		record.DelinquentTaxes = true
		record.MarketValue = "N/A"
	case strings.Contains(lower, "vacant"):
		record.LandUse = "Vacant Land"
		record.MarketValue = "$75,000"
		record.DelinquentTaxes = true
	case strings.Contains(lower, "villages"):
		record.OwnerName = "Villages Holdings Inc."
		record.LandUse = "Retirement Community"
		record.MarketValue = "$450,000"
	case containsAny(lower, "office", "suite", "building", "plaza"):
		record.OwnerName = "Commercial Properties LLC"
		record.LandUse = "Commercial Office"
		record.MarketValue = "$1,200,000"
	}

	return record, nil
}

// DetectCounty guesses the Florida county from address text. Orange is
// the fallback when nothing matches.
func DetectCounty(address string) string {
	lower := strings.ToLower(address)
	for _, cp := range countyPatterns {
		if strings.Contains(lower, cp.pattern) {
			return cp.county
		}
	}
	return "Orange"
}

// AppraiserURL returns the property appraiser site for a county.
func AppraiserURL(county string) string {
	if u, ok := appraiserURLs[county]; ok {
		return u
	}
	return fallbackAppraiserURL
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
