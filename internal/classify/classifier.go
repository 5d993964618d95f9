// Package classify tags an entity by name against curated keyword
// tables: trust type detection, high-risk and regulated type sets, and
// suspicious naming patterns. Classification is independent of the
// numeric risk score; categories match independently and results are
// unioned.
package classify

import (
	"net/url"
	"sort"
	"strings"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// trustKeywords maps a lowercase keyword to the trust type it implies.
// Matching is case-insensitive substring search; several keywords may
// fire on one name.
var trustKeywords = map[string]string{
	"revocable":           "Revocable Trust",
	"irrevocable":         "Irrevocable Trust",
	"charitable":          "Charitable Trust",
	"foundation":          "Charitable Trust",
	"land":                "Land Trust",
	"testamentary":        "Testamentary Trust",
	"business trust":      "Business Trust",
	"grantor":             "Grantor Trust",
	"special needs":       "Special Needs Trust",
	"real estate":         "REIT (Trust)",
	"reit":                "REIT (Trust)",
	"massachusetts trust": "Business Trust",
	"foreign":             "Foreign Asset Trust",
	"living":              "Living Trust",
	"family":              "Family Trust",
	"investment":          "Investment Trust",
	"unit":                "Unit Trust",
	"voting":              "Voting Trust",
	"asset protection":    "Asset Protection Trust",
	"dynasty":             "Dynasty Trust",
	"spendthrift":         "Spendthrift Trust",
}

// highRiskTypes are trust types treated as high risk on sight.
var highRiskTypes = map[string]bool{
	"Business Trust":         true,
	"Foreign Asset Trust":    true,
	"Asset Protection Trust": true,
}

// regulatedTypes should carry an EIN or regulatory filing.
var regulatedTypes = map[string]bool{
	"Charitable Trust": true,
	"Investment Trust": true,
	"REIT (Trust)":     true,
}

// suspiciousPatterns map name substrings to risk indicator tags.
// Offshore and international structures also force the high-risk flag,
// independent of the matched trust types.
var suspiciousPatterns = []struct {
	pattern   string
	indicator string
	highRisk  bool
	trustOnly bool // corporate-suffix patterns are only meaningful on trusts
}{
	{"llc", "trust_with_llc", false, true},
	{"inc", "trust_with_corp", false, true},
	{"corp", "trust_with_corp", false, true},
	{"ltd", "trust_with_ltd", false, true},
	{"offshore", "offshore", true, false},
	{"international business", "offshore", true, false},
	{"international", "international_trust", true, false},
	{"privacy", "privacy_trust", false, true},
	{"anonymous", "anonymous_trust", false, true},
}

// Classify inspects an entity name and returns its classification tags.
// An empty name yields the zero classification.
func Classify(name string) entity.Classification {
	c := entity.Classification{
		TrustTypes:     []string{},
		MatchTerms:     []string{},
		RiskIndicators: []string{},
	}
	if strings.TrimSpace(name) == "" {
		return c
	}

	lower := strings.ToLower(strings.TrimSpace(name))
	c.IsTrust = strings.Contains(lower, "trust")

	seenTypes := map[string]bool{}
	for keyword, trustType := range trustKeywords {
		if !strings.Contains(lower, keyword) {
			continue
		}
		c.MatchTerms = append(c.MatchTerms, keyword)
		if !seenTypes[trustType] {
			seenTypes[trustType] = true
			c.TrustTypes = append(c.TrustTypes, trustType)
		}
	}
	// Map iteration order is random; keep output deterministic.
	sort.Strings(c.TrustTypes)
	sort.Strings(c.MatchTerms)

	// "Trust" in the name but no specific type keyword.
	if c.IsTrust && len(c.TrustTypes) == 0 {
		c.TrustTypes = append(c.TrustTypes, "Generic Trust")
	}

	for _, t := range c.TrustTypes {
		if highRiskTypes[t] {
			c.RiskIndicators = append(c.RiskIndicators, "high_risk_type:"+t)
			c.HighRisk = true
		}
	}
	for _, t := range c.TrustTypes {
		if regulatedTypes[t] {
			c.RiskIndicators = append(c.RiskIndicators, "requires_regulation:"+t)
			c.RequiresRegulation = true
		}
	}

	seenIndicators := map[string]bool{}
	for _, sp := range suspiciousPatterns {
		if sp.trustOnly && !c.IsTrust {
			continue
		}
		if !strings.Contains(lower, sp.pattern) || seenIndicators[sp.indicator] {
			continue
		}
		seenIndicators[sp.indicator] = true
		c.RiskIndicators = append(c.RiskIndicators, sp.indicator)
		if sp.highRisk {
			c.HighRisk = true
		}
	}

	return c
}

// Flags renders human-readable red flags for a classification. Flags
// for regulated types only fire when the entity lacks an EIN.
func Flags(c entity.Classification, hasEIN bool) []string {
	var flags []string
	if !c.IsTrust && !c.HighRisk {
		return flags
	}

	if c.HighRisk {
		var riskTypes []string
		for _, t := range c.TrustTypes {
			if highRiskTypes[t] {
				riskTypes = append(riskTypes, t)
			}
		}
		if len(riskTypes) > 0 {
			flags = append(flags, "Entity appears to be a high-risk trust type: "+strings.Join(riskTypes, ", "))
		}
	}

	if c.RequiresRegulation && !hasEIN {
		var regulated []string
		for _, t := range c.TrustTypes {
			if regulatedTypes[t] {
				regulated = append(regulated, t)
			}
		}
		flags = append(flags, strings.Join(regulated, ", ")+" missing required EIN or regulatory filing")
	}

	for _, indicator := range c.RiskIndicators {
		switch {
		case strings.HasPrefix(indicator, "trust_with_"):
			suffix := strings.ToUpper(strings.TrimPrefix(indicator, "trust_with_"))
			flags = append(flags, "Unusual trust structure: combines trust with "+suffix)
		case indicator == "offshore" || indicator == "international_trust":
			flags = append(flags, "International or offshore trust structure detected")
		case indicator == "privacy_trust" || indicator == "anonymous_trust":
			flags = append(flags, "Privacy-focused trust name may indicate asset concealment")
		}
	}

	if len(c.TrustTypes) == 1 && c.TrustTypes[0] == "Generic Trust" {
		flags = append(flags, "Generic trust entity without clear classification or purpose")
	}

	return dedupe(flags)
}

// SourceLinks returns trust-type-specific lookup URLs for the entity.
func SourceLinks(name string, c entity.Classification) map[string]string {
	encoded := url.QueryEscape(name)
	links := map[string]string{}

	for _, t := range c.TrustTypes {
		switch t {
		case "Charitable Trust":
			links["irs_990"] = "https://apps.irs.gov/app/eos/allSearch?names=" + encoded
			links["charity_navigator"] = "https://www.charitynavigator.org/index.cfm?bay=search.summary&orgname=" + encoded
		case "Investment Trust", "REIT (Trust)":
			links["sec_edgar"] = "https://www.sec.gov/cgi-bin/browse-edgar?company=" + encoded + "&match=contains"
		case "Testamentary Trust":
			links["court_records"] = "https://www.courtrecords.org/search?name=" + encoded
		}
	}

	return links
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
