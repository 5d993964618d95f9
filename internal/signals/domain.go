package signals

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// recentRegistrationWindow marks registrations within this window as
// recent.
const recentRegistrationWindow = 180 * 24 * time.Hour

// demoWhois holds the demo WHOIS dataset. A production implementation
// would use a WHOIS client and live HTTP checks.
type demoDomain struct {
	Registrar         string
	CreationDate      string
	RegistrantOrg     string
	RegistrantCountry string
	PrivacyProtection bool
	WebsiteStatus     string // active, parked, under_construction
}

var demoWhois = map[string]demoDomain{
	"sunshinetrustflorida.com": {
		Registrar:         "GoDaddy.com LLC",
		CreationDate:      "2024-01-15",
		RegistrantOrg:     "Sunshine Holdings LLC",
		RegistrantCountry: "US",
		PrivacyProtection: false,
		WebsiteStatus:     "active",
	},
	"offshoretrustinc.com": {
		Registrar:         "Namecheap Inc",
		CreationDate:      "2024-10-20",
		RegistrantOrg:     "Privacy Protection Service",
		RegistrantCountry: "PA",
		PrivacyProtection: true,
		WebsiteStatus:     "parked",
	},
	"businessinvestmenttrust.org": {
		Registrar:         "Network Solutions LLC",
		CreationDate:      "2024-09-01",
		RegistrantOrg:     "Business Investment Trust LLC",
		RegistrantCountry: "US",
		PrivacyProtection: false,
		WebsiteStatus:     "under_construction",
	},
}

var domainCleanRe = regexp.MustCompile(`[^\w\s]`)

// DemoDomainSource resolves an entity's likely domains against the
// demo WHOIS dataset.
type DemoDomainSource struct {
	// Now is injected for tests; defaults to time.Now.
	Now func() time.Time
}

// NewDemoDomainSource returns the demo domain collector.
func NewDemoDomainSource() *DemoDomainSource {
	return &DemoDomainSource{Now: time.Now}
}

// Name identifies this source in logs and metrics.
func (s *DemoDomainSource) Name() string { return "domain" }

// Analyze generates domain-name variations for the entity and checks
// each against the WHOIS dataset.
func (s *DemoDomainSource) Analyze(ctx context.Context, entityName string) (*entity.DomainRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(entityName) == "" {
		return nil, nil
	}

	var found []entity.DomainInfo
	for _, domain := range domainVariations(entityName) {
		who, ok := demoWhois[domain]
		if !ok {
			continue
		}
		found = append(found, entity.DomainInfo{
			Domain:            domain,
			Registrar:         who.Registrar,
			CreationDate:      who.CreationDate,
			RegistrantOrg:     who.RegistrantOrg,
			RegistrantCountry: who.RegistrantCountry,
			PrivacyProtection: who.PrivacyProtection,
			WebsiteStatus:     who.WebsiteStatus,
			MatchConfidence:   matchConfidence(entityName, who.RegistrantOrg),
		})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Domain < found[j].Domain })

	record := &entity.DomainRecord{
		Domains:        found,
		DomainCount:    len(found),
		RiskIndicators: []string{},
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	for _, d := range found {
		if d.WebsiteStatus == "active" {
			record.HasActiveWebsite = true
		}
		if d.PrivacyProtection {
			record.HasPrivacyProtection = true
		}
		if created, err := time.Parse("2006-01-02", d.CreationDate); err == nil {
			if now().Sub(created) <= recentRegistrationWindow {
				record.RecentRegistration = true
			}
		}
	}

	if len(found) > 0 && !record.HasActiveWebsite {
		record.RiskIndicators = append(record.RiskIndicators, "registered_domains_without_active_site")
	}
	if record.HasPrivacyProtection {
		record.RiskIndicators = append(record.RiskIndicators, "whois_privacy_protection")
	}
	if record.RecentRegistration {
		record.RiskIndicators = append(record.RiskIndicators, "recent_domain_registration")
	}

	return record, nil
}

// domainVariations builds candidate domains from the entity name:
// suffix-stripped concatenations across common TLDs, plus the demo
// dataset's entity-specific patterns.
func domainVariations(entityName string) []string {
	clean := domainCleanRe.ReplaceAllString(strings.ToLower(entityName), "")
	for _, suffix := range []string{"llc", "inc", "corp", "trust", "foundation", "ltd", "company", "co"} {
		clean = strings.ReplaceAll(clean, suffix, "")
	}
	clean = strings.Join(strings.Fields(clean), " ")

	bases := []string{
		strings.ReplaceAll(clean, " ", ""),
		strings.ReplaceAll(clean, " ", "-"),
		strings.ReplaceAll(clean, " ", "") + "llc",
		strings.ReplaceAll(clean, " ", "") + "trust",
		strings.ReplaceAll(clean, " ", "") + "inc",
	}

	var variations []string
	seen := map[string]bool{}
	for _, base := range bases {
		if len(base) <= 2 {
			continue
		}
		for _, tld := range []string{".com", ".org", ".net", ".us"} {
			d := base + tld
			if !seen[d] {
				seen[d] = true
				variations = append(variations, d)
			}
		}
	}

	lower := strings.ToLower(entityName)
	switch {
	case strings.Contains(lower, "sunshine") && strings.Contains(lower, "holdings"):
		variations = append(variations, "sunshinetrustflorida.com")
	case strings.Contains(lower, "offshore") && strings.Contains(lower, "trust"):
		variations = append(variations, "offshoretrustinc.com")
	case strings.Contains(lower, "business") && strings.Contains(lower, "investment"):
		variations = append(variations, "businessinvestmenttrust.org")
	}

	return variations
}

// matchConfidence scores how much of the entity name's tokens appear in
// the registrant organization.
func matchConfidence(entityName, registrantOrg string) float64 {
	entityWords := strings.Fields(strings.ToLower(entityName))
	if len(entityWords) == 0 {
		return 0
	}
	org := strings.ToLower(registrantOrg)
	matched := 0
	for _, w := range entityWords {
		if strings.Contains(org, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(entityWords))
}
