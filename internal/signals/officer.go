package signals

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// officerMatchThreshold is the minimum name similarity for an officer
// database match.
const officerMatchThreshold = 0.8

// serialEntityThreshold flags officers active in this many entities.
const serialEntityThreshold = 3

// demoOfficer is one entry in the demo officer registry. A production
// implementation would query state filing and SEC data.
type demoOfficer struct {
	Name         string
	Variations   []string
	Entities     []officerEntity
	Addresses    []string
	Affiliations []string
}

type officerEntity struct {
	EntityName string
	Role       string
	Status     string // Active, Resigned, Terminated
}

var demoOfficers = []demoOfficer{
	{
		Name:       "John Smith",
		Variations: []string{"John A Smith", "J. Smith", "John Smith Jr"},
		Entities: []officerEntity{
			{EntityName: "Sunshine Holdings LLC", Role: "Managing Member", Status: "Active"},
			{EntityName: "Coastal Development Trust", Role: "Trustee", Status: "Active"},
			{EntityName: "Florida Investment Properties LLC", Role: "Member", Status: "Resigned"},
		},
		Addresses: []string{
			"123 Investment Blvd, Ocala, FL 34471",
			"456 Business Park Dr, Tampa, FL 33602",
		},
		Affiliations: []string{
			"Licensed Real Estate Broker - FL",
			"Registered Investment Advisor",
		},
	},
	{
		Name:       "Michael Johnson",
		Variations: []string{"Michael A Johnson", "Mike Johnson", "M. Johnson"},
		Entities: []officerEntity{
			{EntityName: "Business Investment Trust LLC", Role: "President", Status: "Active"},
			{EntityName: "Offshore Holdings Trust", Role: "Managing Director", Status: "Active"},
			{EntityName: "Investment Advisory Services Inc", Role: "CEO", Status: "Active"},
		},
		Addresses: []string{
			"789 Financial Plaza, Miami, FL 33101",
			"PO Box 12345, Cayman Islands",
		},
		Affiliations: []string{
			"CPA License - FL (Suspended 2024)",
			"Series 7 Securities License",
		},
	},
	{
		Name:       "Sarah Williams",
		Variations: []string{"Sarah M Williams", "S. Williams", "Sarah Martinez-Williams"},
		Entities: []officerEntity{
			{EntityName: "Florida Educational Charitable Trust", Role: "Executive Director", Status: "Active"},
			{EntityName: "Community Development Foundation", Role: "Board Member", Status: "Active"},
		},
		Addresses: []string{
			"321 Charity Lane, Gainesville, FL 32601",
		},
		Affiliations: []string{
			"Nonprofit Management Certificate",
		},
	},
}

// regulatoryKeywords mark affiliations that indicate license problems.
var regulatoryKeywords = []string{"suspended", "revoked", "sanctioned", "violation"}

var (
	titleRe      = regexp.MustCompile(`\b(mr|mrs|ms|dr|jr|sr|ii|iii)\b`)
	initialRe    = regexp.MustCompile(`\b[a-z]\.\s*`)
	namePunctRe  = regexp.MustCompile(`[^\w\s]`)
	nameSpacesRe = regexp.MustCompile(`\s+`)
)

// DemoOfficerSource cross-references officers against the demo officer
// registry using normalized-name similarity.
type DemoOfficerSource struct{}

// NewDemoOfficerSource returns the demo officer collector.
func NewDemoOfficerSource() *DemoOfficerSource {
	return &DemoOfficerSource{}
}

// Name identifies this source in logs and metrics.
func (s *DemoOfficerSource) Name() string { return "officer" }

// CrossReference resolves each officer and reports connections to other
// entities plus problematic-officer indicators.
func (s *DemoOfficerSource) CrossReference(ctx context.Context, entityName string, officers []string) (*entity.OfficerCrossRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(officers) == 0 {
		return nil, nil
	}

	record := &entity.OfficerCrossRef{
		Officers:       []entity.OfficerProfile{},
		RiskIndicators: []string{},
	}
	connected := map[string]bool{}
	indicators := map[string]bool{}

	for _, officerName := range officers {
		if strings.TrimSpace(officerName) == "" {
			continue
		}
		match, confidence := findOfficer(officerName)
		if match == nil {
			continue
		}

		profile := entity.OfficerProfile{
			Name:        officerName,
			MatchedName: match.Name,
			Confidence:  confidence,
		}
		for _, e := range match.Entities {
			profile.TotalEntities++
			if e.Status == "Active" {
				profile.ActiveEntities++
			}
			if !strings.EqualFold(e.EntityName, entityName) {
				profile.ConnectedEntities = append(profile.ConnectedEntities, e.EntityName)
				connected[e.EntityName] = true
			}
		}
		profile.RiskFlags = officerRiskFlags(match)
		for _, ind := range officerRiskIndicators(match) {
			indicators[ind] = true
		}
		record.Officers = append(record.Officers, profile)
	}

	for ind := range indicators {
		record.RiskIndicators = append(record.RiskIndicators, ind)
	}
	sort.Strings(record.RiskIndicators)

	record.TotalEntitiesConnected = len(connected)
	record.HasSharedOfficers = len(connected) > 0
	for _, ind := range record.RiskIndicators {
		if strings.HasPrefix(ind, "problematic") || strings.HasPrefix(ind, "regulatory_issues") {
			record.HasProblematicOfficers = true
		}
	}
	return record, nil
}

// findOfficer returns the best registry match at or above the
// similarity threshold.
func findOfficer(officerName string) (*demoOfficer, float64) {
	search := normalizeName(officerName)

	var best *demoOfficer
	bestScore := 0.0
	for i := range demoOfficers {
		candidate := &demoOfficers[i]
		names := append([]string{candidate.Name}, candidate.Variations...)
		for _, variant := range names {
			score := nameSimilarity(search, normalizeName(variant))
			if score >= officerMatchThreshold && score > bestScore {
				bestScore = score
				best = candidate
			}
		}
	}
	return best, bestScore
}

// normalizeName strips titles, suffixes, middle initials, and
// punctuation for comparison.
func normalizeName(name string) string {
	n := strings.ToLower(name)
	n = titleRe.ReplaceAllString(n, "")
	n = initialRe.ReplaceAllString(n, "")
	n = namePunctRe.ReplaceAllString(n, " ")
	n = nameSpacesRe.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// nameSimilarity is a token-sort Dice coefficient over character
// bigrams, an adequate stand-in for sequence-ratio matching on short
// person names.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	aw := strings.Fields(a)
	bw := strings.Fields(b)
	sort.Strings(aw)
	sort.Strings(bw)
	as := strings.Join(aw, " ")
	bs := strings.Join(bw, " ")
	if as == bs {
		return 1
	}

	abi := bigrams(as)
	bbi := bigrams(bs)
	if len(abi) == 0 || len(bbi) == 0 {
		return 0
	}
	overlap := 0
	for g, n := range abi {
		if m, ok := bbi[g]; ok {
			if m < n {
				overlap += m
			} else {
				overlap += n
			}
		}
	}
	total := 0
	for _, n := range abi {
		total += n
	}
	for _, n := range bbi {
		total += n
	}
	return 2 * float64(overlap) / float64(total)
}

func bigrams(s string) map[string]int {
	grams := map[string]int{}
	runes := []rune(s)
	for i := 0; i+1 < len(runes); i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// officerRiskIndicators derives machine-readable indicators for one
// matched officer.
func officerRiskIndicators(o *demoOfficer) []string {
	var risks []string

	active := 0
	resigned := 0
	for _, e := range o.Entities {
		if e.Status == "Active" {
			active++
		}
		if e.Status == "Resigned" || e.Status == "Terminated" {
			resigned++
		}
	}
	if active >= serialEntityThreshold {
		risks = append(risks, fmt.Sprintf("serial_entity_creator:%d", active))
	}
	if resigned >= 2 {
		risks = append(risks, fmt.Sprintf("multiple_resignations:%d", resigned))
	}

	for _, aff := range o.Affiliations {
		lower := strings.ToLower(aff)
		for _, kw := range regulatoryKeywords {
			if strings.Contains(lower, kw) {
				risks = append(risks, "regulatory_issues:"+kw)
				break
			}
		}
	}

	offshore := 0
	for _, e := range o.Entities {
		if strings.Contains(strings.ToLower(e.EntityName), "offshore") {
			offshore++
		}
	}
	for _, addr := range o.Addresses {
		if strings.Contains(strings.ToLower(addr), "cayman") {
			offshore++
		}
	}
	if offshore > 0 {
		risks = append(risks, fmt.Sprintf("offshore_connections:%d", offshore))
	}

	for _, addr := range o.Addresses {
		if strings.Contains(strings.ToLower(addr), "po box") {
			risks = append(risks, "po_box_address")
			break
		}
	}

	return risks
}

// officerRiskFlags renders human-readable flags for one matched
// officer.
func officerRiskFlags(o *demoOfficer) []string {
	var flags []string

	active := 0
	for _, e := range o.Entities {
		if e.Status == "Active" {
			active++
		}
	}
	if active >= serialEntityThreshold {
		flags = append(flags, fmt.Sprintf("Active in %d entities simultaneously", active))
	}
	for _, aff := range o.Affiliations {
		lower := strings.ToLower(aff)
		for _, kw := range regulatoryKeywords {
			if strings.Contains(lower, kw) {
				flags = append(flags, "License or regulatory issue: "+aff)
				break
			}
		}
	}
	return flags
}
