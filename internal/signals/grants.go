package signals

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// demoAwards is the demo grant/contract dataset keyed by normalized
// entity name. A production implementation would query USASpending.gov
// and state award databases.
var demoAwards = map[string]struct {
	Grants    []entity.GrantAward
	Contracts []entity.GrantAward
}{
	"sunshine_holdings_llc": {
		Grants: []entity.GrantAward{{
			AwardID:          "FEMA-FL-2024-001234",
			Title:            "Hurricane Recovery Housing Initiative",
			Agency:           "FEMA",
			AwardDate:        "2024-10-15",
			Amount:           "$2,500,000",
			Type:             "Grant",
			Status:           "Active",
			ComplianceStatus: "Under Review",
		}},
		Contracts: []entity.GrantAward{{
			AwardID:          "FL-DOT-2024-5678",
			Title:            "Emergency Road Repair Services",
			Agency:           "Florida Department of Transportation",
			AwardDate:        "2024-11-01",
			Amount:           "$450,000",
			Type:             "Contract",
			Status:           "Active",
			ComplianceStatus: "Current",
		}},
	},
	"florida_educational_charitable_trust": {
		Grants: []entity.GrantAward{
			{
				AwardID:          "ED-FL-2024-9876",
				Title:            "Rural Education Technology Initiative",
				Agency:           "U.S. Department of Education",
				AwardDate:        "2024-08-01",
				Amount:           "$750,000",
				Type:             "Grant",
				Status:           "Active",
				ComplianceStatus: "Current",
			},
			{
				AwardID:          "FL-DOE-2024-3333",
				Title:            "Teacher Professional Development Program",
				Agency:           "Florida Department of Education",
				AwardDate:        "2024-09-15",
				Amount:           "$125,000",
				Type:             "Grant",
				Status:           "Active",
				ComplianceStatus: "Current",
			},
		},
	},
	"business_investment_trust_llc": {
		Grants: []entity.GrantAward{{
			AwardID:          "SBA-FL-2024-7890",
			Title:            "Small Business Recovery Loan Program",
			Agency:           "Small Business Administration",
			AwardDate:        "2024-06-01",
			Amount:           "$350,000",
			Type:             "Loan/Grant Hybrid",
			Status:           "Under Investigation",
			ComplianceStatus: "Non-Compliant - Misuse Investigation",
		}},
		Contracts: []entity.GrantAward{{
			AwardID:          "FL-DBPR-2024-1111",
			Title:            "Construction Oversight Services",
			Agency:           "Florida DBPR",
			AwardDate:        "2024-07-15",
			Amount:           "$75,000",
			Type:             "Contract",
			Status:           "Terminated",
			ComplianceStatus: "Breach of Contract",
		}},
	},
}

var federalAgencyIndicators = []string{
	"u.s.", "united states", "federal", "fema", "department of",
	"sba", "small business administration", "irs", "treasury",
}

var stateAgencyIndicators = []string{
	"florida", "fl", "state of", "department of transportation",
	"dbpr", "doe", "department of education",
}

// complianceProblemStatuses mark an award as problematic.
var complianceProblemStatuses = []string{"non-compliant", "under review", "breach of contract"}

var grantLookupRe = regexp.MustCompile(`[^\w\s]`)

// DemoGrantSource looks up award history in the demo dataset.
type DemoGrantSource struct{}

// NewDemoGrantSource returns the demo grant collector.
func NewDemoGrantSource() *DemoGrantSource {
	return &DemoGrantSource{}
}

// Name identifies this source in logs and metrics.
func (s *DemoGrantSource) Name() string { return "grants" }

// Awards returns the entity's grant and contract history with funding
// risk indicators.
func (s *DemoGrantSource) Awards(ctx context.Context, entityName, ein string) (*entity.GrantRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(entityName) == "" {
		return nil, nil
	}

	data, ok := demoAwards[normalizeForLookup(entityName)]
	if !ok {
		return &entity.GrantRecord{
			Grants:         []entity.GrantAward{},
			Contracts:      []entity.GrantAward{},
			RiskIndicators: []string{},
		}, nil
	}

	all := append(append([]entity.GrantAward{}, data.Grants...), data.Contracts...)

	record := &entity.GrantRecord{
		Grants:         data.Grants,
		Contracts:      data.Contracts,
		TotalAwards:    len(all),
		RiskIndicators: []string{},
	}
	for _, a := range all {
		record.TotalFunding += parseDollars(a.Amount)
		if isProblematic(a) {
			record.ProblematicAwards++
		}
		agency := strings.ToLower(a.Agency)
		if containsAny(agency, federalAgencyIndicators...) {
			record.HasFederalFunding = true
		}
		if containsAny(agency, stateAgencyIndicators...) {
			record.HasStateFunding = true
		}
	}
	record.HasComplianceIssues = record.ProblematicAwards > 0
	record.RiskIndicators = fundingRiskIndicators(all, data.Contracts)

	return record, nil
}

// fundingRiskIndicators derives pattern indicators from award history.
func fundingRiskIndicators(all, contracts []entity.GrantAward) []string {
	indicators := []string{}
	if len(all) == 0 {
		return indicators
	}

	for _, a := range all {
		status := strings.ToLower(a.ComplianceStatus)
		if containsAny(status, "investigation", "review", "audit", "non-compliant") {
			indicators = append(indicators, "award_during_investigation:"+a.AwardID)
		}
	}

	terminated := 0
	for _, c := range contracts {
		if c.Status == "Terminated" || c.Status == "Breached" {
			terminated++
		}
	}
	if terminated > 0 {
		indicators = append(indicators, fmt.Sprintf("terminated_contracts:%d", terminated))
	}

	nonCompliant := 0
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.ComplianceStatus), "non-compliant") {
			nonCompliant++
		}
	}
	if nonCompliant > 0 {
		indicators = append(indicators, fmt.Sprintf("compliance_violations:%d", nonCompliant))
	}

	return indicators
}

func isProblematic(a entity.GrantAward) bool {
	status := strings.ToLower(a.ComplianceStatus)
	for _, problem := range complianceProblemStatuses {
		if strings.Contains(status, problem) {
			return true
		}
	}
	return false
}

// normalizeForLookup lowercases and underscores an entity name to the
// dataset's key form.
func normalizeForLookup(entityName string) string {
	n := grantLookupRe.ReplaceAllString(strings.ToLower(entityName), "")
	return strings.Join(strings.Fields(n), "_")
}
