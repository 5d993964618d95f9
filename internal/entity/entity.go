// Package entity defines the data contracts for entity risk analysis:
// the analysis input, the signal bundle gathered from public-record
// sources, and the assembled risk report.
package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Input limits. Mirrors the public API contract: oversized requests are
// rejected before any collector runs.
const (
	MaxNameLength    = 200
	MaxAddressLength = 500
	MaxOfficers      = 20
)

var einPattern = regexp.MustCompile(`^\d{2}-?\d{7}$`)

// Validation errors returned by Input.Validate.
var (
	ErrEmptyName       = errors.New("entity name is required")
	ErrNameTooLong     = fmt.Errorf("entity name too long (max %d characters)", MaxNameLength)
	ErrAddressTooLong  = fmt.Errorf("address too long (max %d characters)", MaxAddressLength)
	ErrTooManyOfficers = fmt.Errorf("too many officers listed (max %d)", MaxOfficers)
	ErrInvalidEIN      = errors.New("invalid EIN format")
)

// Input describes the entity to analyze. Immutable once constructed;
// one Input is built per request.
type Input struct {
	Name     string   `json:"name"`
	Address  string   `json:"address,omitempty"`
	EIN      string   `json:"ein,omitempty"`
	Officers []string `json:"officers,omitempty"`
	County   string   `json:"county,omitempty"`
}

// Validate checks field lengths and formats. A nil return means the
// input is safe to hand to the analyzer.
func (in *Input) Validate() error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(in.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(in.Address) > MaxAddressLength {
		return ErrAddressTooLong
	}
	if len(in.Officers) > MaxOfficers {
		return ErrTooManyOfficers
	}
	if in.EIN != "" && !einPattern.MatchString(in.EIN) {
		return ErrInvalidEIN
	}
	return nil
}

// HasEIN reports whether a federal EIN was supplied.
func (in *Input) HasEIN() bool {
	return strings.TrimSpace(in.EIN) != ""
}

// PropertyRecord holds county property-appraiser data for the entity's
// address.
type PropertyRecord struct {
	County          string `json:"county"`
	Address         string `json:"address"`
	OwnerName       string `json:"owner_name"`
	LandUse         string `json:"land_use"`
	MarketValue     string `json:"market_value"`
	DelinquentTaxes bool   `json:"delinquent_taxes"`
	SourceURL       string `json:"source_url"`
}

// CourtCase is a single case from a clerk-of-court search.
type CourtCase struct {
	CaseType        string `json:"case_type"`
	CaseNumber      string `json:"case_number"`
	Status          string `json:"status"`
	FiledDate       string `json:"filed_date"`
	County          string `json:"county"`
	Plaintiff       string `json:"plaintiff,omitempty"`
	PropertyAddress string `json:"property_address,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Chapter         string `json:"chapter,omitempty"`
	Description     string `json:"description,omitempty"`
	SearchURL       string `json:"search_url,omitempty"`
}

// CourtRecord summarizes court activity found for the entity.
type CourtRecord struct {
	Cases          []CourtCase `json:"cases"`
	RiskIndicators []string    `json:"risk_indicators"`
	CaseCount      int         `json:"case_count"`
	HasForeclosure bool        `json:"has_foreclosure"`
	HasTaxLien     bool        `json:"has_tax_lien"`
	HasCivil       bool        `json:"has_civil"`
	HasBankruptcy  bool        `json:"has_bankruptcy"`
}

// DomainInfo describes one domain attributed to the entity.
type DomainInfo struct {
	Domain            string  `json:"domain"`
	Registrar         string  `json:"registrar"`
	CreationDate      string  `json:"creation_date"`
	RegistrantOrg     string  `json:"registrant_organization"`
	RegistrantCountry string  `json:"registrant_country"`
	PrivacyProtection bool    `json:"privacy_protection"`
	WebsiteStatus     string  `json:"website_status"`
	MatchConfidence   float64 `json:"match_confidence"`
}

// DomainRecord summarizes the entity's web presence.
type DomainRecord struct {
	Domains              []DomainInfo `json:"domains"`
	DomainCount          int          `json:"domain_count"`
	RiskIndicators       []string     `json:"risk_indicators"`
	HasActiveWebsite     bool         `json:"has_active_website"`
	HasPrivacyProtection bool         `json:"has_privacy_protection"`
	RecentRegistration   bool         `json:"recent_registration"`
}

// OfficerProfile summarizes one officer's footprint across entities.
type OfficerProfile struct {
	Name              string   `json:"name"`
	MatchedName       string   `json:"matched_name"`
	Confidence        float64  `json:"confidence"`
	TotalEntities     int      `json:"total_entities"`
	ActiveEntities    int      `json:"active_entities"`
	ConnectedEntities []string `json:"connected_entities"`
	RiskFlags         []string `json:"risk_flags,omitempty"`
}

// OfficerCrossRef summarizes officer connections across entities.
type OfficerCrossRef struct {
	Officers               []OfficerProfile `json:"officers"`
	RiskIndicators         []string         `json:"risk_indicators"`
	TotalEntitiesConnected int              `json:"total_entities_connected"`
	HasSharedOfficers      bool             `json:"has_shared_officers"`
	HasProblematicOfficers bool             `json:"has_problematic_officers"`
}

// GrantAward is a single grant or contract award.
type GrantAward struct {
	AwardID          string `json:"award_id"`
	Title            string `json:"title"`
	Agency           string `json:"agency"`
	AwardDate        string `json:"award_date"`
	Amount           string `json:"amount"`
	Type             string `json:"type"`
	Status           string `json:"status"`
	ComplianceStatus string `json:"compliance_status,omitempty"`
}

// GrantRecord summarizes the entity's public funding history.
type GrantRecord struct {
	Grants              []GrantAward `json:"grants"`
	Contracts           []GrantAward `json:"contracts"`
	TotalAwards         int          `json:"total_awards"`
	TotalFunding        float64      `json:"total_funding"`
	ProblematicAwards   int          `json:"problematic_awards"`
	RiskIndicators      []string     `json:"risk_indicators"`
	HasFederalFunding   bool         `json:"has_federal_funding"`
	HasStateFunding     bool         `json:"has_state_funding"`
	HasComplianceIssues bool         `json:"has_compliance_issues"`
}

// SignalBundle carries the per-source lookups for one analysis request.
// A nil sub-record means that source had no data or was skipped; absence
// contributes zero risk points, it is never an error.
type SignalBundle struct {
	Property *PropertyRecord  `json:"property,omitempty"`
	Court    *CourtRecord     `json:"court_data,omitempty"`
	Domain   *DomainRecord    `json:"domain_data,omitempty"`
	Officers *OfficerCrossRef `json:"officer_data,omitempty"`
	Grants   *GrantRecord     `json:"grants_data,omitempty"`
}

// Classification holds the entity-type tags produced by the keyword
// classifier, separate from the numeric risk score.
type Classification struct {
	IsTrust            bool     `json:"is_trust"`
	TrustTypes         []string `json:"trust_types"`
	MatchTerms         []string `json:"match_terms"`
	RiskIndicators     []string `json:"risk_indicators"`
	RequiresRegulation bool     `json:"requires_regulation"`
	HighRisk           bool     `json:"high_risk"`
}

// Report is the assembled analysis result returned to the caller.
// Anomalies carries exactly one message per triggered scoring rule, in
// rule-table order; classifier findings are reported separately in
// ClassificationFlags so the two outputs stay independent.
type Report struct {
	Name                string            `json:"name"`
	RiskScore           int               `json:"risk_score"`
	Tier                string            `json:"tier"`
	Anomalies           []string          `json:"anomalies"`
	ClassificationFlags []string          `json:"classification_flags,omitempty"`
	EntityType          Classification    `json:"entity_type"`
	Property            *PropertyRecord   `json:"property,omitempty"`
	CourtData           *CourtRecord      `json:"court_data,omitempty"`
	DomainData          *DomainRecord     `json:"domain_data,omitempty"`
	OfficerData         *OfficerCrossRef  `json:"officer_data,omitempty"`
	GrantsData          *GrantRecord      `json:"grants_data,omitempty"`
	SourceLinks         map[string]string `json:"source_links"`
}
