// Package scoring implements the risk rule evaluator: a fixed ordered
// table of independent predicate/points/message rules applied to an
// entity and its gathered signals.
package scoring

import (
	"strings"

	"github.com/Adahandles/ledgertrace/internal/entity"
)

// OfficerCountThreshold is the officer list size above which the
// complex-structure rule fires.
const OfficerCountThreshold = 5

// ConnectedEntityThreshold is the connected-entity count above which
// the dense-network rule fires.
const ConnectedEntityThreshold = 10

// Rule is one entry in the evaluation table. Predicate must be pure:
// same input, same answer. Rules never short-circuit each other; every
// matching rule contributes its points and its message.
type Rule struct {
	Name      string
	Points    int
	Message   string
	Predicate func(in *entity.Input, sig *entity.SignalBundle) bool
}

// Rules is the evaluation table. Order is load-bearing: anomalies are
// reported in table order.
var Rules = []Rule{
	{
		Name:    "missing_ein",
		Points:  20,
		Message: "No EIN provided",
		Predicate: func(in *entity.Input, _ *entity.SignalBundle) bool {
			return !in.HasEIN()
		},
	},
	{
		Name:    "po_box_address",
		Points:  15,
		Message: "PO Box detected in address",
		Predicate: func(in *entity.Input, _ *entity.SignalBundle) bool {
			addr := strings.ToLower(in.Address)
			return strings.Contains(addr, "po box") || strings.Contains(addr, "p.o. box")
		},
	},
	{
		Name:    "delinquent_taxes",
		Points:  20,
		Message: "Delinquent property taxes detected",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Property != nil && sig.Property.DelinquentTaxes
		},
	},
	{
		Name:    "vacant_property",
		Points:  15,
		Message: "Vacant property",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Property != nil &&
				strings.Contains(strings.ToLower(sig.Property.LandUse), "vacant")
		},
	},
	{
		Name:    "mail_drop_property",
		Points:  25,
		Message: "Property address may be a mail drop service",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Property != nil &&
				strings.Contains(strings.ToLower(sig.Property.LandUse), "mail")
		},
	},
	{
		Name:    "no_market_value",
		Points:  10,
		Message: "Property has no assessed market value",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			if sig.Property == nil {
				return false
			}
			return sig.Property.MarketValue == "N/A" || sig.Property.MarketValue == "$0"
		},
	},
	{
		Name:    "complex_officer_structure",
		Points:  10,
		Message: "Complex officer structure",
		Predicate: func(in *entity.Input, _ *entity.SignalBundle) bool {
			return len(in.Officers) > OfficerCountThreshold
		},
	},
	{
		Name:    "foreclosure",
		Points:  20,
		Message: "Foreclosure proceeding on record",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Court != nil && sig.Court.HasForeclosure
		},
	},
	{
		Name:    "bankruptcy",
		Points:  20,
		Message: "Bankruptcy filing on record",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Court != nil && sig.Court.HasBankruptcy
		},
	},
	{
		Name:    "tax_lien",
		Points:  15,
		Message: "Tax lien on record",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Court != nil && sig.Court.HasTaxLien
		},
	},
	{
		Name:    "no_web_presence",
		Points:  10,
		Message: "No active web presence",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Domain != nil && !sig.Domain.HasActiveWebsite
		},
	},
	{
		Name:    "recent_domain",
		Points:  10,
		Message: "Recently registered domain",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Domain != nil && sig.Domain.RecentRegistration
		},
	},
	{
		Name:    "whois_privacy",
		Points:  10,
		Message: "WHOIS privacy protection on registered domain",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Domain != nil && sig.Domain.HasPrivacyProtection
		},
	},
	{
		Name:    "grant_compliance",
		Points:  15,
		Message: "Grant compliance issues found",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Grants != nil && sig.Grants.HasComplianceIssues
		},
	},
	{
		Name:    "shared_officers",
		Points:  10,
		Message: "Shared officers with flagged entities",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Officers != nil && sig.Officers.HasSharedOfficers
		},
	},
	{
		Name:    "dense_officer_network",
		Points:  10,
		Message: "Officers connected to an unusually large entity network",
		Predicate: func(_ *entity.Input, sig *entity.SignalBundle) bool {
			return sig.Officers != nil &&
				sig.Officers.TotalEntitiesConnected > ConnectedEntityThreshold
		},
	},
}
