// Package catalog loads the benefit catalog and fee schedule artifacts.
// Both are read once at startup, fully normalized during load, and treated
// as immutable shared state from then on.
package catalog

import (
	"github.com/gyeh/claimgate/internal/normalize"
)

// Set is a membership set of normalized category strings.
type Set map[string]struct{}

// Has reports membership. The caller is responsible for normalizing s first.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// WaitingPeriods are the day thresholds a policy must have been on cover
// before the corresponding category becomes claimable.
type WaitingPeriods struct {
	GeneralHospitalDays int `json:"general_hospital_days"`
	PregnancyDays       int `json:"pregnancy_days"`
	PreexistingDays     int `json:"preexisting_days"`
}

// PlanPricing maps hospital tier to the member coinsurance rate.
type PlanPricing struct {
	CoinsuranceByTier map[int]float64
}

// Default coinsurance rates when plan_pricing is unconfigured.
var defaultCoinsurance = map[int]float64{1: 0.10, 2: 0.20, 3: 0.40}

// CoinsuranceForTier returns the coinsurance rate for a tier, falling back
// to 20% for tiers outside the configured table.
func (p PlanPricing) CoinsuranceForTier(tier int) float64 {
	if rate, ok := p.CoinsuranceByTier[tier]; ok {
		return rate
	}
	return 0.20
}

// BenefitCatalog is the normalized benefit configuration for one deployment.
// All set and synonym entries are lower-cased and trimmed at load time;
// lookups must normalize their input the same way.
type BenefitCatalog struct {
	HospitalInclusions Set
	HospitalExclusions Set
	ExtrasInclusions   Set
	ExtrasExclusions   Set
	HospitalRestricted Set

	Synonyms map[string]string

	WaitingPeriods    WaitingPeriods
	MaxSubmissionDays int

	// Deployment-specific business rules, configurable with compatible defaults.
	AllowedCountries Set
	CosmeticKeywords []string

	PlanPricing PlanPricing
}

// NormalizeCategory maps a free-text clinical category through the synonym
// table onto its canonical, lower-cased form.
func (c *BenefitCatalog) NormalizeCategory(raw string) string {
	return normalize.Category(raw, c.Synonyms)
}

// FeeSchedule maps normalized clinical category to the maximum allowed
// benefit amount. Missing entries are a normal case, not an error.
type FeeSchedule struct {
	Allowed map[string]float64
}

// AllowedFor returns the scheduled allowed amount for a normalized category.
func (f *FeeSchedule) AllowedFor(category string) (float64, bool) {
	v, ok := f.Allowed[category]
	return v, ok
}
