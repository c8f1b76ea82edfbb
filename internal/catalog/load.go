package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/gyeh/claimgate/internal/normalize"
)

// Waiting-period and submission-window defaults applied when the catalog
// file omits them.
const (
	defaultGeneralHospitalDays = 60
	defaultPregnancyDays       = 365
	defaultPreexistingDays     = 365
	defaultMaxSubmissionDays   = 730
)

// catalogFile is the on-disk JSON shape of benefit_catalog.json.
type catalogFile struct {
	HospitalInclusions []string          `json:"hospital_inclusions"`
	HospitalExclusions []string          `json:"hospital_exclusions"`
	ExtrasInclusions   []string          `json:"extras_inclusions"`
	ExtrasExclusions   []string          `json:"extras_exclusions"`
	HospitalRestricted []string          `json:"hospital_restricted"`
	Synonyms           map[string]string `json:"synonyms"`
	WaitingPeriods     map[string]int    `json:"waiting_periods"`
	MaxSubmissionDays  *int              `json:"max_submission_days"`
	AllowedCountries   []string          `json:"allowed_countries"`
	CosmeticKeywords   []string          `json:"cosmetic_keywords"`
	PlanPricing        struct {
		CoinsuranceByTier map[string]float64 `json:"coinsurance_by_tier"`
	} `json:"plan_pricing"`
}

// feeFile is the on-disk JSON shape of fee_schedule.json.
type feeFile struct {
	MBSLikeAllowed map[string]float64 `json:"mbs_like_allowed"`
}

// LoadCatalog reads and normalizes benefit_catalog.json. A missing or
// malformed file is a fatal configuration error; the process must not
// adjudicate with partial configuration.
func LoadCatalog(path string) (*BenefitCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cf catalogFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	cat := &BenefitCatalog{
		HospitalInclusions: toSet(cf.HospitalInclusions),
		HospitalExclusions: toSet(cf.HospitalExclusions),
		ExtrasInclusions:   toSet(cf.ExtrasInclusions),
		ExtrasExclusions:   toSet(cf.ExtrasExclusions),
		HospitalRestricted: toSet(cf.HospitalRestricted),
		Synonyms:           make(map[string]string, len(cf.Synonyms)),
		WaitingPeriods: WaitingPeriods{
			GeneralHospitalDays: intOr(cf.WaitingPeriods, "general_hospital_days", defaultGeneralHospitalDays),
			PregnancyDays:       intOr(cf.WaitingPeriods, "pregnancy_days", defaultPregnancyDays),
			PreexistingDays:     intOr(cf.WaitingPeriods, "preexisting_days", defaultPreexistingDays),
		},
		MaxSubmissionDays: defaultMaxSubmissionDays,
		CosmeticKeywords:  defaultCosmeticKeywords(),
		PlanPricing:       PlanPricing{CoinsuranceByTier: defaultCoinsurance},
	}
	if cf.MaxSubmissionDays != nil {
		cat.MaxSubmissionDays = *cf.MaxSubmissionDays
	}
	for k, v := range cf.Synonyms {
		cat.Synonyms[normalize.Text(k)] = normalize.Text(v)
	}
	if len(cf.AllowedCountries) > 0 {
		cat.AllowedCountries = toSet(cf.AllowedCountries)
	} else {
		cat.AllowedCountries = toSet([]string{"au", "australia"})
	}
	if len(cf.CosmeticKeywords) > 0 {
		keywords := make([]string, 0, len(cf.CosmeticKeywords))
		for _, k := range cf.CosmeticKeywords {
			if t := normalize.Text(k); t != "" {
				keywords = append(keywords, t)
			}
		}
		cat.CosmeticKeywords = keywords
	}
	if len(cf.PlanPricing.CoinsuranceByTier) > 0 {
		tiers := make(map[int]float64, len(cf.PlanPricing.CoinsuranceByTier))
		for k, v := range cf.PlanPricing.CoinsuranceByTier {
			tier, err := strconv.Atoi(k)
			if err != nil {
				return nil, fmt.Errorf("parse catalog %s: coinsurance tier %q is not an integer", path, k)
			}
			tiers[tier] = v
		}
		cat.PlanPricing.CoinsuranceByTier = tiers
	}
	return cat, nil
}

// LoadFees reads and normalizes fee_schedule.json. Like the catalog, a bad
// fee schedule aborts startup.
func LoadFees(path string) (*FeeSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fee schedule: %w", err)
	}
	var ff feeFile
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse fee schedule %s: %w", path, err)
	}

	allowed := make(map[string]float64, len(ff.MBSLikeAllowed))
	for k, v := range ff.MBSLikeAllowed {
		allowed[normalize.Text(k)] = v
	}
	return &FeeSchedule{Allowed: allowed}, nil
}

// defaultCosmeticKeywords returns the built-in cosmetic/elective substring
// list, preserved for compatibility when the catalog does not override it.
func defaultCosmeticKeywords() []string {
	return []string{"cosmetic", "laser eye", "abdominoplasty", "breast augmentation", "rhinoplasty"}
}

func toSet(entries []string) Set {
	s := make(Set, len(entries))
	for _, e := range entries {
		if t := normalize.Text(e); t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

func intOr(m map[string]int, key string, def int) int {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
