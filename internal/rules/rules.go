// Package rules implements the coverage rule gate: an ordered chain of
// hard-block eligibility checks evaluated first-match-wins. A block here is
// authoritative; downstream model scoring never overrides it.
package rules

import (
	"fmt"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/normalize"
)

// Context carries one claim plus its pre-normalized text fields through the
// chain so every rule compares against the same canonical values.
type Context struct {
	Claim   *model.ClaimRecord
	Catalog *catalog.BenefitCatalog

	PlanType    string // lower-cased plan type
	Clinical    string // synonym-normalized clinical category
	ServiceType string
	Country     string
}

// Rule is one veto in the chain. Check returns blocked=true with a
// human-readable reason when the claim must be denied.
type Rule struct {
	Name  string
	Check func(*Context) (blocked bool, reason string)
}

// Chain is the ordered rule sequence. Order is significant and part of the
// engine's contract: the first matching rule wins and its reason is returned.
var Chain = []Rule{
	{Name: "policy_active", Check: checkPolicyActive},
	{Name: "overseas", Check: checkOverseas},
	{Name: "provider_approved", Check: checkProviderApproved},
	{Name: "plan_category_match", Check: checkPlanCategoryMatch},
	{Name: "cosmetic_elective", Check: checkCosmeticElective},
	{Name: "non_emergency_ambulance", Check: checkNonEmergencyAmbulance},
	{Name: "waiting_periods", Check: checkWaitingPeriods},
	{Name: "documentation", Check: checkDocumentation},
	{Name: "submission_window", Check: checkSubmissionWindow},
}

// Evaluate runs the claim through the chain. Details are populated whether
// or not a rule fires, so callers can always render what was evaluated.
func Evaluate(claim *model.ClaimRecord, cat *catalog.BenefitCatalog) model.GateResult {
	ctx := &Context{
		Claim:       claim,
		Catalog:     cat,
		PlanType:    normalize.Text(claim.PlanType),
		Clinical:    cat.NormalizeCategory(claim.ClinicalCategory),
		ServiceType: normalize.Text(claim.ServiceType),
		Country:     normalize.Text(claim.Country),
	}

	details := model.Details{
		ClinicalCategory: ctx.Clinical,
		InNetwork:        claim.InNetwork,
		HospitalTier:     claim.HospitalTier,
		BilledAmount:     claim.BilledAmount,
	}

	for _, rule := range Chain {
		if blocked, reason := rule.Check(ctx); blocked {
			details.Bucket = model.BucketDeny
			return model.GateResult{HardBlock: true, Reason: reason, Details: details}
		}
	}

	if cat.HospitalInclusions.Has(ctx.Clinical) ||
		cat.ExtrasInclusions.Has(ctx.Clinical) ||
		ctx.PlanType == model.PlanCombined {
		details.Bucket = model.BucketCovered
	} else {
		details.Bucket = model.BucketOther
	}
	return model.GateResult{HardBlock: false, Reason: "OK", Details: details}
}

func checkPolicyActive(ctx *Context) (bool, string) {
	if !ctx.Claim.PolicyActive {
		return true, "Policy inactive on service date"
	}
	return false, ""
}

// An explicitly empty country is left alone; the claim parser defaults an
// absent country to the home jurisdiction.
func checkOverseas(ctx *Context) (bool, string) {
	if ctx.Country != "" && !ctx.Catalog.AllowedCountries.Has(ctx.Country) {
		return true, "Overseas treatments not covered"
	}
	return false, ""
}

func checkProviderApproved(ctx *Context) (bool, string) {
	if !ctx.Claim.ProviderApproved {
		return true, "Provider not approved"
	}
	return false, ""
}

func checkPlanCategoryMatch(ctx *Context) (bool, string) {
	cat := ctx.Catalog
	clin := ctx.Clinical
	switch ctx.PlanType {
	case model.PlanHospital:
		if cat.ExtrasInclusions.Has(clin) || cat.ExtrasExclusions.Has(clin) ||
			normalize.ContainsAny(clin, []string{"dental", "optical", "physio"}) {
			return true, "Service belongs to Extras Cover, not Hospital Cover"
		}
		if cat.HospitalExclusions.Has(clin) {
			return true, "Excluded hospital service per policy"
		}
		if cat.HospitalRestricted.Has(clin) {
			return true, "Restricted hospital service not covered at this level"
		}
	case model.PlanExtras:
		if cat.HospitalInclusions.Has(clin) || cat.HospitalExclusions.Has(clin) ||
			ctx.ServiceType == "inpatient" || ctx.ServiceType == "day_surgery" || ctx.ServiceType == "surgery" {
			return true, "Hospital services not covered by Extras plan"
		}
		if cat.ExtrasExclusions.Has(clin) {
			return true, "Excluded extras service per policy"
		}
	default: // combined
		if cat.HospitalExclusions.Has(clin) || cat.ExtrasExclusions.Has(clin) {
			return true, "Excluded service per policy"
		}
	}
	return false, ""
}

func checkCosmeticElective(ctx *Context) (bool, string) {
	if normalize.ContainsAny(ctx.Clinical, ctx.Catalog.CosmeticKeywords) && !ctx.Claim.MedicallyNecessary {
		return true, "Cosmetic/elective procedure not medically necessary"
	}
	return false, ""
}

func checkNonEmergencyAmbulance(ctx *Context) (bool, string) {
	if ctx.ServiceType == "ambulance" && !ctx.Claim.IsEmergency && !ctx.Claim.CoversNonEmergencyAmbulance {
		return true, "Non-emergency ambulance not covered"
	}
	return false, ""
}

// Waiting periods apply only when both the policy start and treatment dates
// are known; absent dates skip the check rather than block the claim.
func checkWaitingPeriods(ctx *Context) (bool, string) {
	claim := ctx.Claim
	if claim.PolicyStartDate == nil || claim.TreatmentDate == nil {
		return false, ""
	}
	wp := ctx.Catalog.WaitingPeriods
	daysOnCover := normalize.DaysBetween(*claim.PolicyStartDate, *claim.TreatmentDate)

	if normalize.ContainsAny(ctx.Clinical, []string{"pregnan", "birth"}) && daysOnCover < wp.PregnancyDays {
		return true, fmt.Sprintf("Waiting period for pregnancy not finished (%d < %d days)", daysOnCover, wp.PregnancyDays)
	}
	if claim.PreexistingCondition && daysOnCover < wp.PreexistingDays {
		return true, fmt.Sprintf("Waiting period for pre-existing not finished (%d < %d days)", daysOnCover, wp.PreexistingDays)
	}
	if (ctx.PlanType == model.PlanHospital || ctx.PlanType == model.PlanCombined) &&
		daysOnCover < wp.GeneralHospitalDays && ctx.Catalog.HospitalInclusions.Has(ctx.Clinical) {
		return true, fmt.Sprintf("General hospital waiting period not finished (%d < %d days)", daysOnCover, wp.GeneralHospitalDays)
	}
	return false, ""
}

func checkDocumentation(ctx *Context) (bool, string) {
	if !ctx.Claim.HasReceipt {
		return true, "Required receipt/documentation missing"
	}
	return false, ""
}

func checkSubmissionWindow(ctx *Context) (bool, string) {
	claim := ctx.Claim
	if claim.TreatmentDate == nil || claim.SubmissionDate == nil {
		return false, ""
	}
	if normalize.DaysBetween(*claim.TreatmentDate, *claim.SubmissionDate) > ctx.Catalog.MaxSubmissionDays {
		return true, "Claim submitted after allowable window"
	}
	return false, ""
}
