package model

// Terminal decisions for an adjudicated claim.
const (
	DecisionDeny        = "DENY"
	DecisionApprove     = "APPROVE"
	DecisionNeedsReview = "NEEDS_REVIEW"
)

// Benefit buckets describing where a passed claim landed in the catalog.
const (
	BucketDeny    = "deny"
	BucketCovered = "covered"
	BucketOther   = "other"
	BucketAllow   = "allow"
)

// Details carries the normalized claim context produced by the rule gate.
// It is always populated, including on a hard block, so the pricer and any
// rendering layer can show what was evaluated.
type Details struct {
	Bucket           string  `json:"bucket"`
	ClinicalCategory string  `json:"clinical_category"`
	InNetwork        bool    `json:"in_network"`
	HospitalTier     int     `json:"hospital_tier"`
	BilledAmount     float64 `json:"billed_amount"`
}

// GateResult is the outcome of running the rule gate over one claim.
type GateResult struct {
	HardBlock bool
	Reason    string
	Details   Details
}

// EOB is the benefit-pricing breakdown for a claim. All amounts are rounded
// to two decimal places. PlanPayable is computed against the allowed amount
// only, while MemberLiability includes coinsurance plus the gap above the
// allowed amount, so the two need not sum to the billed amount.
type EOB struct {
	AllowedAmount   float64  `json:"allowed_amount"`
	MemberCopay     float64  `json:"member_copay"`
	PlanPayable     float64  `json:"plan_payable"`
	Gap             float64  `json:"gap"`
	MemberLiability float64  `json:"member_liability"`
	Notes           []string `json:"notes,omitempty"`
}

// AdjudicationResult is the engine's final output for one claim, shaped for
// flat JSON serialization toward callers.
type AdjudicationResult struct {
	Decision         string   `json:"decision"`
	Reason           string   `json:"reason"`
	BenefitBucket    string   `json:"benefit_bucket"`
	HardRuleBlock    int      `json:"hard_rule_block"`
	ModelProbability *float64 `json:"model_probability,omitempty"`
	Amounts          EOB      `json:"amounts"`
}
