package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gyeh/claimgate/internal/normalize"
)

// Plan types accepted on a claim.
const (
	PlanHospital = "hospital"
	PlanExtras   = "extras"
	PlanCombined = "combined"
)

// ClaimRecord is a single claim as the engine adjudicates it: every
// defaultable field already resolved, dates already parsed. Construct one
// through ParseClaimJSON (external documents) or ClaimHistoryRow.ToClaim
// (historical data); the record is immutable during adjudication.
type ClaimRecord struct {
	PlanType         string
	ClinicalCategory string // free text, pre-synonym
	ServiceType      string
	Country          string

	BilledAmount  float64
	ClaimedAmount float64
	CoverageLimit float64
	HospitalTier  int

	InNetwork                   bool
	ProviderApproved            bool
	PolicyActive                bool
	IsEmergency                 bool
	MedicallyNecessary          bool
	PreexistingCondition        bool
	CoversNonEmergencyAmbulance bool
	HasReceipt                  bool

	TreatmentDate   *time.Time
	PolicyStartDate *time.Time
	SubmissionDate  *time.Time
}

// UnboundedLimit stands in for "no coverage limit configured".
const UnboundedLimit = 1e9

// claimDoc is the wire shape of an external claim document. Fields are
// pointers so missing keys can be told apart from zero values; flexible
// scalar types absorb the loose typing of upstream extractors (booleans as
// 0/1 numbers, amounts as strings, dates in several formats).
type claimDoc struct {
	PlanType         *string   `json:"plan_type"`
	ClinicalCategory *string   `json:"clinical_category"`
	ServiceType      *string   `json:"service_type"`
	Country          *string   `json:"country"`
	BilledAmount     *flexNum  `json:"billed_amount"`
	ClaimedAmount    *flexNum  `json:"claimed_amount"`
	CoverageLimit    *flexNum  `json:"coverage_limit"`
	HospitalTier     *flexNum  `json:"hospital_tier"`
	InNetwork        *flexBool `json:"in_network"`
	ProviderApproved *flexBool `json:"provider_approved"`
	PolicyActive     *flexBool `json:"policy_active"`
	IsEmergency      *flexBool `json:"is_emergency"`
	MedicallyNec     *flexBool `json:"medically_necessary"`
	Preexisting      *flexBool `json:"preexisting_condition"`
	NonEmergAmbo     *flexBool `json:"covers_non_emergency_ambulance"`
	HasReceipt       *flexBool `json:"has_receipt"`
	TreatmentDate    *flexDate `json:"treatment_date"`
	PolicyStartDate  *flexDate `json:"policy_start_date"`
	SubmissionDate   *flexDate `json:"submission_date"`
}

// ParseClaimJSON deserializes an external claim document and resolves every
// defaultable field. Missing or malformed optional fields never fail the
// parse; only structurally invalid JSON does.
func ParseClaimJSON(data []byte) (*ClaimRecord, error) {
	var doc claimDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse claim document: %w", err)
	}
	return doc.resolve(), nil
}

func (d *claimDoc) resolve() *ClaimRecord {
	c := &ClaimRecord{
		PlanType:         strDefault(d.PlanType, PlanHospital),
		ClinicalCategory: strDefault(d.ClinicalCategory, ""),
		ServiceType:      strDefault(d.ServiceType, ""),
		Country:          strDefault(d.Country, "au"),

		BilledAmount:  numDefault(d.BilledAmount, 0),
		ClaimedAmount: numDefault(d.ClaimedAmount, 0),
		CoverageLimit: numDefault(d.CoverageLimit, UnboundedLimit),
		HospitalTier:  int(numDefault(d.HospitalTier, 1)),

		InNetwork:                   boolDefault(d.InNetwork, true),
		ProviderApproved:            boolDefault(d.ProviderApproved, true),
		PolicyActive:                boolDefault(d.PolicyActive, true),
		IsEmergency:                 boolDefault(d.IsEmergency, true),
		MedicallyNecessary:          boolDefault(d.MedicallyNec, false),
		PreexistingCondition:        boolDefault(d.Preexisting, false),
		CoversNonEmergencyAmbulance: boolDefault(d.NonEmergAmbo, false),
		HasReceipt:                  boolDefault(d.HasReceipt, true),
	}
	if c.HospitalTier < 1 {
		c.HospitalTier = 1
	}
	if c.CoverageLimit <= 0 {
		c.CoverageLimit = UnboundedLimit
	}
	if d.TreatmentDate != nil {
		c.TreatmentDate = d.TreatmentDate.t
	}
	if d.PolicyStartDate != nil {
		c.PolicyStartDate = d.PolicyStartDate.t
	}
	if d.SubmissionDate != nil {
		c.SubmissionDate = d.SubmissionDate.t
	}
	return c
}

func strDefault(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func numDefault(p *flexNum, def float64) float64 {
	if p == nil || !p.ok {
		return def
	}
	return p.v
}

func boolDefault(p *flexBool, def bool) bool {
	if p == nil || !p.ok {
		return def
	}
	return p.v
}

// flexNum accepts JSON numbers and numeric strings. Anything else is
// recorded as absent rather than failing the parse.
type flexNum struct {
	v  float64
	ok bool
}

func (f *flexNum) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.v, f.ok = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		_, scanErr := fmt.Sscanf(s, "%g", &n)
		if scanErr == nil {
			f.v, f.ok = n, true
		}
	}
	return nil
}

// flexBool accepts JSON booleans and 0/1-style numbers.
type flexBool struct {
	v  bool
	ok bool
}

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		f.v, f.ok = b, true
		return nil
	}
	var n flexNum
	if err := n.UnmarshalJSON(data); err == nil && n.ok {
		f.v, f.ok = n.v > 0, true
	}
	return nil
}

// flexDate accepts any format normalize.ParseDate understands; unparseable
// values resolve to nil so date-dependent checks are skipped downstream.
type flexDate struct {
	t *time.Time
}

func (f *flexDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.t = normalize.ParseDate(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		t := time.Unix(int64(n), 0).UTC()
		f.t = &t
	}
	return nil
}
