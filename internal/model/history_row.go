package model

import (
	"github.com/google/uuid"

	"github.com/gyeh/claimgate/internal/normalize"
)

// ClaimHistoryRow mirrors one row of a historical-claims export (CSV, Parquet,
// or the claims.history table). Numeric flags are loose float64s because
// exports encode booleans as 0/1; resolution to typed defaults happens in
// ToClaim. Pointer fields distinguish absent columns from zero values.
type ClaimHistoryRow struct {
	PlanType         string `parquet:"plan_type,optional"`
	ClinicalCategory string `parquet:"clinical_category,optional"`
	ServiceType      string `parquet:"service_type,optional"`
	Country          string `parquet:"country,optional"`

	BilledAmount  *float64 `parquet:"billed_amount,optional"`
	ClaimedAmount *float64 `parquet:"claimed_amount,optional"`
	CoverageLimit *float64 `parquet:"coverage_limit,optional"`
	HospitalTier  *float64 `parquet:"hospital_tier,optional"`

	InNetwork            *float64 `parquet:"in_network,optional"`
	ProviderApproved     *float64 `parquet:"provider_approved,optional"`
	PolicyActive         *float64 `parquet:"policy_active,optional"`
	IsEmergency          *float64 `parquet:"is_emergency,optional"`
	MedicallyNecessary   *float64 `parquet:"medically_necessary,optional"`
	PreexistingCondition *float64 `parquet:"preexisting_condition,optional"`
	NonEmergencyAmbo     *float64 `parquet:"covers_non_emergency_ambulance,optional"`
	HasReceipt           *float64 `parquet:"has_receipt,optional"`

	// Raw date strings; parsed lazily so unparseable values degrade to nil.
	TreatmentDate   string `parquet:"treatment_date,optional"`
	PolicyStartDate string `parquet:"policy_start_date,optional"`
	SubmissionDate  string `parquet:"submission_date,optional"`

	// Candidate explicit-label columns, in preference order.
	Covered   *float64 `parquet:"covered,optional"`
	IsCovered *float64 `parquet:"is_covered,optional"`
	Approved  *float64 `parquet:"approved,optional"`
	Label     *float64 `parquet:"label,optional"`
	Decision  *float64 `parquet:"decision,optional"`
}

// LabelColumns is the default explicit-label preference order.
var LabelColumns = []string{"covered", "is_covered", "approved", "label", "decision"}

// ResolveLabel returns the binary label from the first present candidate
// column in prefs, or ok=false when none is populated.
func (r *ClaimHistoryRow) ResolveLabel(prefs []string) (label int, column string, ok bool) {
	candidates := map[string]*float64{
		"covered":    r.Covered,
		"is_covered": r.IsCovered,
		"approved":   r.Approved,
		"label":      r.Label,
		"decision":   r.Decision,
	}
	for _, name := range prefs {
		if v := candidates[name]; v != nil {
			if *v > 0 {
				return 1, name, true
			}
			return 0, name, true
		}
	}
	return 0, "", false
}

// ToClaim resolves the loose row into a typed ClaimRecord using the engine's
// documented defaults for absent fields.
func (r *ClaimHistoryRow) ToClaim() *ClaimRecord {
	c := &ClaimRecord{
		PlanType:         nonEmpty(r.PlanType, PlanHospital),
		ClinicalCategory: r.ClinicalCategory,
		ServiceType:      r.ServiceType,
		Country:          nonEmpty(r.Country, "au"),

		BilledAmount:  floatOr(r.BilledAmount, 0),
		ClaimedAmount: floatOr(r.ClaimedAmount, 0),
		CoverageLimit: floatOr(r.CoverageLimit, UnboundedLimit),
		HospitalTier:  int(floatOr(r.HospitalTier, 1)),

		InNetwork:                   flagOr(r.InNetwork, true),
		ProviderApproved:            flagOr(r.ProviderApproved, true),
		PolicyActive:                flagOr(r.PolicyActive, true),
		IsEmergency:                 flagOr(r.IsEmergency, true),
		MedicallyNecessary:          flagOr(r.MedicallyNecessary, false),
		PreexistingCondition:        flagOr(r.PreexistingCondition, false),
		CoversNonEmergencyAmbulance: flagOr(r.NonEmergencyAmbo, false),
		HasReceipt:                  flagOr(r.HasReceipt, true),

		TreatmentDate:   normalize.ParseDate(r.TreatmentDate),
		PolicyStartDate: normalize.ParseDate(r.PolicyStartDate),
		SubmissionDate:  normalize.ParseDate(r.SubmissionDate),
	}
	if c.HospitalTier < 1 {
		c.HospitalTier = 1
	}
	if c.CoverageLimit <= 0 {
		c.CoverageLimit = UnboundedLimit
	}
	return c
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func flagOr(p *float64, def bool) bool {
	if p == nil {
		return def
	}
	return *p > 0
}

// HistoryColumns returns the ordered column names for COPY into claims.history.
func HistoryColumns() []string {
	return []string{
		"load_batch_id",
		"source_file_id",
		"source_row_number",
		"plan_type",
		"clinical_category",
		"service_type",
		"country",
		"billed_amount_cents",
		"claimed_amount_cents",
		"coverage_limit_cents",
		"hospital_tier",
		"in_network",
		"provider_approved",
		"policy_active",
		"is_emergency",
		"medically_necessary",
		"preexisting_condition",
		"covers_non_emergency_ambulance",
		"has_receipt",
		"treatment_date",
		"policy_start_date",
		"submission_date",
		"covered",
	}
}

// CopyValues returns row values in HistoryColumns order, suitable for a pgx
// CopyFromSource. Amounts travel as integer cents; the explicit label (if
// any) collapses into the covered column via the default preference order.
func (r *ClaimHistoryRow) CopyValues(batchID uuid.UUID, sourceFileID int64, rowNum int64) []any {
	var covered *int16
	if label, _, ok := r.ResolveLabel(LabelColumns); ok {
		v := int16(label)
		covered = &v
	}
	return []any{
		batchID,
		sourceFileID,
		rowNum,
		r.PlanType,
		r.ClinicalCategory,
		r.ServiceType,
		r.Country,
		normalize.DollarsToCents(r.BilledAmount),
		normalize.DollarsToCents(r.ClaimedAmount),
		normalize.DollarsToCents(r.CoverageLimit),
		tierPtr(r.HospitalTier),
		flagPtr(r.InNetwork),
		flagPtr(r.ProviderApproved),
		flagPtr(r.PolicyActive),
		flagPtr(r.IsEmergency),
		flagPtr(r.MedicallyNecessary),
		flagPtr(r.PreexistingCondition),
		flagPtr(r.NonEmergencyAmbo),
		flagPtr(r.HasReceipt),
		normalize.ParseDate(r.TreatmentDate),
		normalize.ParseDate(r.PolicyStartDate),
		normalize.ParseDate(r.SubmissionDate),
		covered,
	}
}

func tierPtr(v *float64) *int32 {
	if v == nil {
		return nil
	}
	t := int32(*v)
	return &t
}

func flagPtr(v *float64) *bool {
	if v == nil {
		return nil
	}
	b := *v > 0
	return &b
}
