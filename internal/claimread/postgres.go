package claimread

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/normalize"
)

const historyQuery = `
SELECT plan_type, clinical_category, service_type, country,
       billed_amount_cents, claimed_amount_cents, coverage_limit_cents,
       hospital_tier, in_network, provider_approved, policy_active,
       is_emergency, medically_necessary, preexisting_condition,
       covers_non_emergency_ambulance, has_receipt,
       treatment_date, policy_start_date, submission_date, covered
FROM claims.history
ORDER BY claim_id`

// ReadHistory loads every row of claims.history, converting stored cents
// back to dollar amounts and typed columns back to the loose row shape the
// trainer consumes.
func ReadHistory(ctx context.Context, pool *pgxpool.Pool) ([]model.ClaimHistoryRow, error) {
	rows, err := pool.Query(ctx, historyQuery)
	if err != nil {
		return nil, fmt.Errorf("query claims history: %w", err)
	}
	defer rows.Close()

	var out []model.ClaimHistoryRow
	for rows.Next() {
		var (
			r                                model.ClaimHistoryRow
			billed, claimed, limit           *int64
			tier                             *int32
			inNet, approved, active, emerg   *bool
			medNec, preexist, ambo, receipt  *bool
			treatDate, startDate, submitDate *time.Time
			covered                          *int16
		)
		if err := rows.Scan(
			&r.PlanType, &r.ClinicalCategory, &r.ServiceType, &r.Country,
			&billed, &claimed, &limit,
			&tier, &inNet, &approved, &active,
			&emerg, &medNec, &preexist,
			&ambo, &receipt,
			&treatDate, &startDate, &submitDate, &covered,
		); err != nil {
			return nil, fmt.Errorf("scan claims history row: %w", err)
		}
		r.BilledAmount = normalize.CentsToDollars(billed)
		r.ClaimedAmount = normalize.CentsToDollars(claimed)
		r.CoverageLimit = normalize.CentsToDollars(limit)
		r.HospitalTier = i32ToFloat(tier)
		r.InNetwork = boolToFloat(inNet)
		r.ProviderApproved = boolToFloat(approved)
		r.PolicyActive = boolToFloat(active)
		r.IsEmergency = boolToFloat(emerg)
		r.MedicallyNecessary = boolToFloat(medNec)
		r.PreexistingCondition = boolToFloat(preexist)
		r.NonEmergencyAmbo = boolToFloat(ambo)
		r.HasReceipt = boolToFloat(receipt)
		r.TreatmentDate = dateString(treatDate)
		r.PolicyStartDate = dateString(startDate)
		r.SubmissionDate = dateString(submitDate)
		if covered != nil {
			v := float64(*covered)
			r.Covered = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims history: %w", err)
	}
	return out, nil
}

func i32ToFloat(v *int32) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func boolToFloat(v *bool) *float64 {
	if v == nil {
		return nil
	}
	f := 0.0
	if *v {
		f = 1
	}
	return &f
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
