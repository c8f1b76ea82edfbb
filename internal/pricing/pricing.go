// Package pricing computes the benefit breakdown (EOB) for claims that
// passed the rule gate. Pure functions only; the same inputs always produce
// the same cent-exact amounts.
package pricing

import (
	"fmt"
	"math"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/normalize"
)

// Price computes allowed amount, coinsurance split, and gap for one claim.
// The allowed base comes from the fee schedule when the category is listed,
// otherwise min(billed, coverage limit). The plan pays only up to the
// allowed base; anything billed above it is gap and always member-payable.
func Price(claim *model.ClaimRecord, details *model.Details, fees *catalog.FeeSchedule, pricing catalog.PlanPricing) model.EOB {
	billed := claim.BilledAmount
	limit := claim.CoverageLimit

	scheduled, fromSchedule := fees.AllowedFor(details.ClinicalCategory)
	var allowedBase float64
	if fromSchedule {
		allowedBase = math.Min(scheduled, limit)
	} else {
		allowedBase = math.Min(billed, limit)
	}

	coins := pricing.CoinsuranceForTier(details.HospitalTier)

	gap := math.Max(0, billed-allowedBase)
	memberCopay := normalize.Round2(coins * allowedBase)
	planPayable := normalize.Round2(math.Max(0, allowedBase-memberCopay))
	memberLiability := normalize.Round2(memberCopay + gap)

	source := "Used fee schedule"
	if !fromSchedule {
		source = "No fee found; used coverage limit/billed"
	}
	network := "In-network"
	if !details.InNetwork {
		network = "Out-of-network"
	}

	return model.EOB{
		AllowedAmount:   normalize.Round2(allowedBase),
		MemberCopay:     memberCopay,
		PlanPayable:     planPayable,
		Gap:             normalize.Round2(gap),
		MemberLiability: memberLiability,
		Notes: []string{
			source,
			fmt.Sprintf("Tier %d coinsurance %d%%", details.HospitalTier, int(math.Round(coins*100))),
			network,
		},
	}
}

// Denied returns the zeroed EOB for a hard-blocked claim: nothing is allowed
// or payable, and the full billed amount falls to the member as gap.
func Denied(billed float64) model.EOB {
	return model.EOB{
		Gap:             normalize.Round2(billed),
		MemberLiability: normalize.Round2(billed),
	}
}
