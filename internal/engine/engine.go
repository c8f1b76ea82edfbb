// Package engine composes the rule gate, the coverage classifier, and the
// benefit pricer into a single adjudication call. The engine holds only
// immutable configuration plus an atomically swappable model handle, so
// concurrent adjudications are safe without locking.
package engine

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/classifier"
	"github.com/gyeh/claimgate/internal/feature"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/pricing"
	"github.com/gyeh/claimgate/internal/rules"
)

// DefaultThreshold is the classifier confidence at or above which a passed
// claim is approved outright rather than routed to review.
const DefaultThreshold = 0.5

// Engine adjudicates claims against one loaded catalog and fee schedule.
type Engine struct {
	catalog   *catalog.BenefitCatalog
	fees      *catalog.FeeSchedule
	threshold float64
	bundle    atomic.Pointer[classifier.Bundle]
}

// New builds an engine from explicitly injected, already-loaded artifacts.
// bundle may be nil: the engine then runs rule-only with confidence 1.0.
func New(cat *catalog.BenefitCatalog, fees *catalog.FeeSchedule, bundle *classifier.Bundle, threshold float64) *Engine {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	e := &Engine{catalog: cat, fees: fees, threshold: threshold}
	if bundle != nil {
		e.bundle.Store(bundle)
	}
	return e
}

// SetModel atomically publishes a newly trained bundle. In-flight
// adjudications keep the bundle they already read; later calls see the new
// one whole.
func (e *Engine) SetModel(bundle *classifier.Bundle) {
	e.bundle.Store(bundle)
}

// Adjudicate runs one claim through gate → classifier → pricer. Hard blocks
// deny with zeroed benefits and the full billed amount as member liability.
// Claims that pass are always priced; the classifier only splits APPROVE
// from NEEDS_REVIEW on top of the pass.
func (e *Engine) Adjudicate(claim *model.ClaimRecord) *model.AdjudicationResult {
	gate := rules.Evaluate(claim, e.catalog)
	if gate.HardBlock {
		return &model.AdjudicationResult{
			Decision:      model.DecisionDeny,
			Reason:        gate.Reason,
			BenefitBucket: gate.Details.Bucket,
			HardRuleBlock: 1,
			Amounts:       pricing.Denied(claim.BilledAmount),
		}
	}

	confidence := 1.0
	var probability *float64
	if bundle := e.bundle.Load(); bundle != nil {
		vec := bundle.Encoder.Transform(feature.FromClaim(claim, e.catalog))
		confidence = bundle.Model.PredictProba(vec)
		rounded := math.Round(confidence*10000) / 10000
		probability = &rounded
	}

	amounts := pricing.Price(claim, &gate.Details, e.fees, e.catalog.PlanPricing)

	decision := model.DecisionApprove
	if confidence < e.threshold {
		decision = model.DecisionNeedsReview
	}

	return &model.AdjudicationResult{
		Decision:         decision,
		Reason:           fmt.Sprintf("Covered by policy; model confidence %.2f", confidence),
		BenefitBucket:    gate.Details.Bucket,
		HardRuleBlock:    0,
		ModelProbability: probability,
		Amounts:          amounts,
	}
}
