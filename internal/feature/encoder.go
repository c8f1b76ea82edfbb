// Package feature turns claim records into fixed-width numeric vectors:
// one-hot encoded categorical columns followed by numeric passthrough
// columns. The fitted vocabulary is serialized alongside the classifier so
// inference always uses the encoding the model was trained with.
package feature

import (
	"fmt"
	"sort"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/normalize"
)

// Column sets, in canonical order.
var (
	CatColumns = []string{"clinical_category", "plan_type", "service_type", "country"}
	NumColumns = []string{
		"billed_amount", "claimed_amount", "coverage_limit", "in_network",
		"policy_active", "hospital_tier", "provider_approved", "is_emergency",
	}
)

// Sample is one claim reduced to its model inputs.
type Sample struct {
	Cats map[string]string
	Nums map[string]float64
}

// FromClaim builds a Sample from a resolved claim record, normalizing the
// clinical category through the catalog's synonym table first.
func FromClaim(c *model.ClaimRecord, cat *catalog.BenefitCatalog) Sample {
	return Sample{
		Cats: map[string]string{
			"clinical_category": cat.NormalizeCategory(c.ClinicalCategory),
			"plan_type":         normalize.Text(c.PlanType),
			"service_type":      normalize.Text(c.ServiceType),
			"country":           normalize.Text(c.Country),
		},
		Nums: map[string]float64{
			"billed_amount":     c.BilledAmount,
			"claimed_amount":    c.ClaimedAmount,
			"coverage_limit":    c.CoverageLimit,
			"in_network":        b2f(c.InNetwork),
			"policy_active":     b2f(c.PolicyActive),
			"hospital_tier":     float64(c.HospitalTier),
			"provider_approved": b2f(c.ProviderApproved),
			"is_emergency":      b2f(c.IsEmergency),
		},
	}
}

// Encoder holds the fitted one-hot vocabulary. Exported fields make the
// encoder JSON-serializable as part of the model artifact.
type Encoder struct {
	Vocab map[string][]string `json:"vocab"` // categorical column -> sorted values

	index map[string]map[string]int
}

// Fit learns the vocabulary from training samples. Values are sorted so the
// encoding is deterministic regardless of input order.
func Fit(samples []Sample) *Encoder {
	seen := make(map[string]map[string]struct{}, len(CatColumns))
	for _, col := range CatColumns {
		seen[col] = make(map[string]struct{})
	}
	for _, s := range samples {
		for _, col := range CatColumns {
			seen[col][s.Cats[col]] = struct{}{}
		}
	}

	enc := &Encoder{Vocab: make(map[string][]string, len(CatColumns))}
	for _, col := range CatColumns {
		values := make([]string, 0, len(seen[col]))
		for v := range seen[col] {
			values = append(values, v)
		}
		sort.Strings(values)
		enc.Vocab[col] = values
	}
	enc.buildIndex()
	return enc
}

// Width returns the encoded vector length.
func (e *Encoder) Width() int {
	w := len(NumColumns)
	for _, col := range CatColumns {
		w += len(e.Vocab[col])
	}
	return w
}

// Transform encodes a sample. Categorical values outside the fitted
// vocabulary encode to all-zeros for their column block, mirroring a
// fit-time unknown-ignore policy.
func (e *Encoder) Transform(s Sample) []float64 {
	if e.index == nil {
		e.buildIndex()
	}
	vec := make([]float64, 0, e.Width())
	for _, col := range CatColumns {
		block := make([]float64, len(e.Vocab[col]))
		if i, ok := e.index[col][s.Cats[col]]; ok {
			block[i] = 1
		}
		vec = append(vec, block...)
	}
	for _, col := range NumColumns {
		vec = append(vec, s.Nums[col])
	}
	return vec
}

// Validate checks a deserialized encoder for structural sanity.
func (e *Encoder) Validate() error {
	for _, col := range CatColumns {
		if _, ok := e.Vocab[col]; !ok {
			return fmt.Errorf("encoder vocabulary missing column %q", col)
		}
	}
	return nil
}

func (e *Encoder) buildIndex() {
	e.index = make(map[string]map[string]int, len(e.Vocab))
	for col, values := range e.Vocab {
		m := make(map[string]int, len(values))
		for i, v := range values {
			m[v] = i
		}
		e.index[col] = m
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
