// Package train builds the weak-label training pipeline: historical claims
// in, persisted classifier bundle out. When the data carries no explicit
// coverage label the rule gate itself supplies one per row, so the model
// learns to approximate the gate's decision boundary.
package train

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/classifier"
	"github.com/gyeh/claimgate/internal/feature"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/rules"
)

// WeakLabelSource names the label source when no explicit column is present.
const WeakLabelSource = "weak_rules"

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Params tunes one training run.
type Params struct {
	LabelColumns []string // explicit-label preference order
	TestFraction float64
	Seed         int64
	OutPath      string
}

// DefaultParams mirrors the original training configuration.
func DefaultParams(outPath string) Params {
	return Params{
		LabelColumns: model.LabelColumns,
		TestFraction: 0.3,
		Seed:         42,
		OutPath:      outPath,
	}
}

// Run executes the pipeline: features → labels → balance → split → fit →
// evaluate → persist.
func Run(log zerolog.Logger, rows []model.ClaimHistoryRow, cat *catalog.BenefitCatalog, p Params) (*model.TrainingSummary, error) {
	start := time.Now()
	if len(rows) == 0 {
		return nil, &PipelineError{Phase: "features", Err: fmt.Errorf("no training rows")}
	}

	summary := &model.TrainingSummary{Rows: len(rows)}

	// Phase 1: features
	claims := make([]*model.ClaimRecord, len(rows))
	samples := make([]feature.Sample, len(rows))
	for i := range rows {
		claims[i] = rows[i].ToClaim()
		samples[i] = feature.FromClaim(claims[i], cat)
	}
	log.Info().Int("rows", len(rows)).Msg("features built")

	// Phase 2: labels
	labels, source := deriveLabels(rows, claims, cat, p.LabelColumns)
	summary.LabelSource = source
	log.Info().Str("label_source", source).Msg("labels derived")

	// Phase 3: balance degenerate label sets
	flipped := balanceLabels(labels, p.Seed)
	if flipped > 0 {
		summary.FlippedRows = flipped
		warning := fmt.Sprintf(
			"single-class label set: flipped %d rows via seeded selection; distribution is synthetic, not representative",
			flipped)
		summary.Warnings = append(summary.Warnings, warning)
		log.Warn().Int("flipped", flipped).Msg("synthesized counter-examples for degenerate labels")
	}

	// Phase 4: encode and split. The encoder is fitted on the full dataset
	// (matching the original preprocessing) and persisted with the model.
	enc := feature.Fit(samples)
	X := designMatrix(enc, samples)
	trainIdx, testIdx := splitIndices(labels, p.TestFraction, p.Seed)
	if len(testIdx) == 0 {
		testIdx = trainIdx
		summary.Warnings = append(summary.Warnings, "dataset too small for a held-out split; evaluated on training rows")
	}

	// Phase 5: fit
	m, err := classifier.Fit(subMatrix(X, trainIdx), subLabels(labels, trainIdx), classifier.DefaultOptions())
	if err != nil {
		return nil, &PipelineError{Phase: "fit", Err: err}
	}
	log.Info().Int("train_rows", len(trainIdx)).Int("features", enc.Width()).Msg("model fitted")

	// Phase 6: evaluate
	scores := make([]float64, len(testIdx))
	predicted := make([]float64, len(testIdx))
	testLabels := subLabels(labels, testIdx)
	for i, idx := range testIdx {
		scores[i] = m.PredictProba(X.RawRowView(idx))
		if scores[i] >= 0.5 {
			predicted[i] = 1
		}
	}
	if auc, ok := classifier.AUC(scores, testLabels); ok {
		summary.AUC = &auc
	}
	summary.Report = classifier.ClassificationReport(predicted, testLabels)

	// Phase 7: persist
	bundle := &classifier.Bundle{
		Encoder:     enc,
		Model:       m,
		CatColumns:  feature.CatColumns,
		NumColumns:  feature.NumColumns,
		LabelSource: source,
		RunID:       uuid.New().String(),
		TrainedAt:   time.Now().UTC(),
	}
	if err := bundle.Save(p.OutPath); err != nil {
		return nil, &PipelineError{Phase: "persist", Err: err}
	}
	summary.ModelPath = p.OutPath
	summary.DurationTotal = time.Since(start)

	log.Info().
		Str("model_path", p.OutPath).
		Str("run_id", bundle.RunID).
		Str("duration", summary.DurationTotal.String()).
		Msg("training complete")
	return summary, nil
}

// deriveLabels prefers the first explicit label column present anywhere in
// the dataset; otherwise it re-runs the rule gate per row (weak labels,
// not-blocked → 1).
func deriveLabels(rows []model.ClaimHistoryRow, claims []*model.ClaimRecord, cat *catalog.BenefitCatalog, prefs []string) ([]float64, string) {
	column := ""
	for _, name := range prefs {
		for i := range rows {
			if _, col, ok := rows[i].ResolveLabel([]string{name}); ok {
				column = col
				break
			}
		}
		if column != "" {
			break
		}
	}

	labels := make([]float64, len(rows))
	if column != "" {
		for i := range rows {
			if label, _, ok := rows[i].ResolveLabel([]string{column}); ok {
				labels[i] = float64(label)
			}
		}
		return labels, column
	}

	for i := range claims {
		if gate := rules.Evaluate(claims[i], cat); !gate.HardBlock {
			labels[i] = 1
		}
	}
	return labels, WeakLabelSource
}

// balanceLabels flips a seeded pseudo-random selection of rows when only one
// class is present, keeping the classifier trainable on sparse demo data.
// Returns the number of rows flipped (0 when the set was already two-class).
func balanceLabels(labels []float64, seed int64) int {
	var ones int
	for _, l := range labels {
		if l > 0 {
			ones++
		}
	}
	if ones != 0 && ones != len(labels) {
		return 0
	}

	flipN := len(labels) * 15 / 100
	if flipN < 10 {
		flipN = 10
	}
	if flipN > len(labels) {
		flipN = len(labels)
	}
	rng := rand.New(rand.NewSource(seed))
	for _, idx := range rng.Perm(len(labels))[:flipN] {
		labels[idx] = 1 - labels[idx]
	}
	return flipN
}

// splitIndices produces a seeded train/test split, stratified per class when
// both classes are present.
func splitIndices(labels []float64, testFraction float64, seed int64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewSource(seed))
	byClass := map[int][]int{}
	for i, l := range labels {
		byClass[int(l)] = append(byClass[int(l)], i)
	}
	for _, cls := range []int{0, 1} {
		idx := byClass[cls]
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		nTest := int(float64(len(idx)) * testFraction)
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	return trainIdx, testIdx
}

func designMatrix(enc *feature.Encoder, samples []feature.Sample) *mat.Dense {
	X := mat.NewDense(len(samples), enc.Width(), nil)
	for i, s := range samples {
		X.SetRow(i, enc.Transform(s))
	}
	return X
}

func subMatrix(X *mat.Dense, idx []int) *mat.Dense {
	_, d := X.Dims()
	sub := mat.NewDense(len(idx), d, nil)
	for i, row := range idx {
		sub.SetRow(i, X.RawRowView(row))
	}
	return sub
}

func subLabels(labels []float64, idx []int) []float64 {
	sub := make([]float64, len(idx))
	for i, row := range idx {
		sub[i] = labels[row]
	}
	return sub
}
