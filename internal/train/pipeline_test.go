package train

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/classifier"
	"github.com/gyeh/claimgate/internal/model"
)

func set(values ...string) catalog.Set {
	s := make(catalog.Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func testCatalog() *catalog.BenefitCatalog {
	return &catalog.BenefitCatalog{
		HospitalInclusions: set("appendectomy", "knee replacement"),
		ExtrasInclusions:   set("dental checkup"),
		Synonyms:           map[string]string{},
		WaitingPeriods: catalog.WaitingPeriods{
			GeneralHospitalDays: 60,
			PregnancyDays:       365,
			PreexistingDays:     365,
		},
		MaxSubmissionDays: 730,
		AllowedCountries:  set("au", "australia"),
		CosmeticKeywords:  []string{"cosmetic", "rhinoplasty"},
		PlanPricing:       catalog.PlanPricing{CoinsuranceByTier: map[int]float64{1: 0.10, 2: 0.20, 3: 0.40}},
	}
}

func f(v float64) *float64 { return &v }

// historyRows builds n rows alternating between claims the gate passes
// (appendectomy, active policy) and claims it blocks (policy inactive).
func historyRows(n int) []model.ClaimHistoryRow {
	rows := make([]model.ClaimHistoryRow, n)
	for i := range rows {
		rows[i] = model.ClaimHistoryRow{
			PlanType:         "hospital",
			ClinicalCategory: "appendectomy",
			Country:          "au",
			BilledAmount:     f(5000),
			HospitalTier:     f(1),
		}
		if i%2 == 1 {
			rows[i].PolicyActive = f(0)
		}
	}
	return rows
}

func params(t *testing.T) Params {
	t.Helper()
	return DefaultParams(filepath.Join(t.TempDir(), "coverage_model.json"))
}

func TestRun_WeakLabels(t *testing.T) {
	p := params(t)
	summary, err := Run(zerolog.Nop(), historyRows(60), testCatalog(), p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.LabelSource != WeakLabelSource {
		t.Errorf("label source = %q, want %q", summary.LabelSource, WeakLabelSource)
	}
	if summary.Rows != 60 {
		t.Errorf("rows = %d, want 60", summary.Rows)
	}
	if summary.FlippedRows != 0 {
		t.Errorf("flipped = %d, want 0 for two-class data", summary.FlippedRows)
	}
	if summary.AUC == nil {
		t.Error("AUC missing for two-class evaluation")
	} else if *summary.AUC < 0.9 {
		// Labels derive from policy_active, which is a model feature; the
		// fit should essentially memorize the boundary.
		t.Errorf("AUC = %.3f, want near-perfect on separable data", *summary.AUC)
	}
	if !strings.Contains(summary.Report, "accuracy") {
		t.Errorf("report missing accuracy row:\n%s", summary.Report)
	}

	bundle, err := classifier.Load(p.OutPath)
	if err != nil {
		t.Fatalf("persisted bundle unreadable: %v", err)
	}
	if bundle.LabelSource != WeakLabelSource {
		t.Errorf("bundle label source = %q", bundle.LabelSource)
	}
	if bundle.RunID == "" || bundle.TrainedAt.IsZero() {
		t.Errorf("bundle metadata incomplete: %+v", bundle)
	}
}

func TestRun_ExplicitLabelColumn(t *testing.T) {
	rows := historyRows(60)
	for i := range rows {
		rows[i].Covered = f(float64(i % 2))
	}
	p := params(t)
	summary, err := Run(zerolog.Nop(), rows, testCatalog(), p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.LabelSource != "covered" {
		t.Errorf("label source = %q, want covered", summary.LabelSource)
	}
}

func TestRun_LabelColumnPreference(t *testing.T) {
	rows := historyRows(60)
	for i := range rows {
		rows[i].Approved = f(1)
		rows[i].Decision = f(0)
	}
	// Only one row carries the higher-preference column; it still wins for
	// the whole dataset.
	rows[3].IsCovered = f(1)

	p := params(t)
	summary, err := Run(zerolog.Nop(), rows, testCatalog(), p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.LabelSource != "is_covered" {
		t.Errorf("label source = %q, want is_covered", summary.LabelSource)
	}
}

func TestRun_SingleClassFlips(t *testing.T) {
	// Every row passes the gate, so weak labels come out all-ones.
	rows := historyRows(60)
	for i := range rows {
		rows[i].PolicyActive = f(1)
	}
	p := params(t)
	summary, err := Run(zerolog.Nop(), rows, testCatalog(), p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// 15% of 60 = 9, floored to the minimum of 10.
	if summary.FlippedRows != 10 {
		t.Errorf("flipped = %d, want 10", summary.FlippedRows)
	}
	found := false
	for _, w := range summary.Warnings {
		if strings.Contains(w, "single-class") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want single-class note", summary.Warnings)
	}
}

func TestRun_Deterministic(t *testing.T) {
	rows := historyRows(60)
	a, err := Run(zerolog.Nop(), rows, testCatalog(), params(t))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(zerolog.Nop(), rows, testCatalog(), params(t))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Report != b.Report {
		t.Errorf("reports differ between identical runs:\n%s\nvs\n%s", a.Report, b.Report)
	}
	if (a.AUC == nil) != (b.AUC == nil) || (a.AUC != nil && *a.AUC != *b.AUC) {
		t.Errorf("AUC differs between identical runs")
	}
}

func TestRun_Errors(t *testing.T) {
	if _, err := Run(zerolog.Nop(), nil, testCatalog(), params(t)); err == nil {
		t.Fatal("expected error for empty input")
	} else {
		var pe *PipelineError
		if !errors.As(err, &pe) || pe.Phase != "features" {
			t.Errorf("err = %v, want features-phase pipeline error", err)
		}
	}

	// Unwritable artifact path surfaces as a persist-phase error.
	p := params(t)
	p.OutPath = filepath.Join(string([]byte{0}), "impossible", "model.json")
	if _, err := Run(zerolog.Nop(), historyRows(60), testCatalog(), p); err == nil {
		t.Error("expected persist error for unwritable path")
	}
}

func TestBalanceLabels(t *testing.T) {
	labels := make([]float64, 100)
	if got := balanceLabels(labels, 42); got != 15 {
		t.Errorf("flipped = %d, want 15%% of 100", got)
	}
	var ones int
	for _, l := range labels {
		if l == 1 {
			ones++
		}
	}
	if ones != 15 {
		t.Errorf("ones after flip = %d, want 15", ones)
	}

	mixed := []float64{0, 1, 0, 1}
	if got := balanceLabels(mixed, 42); got != 0 {
		t.Errorf("two-class input flipped %d rows", got)
	}
}

func TestSplitIndices(t *testing.T) {
	labels := make([]float64, 100)
	for i := 50; i < 100; i++ {
		labels[i] = 1
	}
	trainIdx, testIdx := splitIndices(labels, 0.3, 42)
	if len(trainIdx)+len(testIdx) != 100 {
		t.Fatalf("split lost rows: %d + %d", len(trainIdx), len(testIdx))
	}
	if len(testIdx) != 30 {
		t.Errorf("test rows = %d, want 30", len(testIdx))
	}
	// Stratification: 15 test rows per class.
	var testOnes int
	for _, i := range testIdx {
		if labels[i] == 1 {
			testOnes++
		}
	}
	if testOnes != 15 {
		t.Errorf("test positives = %d, want 15", testOnes)
	}
	seen := map[int]bool{}
	for _, i := range append(append([]int{}, trainIdx...), testIdx...) {
		if seen[i] {
			t.Fatalf("index %d assigned twice", i)
		}
		seen[i] = true
	}
}
