package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const testCatalogJSON = `{
  "hospital_inclusions": [" Appendectomy ", "Knee Replacement"],
  "hospital_exclusions": ["cosmetic surgery"],
  "extras_inclusions": ["dental checkup", "optical"],
  "extras_exclusions": ["orthodontics"],
  "hospital_restricted": ["rehabilitation"],
  "synonyms": {" Appendix ": " Appendectomy "},
  "waiting_periods": {"general_hospital_days": 30},
  "max_submission_days": 365,
  "plan_pricing": {"coinsurance_by_tier": {"1": 0.05, "2": 0.25}}
}`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadCatalog_Normalization(t *testing.T) {
	cat, err := LoadCatalog(writeFixture(t, "catalog.json", testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	if !cat.HospitalInclusions.Has("appendectomy") {
		t.Error("hospital inclusion not lower-cased/trimmed")
	}
	if cat.HospitalInclusions.Has(" Appendectomy ") {
		t.Error("raw entry should not be present")
	}
	if got := cat.Synonyms["appendix"]; got != "appendectomy" {
		t.Errorf("synonym = %q, want appendectomy", got)
	}
	if got := cat.NormalizeCategory("Acute APPENDIX pain"); got != "appendectomy" {
		t.Errorf("NormalizeCategory = %q, want appendectomy", got)
	}
}

func TestLoadCatalog_Defaults(t *testing.T) {
	cat, err := LoadCatalog(writeFixture(t, "catalog.json", testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	// Overridden in the fixture.
	if cat.WaitingPeriods.GeneralHospitalDays != 30 {
		t.Errorf("general waiting = %d, want 30", cat.WaitingPeriods.GeneralHospitalDays)
	}
	if cat.MaxSubmissionDays != 365 {
		t.Errorf("max submission = %d, want 365", cat.MaxSubmissionDays)
	}
	// Defaulted.
	if cat.WaitingPeriods.PregnancyDays != 365 || cat.WaitingPeriods.PreexistingDays != 365 {
		t.Errorf("waiting defaults = %+v", cat.WaitingPeriods)
	}
	if !cat.AllowedCountries.Has("au") || !cat.AllowedCountries.Has("australia") {
		t.Error("allowed countries should default to au/australia")
	}
	if len(cat.CosmeticKeywords) != 5 {
		t.Errorf("cosmetic keywords = %v, want built-in five", cat.CosmeticKeywords)
	}
}

func TestLoadCatalog_PlanPricing(t *testing.T) {
	cat, err := LoadCatalog(writeFixture(t, "catalog.json", testCatalogJSON))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := cat.PlanPricing.CoinsuranceForTier(1); got != 0.05 {
		t.Errorf("tier 1 = %v, want 0.05", got)
	}
	// Tier absent from the configured table falls back to 20%.
	if got := cat.PlanPricing.CoinsuranceForTier(3); got != 0.20 {
		t.Errorf("tier 3 fallback = %v, want 0.20", got)
	}
}

func TestLoadCatalog_Errors(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing catalog")
	}
	if _, err := LoadCatalog(writeFixture(t, "bad.json", "{not json")); err == nil {
		t.Error("expected error for malformed catalog")
	}
	bad := `{"plan_pricing": {"coinsurance_by_tier": {"gold": 0.1}}}`
	if _, err := LoadCatalog(writeFixture(t, "tier.json", bad)); err == nil {
		t.Error("expected error for non-integer tier key")
	}
}

func TestLoadFees(t *testing.T) {
	path := writeFixture(t, "fees.json", `{"mbs_like_allowed": {" Appendectomy ": 3000, "knee replacement": 15000.5}}`)
	fees, err := LoadFees(path)
	if err != nil {
		t.Fatalf("LoadFees: %v", err)
	}
	if v, ok := fees.AllowedFor("appendectomy"); !ok || v != 3000 {
		t.Errorf("AllowedFor(appendectomy) = %v,%v", v, ok)
	}
	if _, ok := fees.AllowedFor("unlisted"); ok {
		t.Error("unlisted category should miss")
	}
}

func TestLoadFees_Errors(t *testing.T) {
	if _, err := LoadFees(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing fee schedule")
	}
	if _, err := LoadFees(writeFixture(t, "bad.json", "[]")); err == nil {
		t.Error("expected error for malformed fee schedule")
	}
}
