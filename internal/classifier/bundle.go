package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gyeh/claimgate/internal/feature"
)

// Bundle is the persisted training artifact: the fitted encoder and model
// together, so inference can never pair a model with a mismatched encoding.
type Bundle struct {
	Encoder     *feature.Encoder `json:"encoder"`
	Model       *Model           `json:"model"`
	CatColumns  []string         `json:"cat_columns"`
	NumColumns  []string         `json:"num_columns"`
	LabelSource string           `json:"label_source"`
	RunID       string           `json:"run_id"`
	TrainedAt   time.Time        `json:"trained_at"`
}

// Save writes the bundle as JSON via a temp file and rename, so a concurrent
// reader never observes a partially written artifact.
func (b *Bundle) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// Load reads and validates a bundle. Callers treat any error as "no model
// available" and degrade to rule-only adjudication.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if b.Encoder == nil || b.Model == nil {
		return nil, fmt.Errorf("artifact %s is incomplete", path)
	}
	if err := b.Encoder.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	if err := b.Model.Validate(b.Encoder.Width()); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return &b, nil
}
