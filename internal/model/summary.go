package model

import "time"

// TrainingSummary captures metrics from a single training run, printed as
// JSON by the train command.
type TrainingSummary struct {
	Rows        int      `json:"rows"`
	LabelSource string   `json:"label_source"` // explicit column name or "weak_rules"
	FlippedRows int      `json:"flipped_rows,omitempty"`
	AUC         *float64 `json:"auc"`
	Report      string   `json:"report"`
	ModelPath   string   `json:"model_path"`
	Warnings    []string `json:"warnings,omitempty"`

	DurationTotal time.Duration `json:"-"`
}

// LoadSummary captures metrics from a history bulk-load run.
type LoadSummary struct {
	FilePath      string        `json:"file_path"`
	FileSHA256    string        `json:"file_sha256"`
	SourceFileID  int64         `json:"source_file_id"`
	LoadBatchID   string        `json:"load_batch_id"`
	RowsRead      int64         `json:"rows_read"`
	RowsLoaded    int64         `json:"rows_loaded"`
	RowsRejected  int64         `json:"rows_rejected"`
	AlreadyLoaded bool          `json:"already_loaded"`
	DurationTotal time.Duration `json:"-"`
}
