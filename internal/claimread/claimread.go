// Package claimread reads historical-claims datasets from CSV or Parquet
// files and from the claims.history table. All sources yield the same
// model.ClaimHistoryRow shape so the trainer and loader are source-agnostic.
package claimread

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gyeh/claimgate/internal/model"
)

// Source streams ClaimHistoryRows. Read returns io.EOF when exhausted,
// mirroring the parquet reader contract.
type Source interface {
	Read(rows []model.ClaimHistoryRow) (int, error)
	Close() error
}

// Open dispatches on file extension: .csv or .parquet.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return OpenCSV(path)
	case ".parquet":
		return OpenParquet(path)
	default:
		return nil, fmt.Errorf("unsupported claims file type %q (want .csv or .parquet)", filepath.Ext(path))
	}
}

// ReadAll drains a source into memory. Training datasets are modest; the
// streaming interface exists for the bulk loader.
func ReadAll(src Source) ([]model.ClaimHistoryRow, error) {
	var all []model.ClaimHistoryRow
	buf := make([]model.ClaimHistoryRow, 1024)
	for {
		n, err := src.Read(buf)
		all = append(all, buf[:n]...)
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
