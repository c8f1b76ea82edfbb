package claimread

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/claimgate/internal/model"
)

// ParquetSource wraps a parquet GenericReader for streaming claim rows.
type ParquetSource struct {
	file   *os.File
	reader *parquet.GenericReader[model.ClaimHistoryRow]
}

// OpenParquet opens a Parquet claims file for streaming reads.
func OpenParquet(path string) (*ParquetSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat parquet file: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	r := parquet.NewGenericReader[model.ClaimHistoryRow](pf)
	return &ParquetSource{file: f, reader: r}, nil
}

// NumRows returns the total row count from the Parquet metadata.
func (s *ParquetSource) NumRows() int64 {
	return s.reader.NumRows()
}

func (s *ParquetSource) Read(rows []model.ClaimHistoryRow) (int, error) {
	n, err := s.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read parquet rows: %w", err)
	}
	return n, err
}

func (s *ParquetSource) Close() error {
	if err := s.reader.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
