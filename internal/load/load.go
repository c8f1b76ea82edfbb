// Package load bulk-loads historical-claims files into the claims.history
// table over the COPY protocol. Source files are deduplicated by SHA-256 so
// re-running a load is a no-op unless forced.
package load

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/claimgate/internal/claimread"
	"github.com/gyeh/claimgate/internal/db"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/normalize"
)

const readBatchSize = 1024

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

// Run executes the load pipeline: preflight → stage.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, filePath string, force bool) (*model.LoadSummary, error) {
	start := time.Now()

	log.Info().Str("file", filePath).Msg("starting preflight")
	pf, err := preflight(ctx, pool, filePath, force)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	if pf.alreadyLoaded {
		log.Info().
			Int64("source_file_id", pf.sourceFileID).
			Str("sha256", pf.sha256).
			Msg("file already loaded, skipping (use --force to re-load)")
		return &model.LoadSummary{
			FilePath:      filePath,
			FileSHA256:    pf.sha256,
			SourceFileID:  pf.sourceFileID,
			AlreadyLoaded: true,
			DurationTotal: time.Since(start),
		}, nil
	}

	batchID := uuid.New()
	log.Info().Str("load_batch_id", batchID.String()).Msg("starting staging")
	read, loaded, err := stage(ctx, pool, log, filePath, batchID, pf.sourceFileID)
	if err != nil {
		_ = updateStatus(ctx, pool, pf.sourceFileID, "failed")
		return nil, &PipelineError{Phase: "stage", Err: err}
	}
	if err := updateStatus(ctx, pool, pf.sourceFileID, "loaded"); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	summary := &model.LoadSummary{
		FilePath:      filePath,
		FileSHA256:    pf.sha256,
		SourceFileID:  pf.sourceFileID,
		LoadBatchID:   batchID.String(),
		RowsRead:      read,
		RowsLoaded:    loaded,
		DurationTotal: time.Since(start),
	}
	log.Info().
		Int64("rows_read", summary.RowsRead).
		Int64("rows_loaded", summary.RowsLoaded).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("load pipeline complete")
	return summary, nil
}

type preflightResult struct {
	sourceFileID  int64
	sha256        string
	alreadyLoaded bool
}

// preflight hashes the file and registers it, detecting prior loads by digest.
func preflight(ctx context.Context, pool *pgxpool.Pool, filePath string, force bool) (*preflightResult, error) {
	sha, err := normalize.FileHash(filePath)
	if err != nil {
		return nil, fmt.Errorf("hash source file: %w", err)
	}

	var id int64
	err = pool.QueryRow(ctx,
		`INSERT INTO claims.source_files (file_name, file_sha256)
		 VALUES ($1, $2)
		 ON CONFLICT (file_sha256) DO NOTHING
		 RETURNING source_file_id`,
		filePath, sha,
	).Scan(&id)
	if err == nil {
		return &preflightResult{sourceFileID: id, sha256: sha}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("register source file: %w", err)
	}

	// Already registered; decide whether to skip or reset for re-load.
	var status string
	if err := pool.QueryRow(ctx,
		"SELECT source_file_id, status FROM claims.source_files WHERE file_sha256 = $1",
		sha,
	).Scan(&id, &status); err != nil {
		return nil, fmt.Errorf("lookup source file: %w", err)
	}
	if !force && status == "loaded" {
		return &preflightResult{sourceFileID: id, sha256: sha, alreadyLoaded: true}, nil
	}
	if err := updateStatus(ctx, pool, id, "pending"); err != nil {
		return nil, fmt.Errorf("reset source file status: %w", err)
	}
	// Drop rows from any prior partial or forced load of this file.
	if _, err := pool.Exec(ctx, "DELETE FROM claims.history WHERE source_file_id = $1", id); err != nil {
		return nil, fmt.Errorf("clear previous rows: %w", err)
	}
	return &preflightResult{sourceFileID: id, sha256: sha}, nil
}

// stage streams rows from the claims file into claims.history via a
// channel-backed CopyFromSource.
func stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, filePath string, batchID uuid.UUID, sourceFileID int64) (read, loaded int64, err error) {
	src, err := claimread.Open(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("open claims file: %w", err)
	}
	defer src.Close()

	ch := make(chan db.CopyRow, readBatchSize)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		buf := make([]model.ClaimHistoryRow, readBatchSize)
		var rowNum int64
		for {
			n, readErr := src.Read(buf)
			for i := 0; i < n; i++ {
				rowNum++
				read++
				select {
				case ch <- buf[i].CopyValues(batchID, sourceFileID, rowNum):
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				errCh <- fmt.Errorf("read claims file at row %d: %w", rowNum, readErr)
				return
			}
		}
		errCh <- nil
	}()

	loaded, copyErr := pool.CopyFrom(ctx,
		pgx.Identifier{"claims", "history"},
		model.HistoryColumns(),
		db.NewChannelSource(ch),
	)

	if prodErr := <-errCh; prodErr != nil {
		return read, loaded, fmt.Errorf("stage producer: %w", prodErr)
	}
	if copyErr != nil {
		return read, loaded, fmt.Errorf("stage copy: %w", copyErr)
	}

	log.Info().Int64("rows_read", read).Int64("rows_loaded", loaded).Msg("staging complete")
	return read, loaded, nil
}

func updateStatus(ctx context.Context, pool *pgxpool.Pool, sourceFileID int64, status string) error {
	_, err := pool.Exec(ctx,
		"UPDATE claims.source_files SET status = $2 WHERE source_file_id = $1",
		sourceFileID, status,
	)
	return err
}
