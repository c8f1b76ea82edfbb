package load_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/claimgate/internal/claimread"
	"github.com/gyeh/claimgate/internal/db"
	"github.com/gyeh/claimgate/internal/load"
	"github.com/gyeh/claimgate/internal/logging"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/normalize"
)

const (
	testPort     = 15433
	testDB       = "claimstest"
	testUser     = "postgres"
	testPassword = "postgres"
)

var (
	testDSN string
	pg      *embeddedpostgres.EmbeddedPostgres
)

const fixtureCSV = `plan_type,clinical_category,country,billed_amount,hospital_tier,policy_active,in_network,covered,treatment_date
hospital,appendectomy,au,5000.25,1,1,1,1,2024-03-01
extras,dental checkup,au,120,,1,0,0,2024-04-10
hospital,knee replacement,au,14250.5,2,1,1,,2024-05-01
`

func TestMain(m *testing.M) {
	if os.Getenv("CLAIMGATE_PG_TESTS") == "" {
		fmt.Fprintln(os.Stderr, "SKIP: set CLAIMGATE_PG_TESTS=1 to run embedded-postgres tests")
		os.Exit(0)
	}

	testDSN = fmt.Sprintf("postgresql://%s:%s@localhost:%d/%s?sslmode=disable",
		testUser, testPassword, testPort, testDB)

	pg = embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(uint32(testPort)).
			Database(testDB).
			Username(testUser).
			Password(testPassword).
			Version(embeddedpostgres.V16).
			StartTimeout(30*time.Second),
	)

	if err := pg.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start embedded postgres: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	if err := pg.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to stop embedded postgres: %v\n", err)
	}

	os.Exit(code)
}

// setupDB creates a connection pool and applies migrations against a clean schema.
func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, testDSN)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS claims CASCADE"); err != nil {
		t.Fatalf("drop schema: %v", err)
	}

	log := logging.Setup("text")
	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.csv")
	if err := os.WriteFile(path, []byte(fixtureCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEndToEnd_Load(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	path := writeFixture(t)

	summary, err := load.Run(ctx, pool, log, path, false)
	if err != nil {
		t.Fatalf("load.Run: %v", err)
	}

	t.Run("summary_metrics", func(t *testing.T) {
		if summary.RowsRead != 3 {
			t.Errorf("RowsRead: got %d, want 3", summary.RowsRead)
		}
		if summary.RowsLoaded != 3 {
			t.Errorf("RowsLoaded: got %d, want 3", summary.RowsLoaded)
		}
		if summary.AlreadyLoaded {
			t.Error("first load marked AlreadyLoaded")
		}
		wantSHA, err := normalize.FileHash(path)
		if err != nil {
			t.Fatal(err)
		}
		if summary.FileSHA256 != wantSHA {
			t.Errorf("FileSHA256: got %q, want %q", summary.FileSHA256, wantSHA)
		}
		if summary.LoadBatchID == "" {
			t.Error("missing load batch id")
		}
	})

	t.Run("history_row_count", func(t *testing.T) {
		var count int64
		if err := pool.QueryRow(ctx, "SELECT count(*) FROM claims.history").Scan(&count); err != nil {
			t.Fatalf("query: %v", err)
		}
		if count != 3 {
			t.Errorf("history rows: got %d, want 3", count)
		}
	})

	t.Run("source_file_loaded", func(t *testing.T) {
		var status string
		err := pool.QueryRow(ctx,
			"SELECT status FROM claims.source_files WHERE source_file_id = $1",
			summary.SourceFileID).Scan(&status)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if status != "loaded" {
			t.Errorf("status: got %q, want loaded", status)
		}
	})

	t.Run("cents_conversion", func(t *testing.T) {
		var cents *int64
		err := pool.QueryRow(ctx,
			"SELECT billed_amount_cents FROM claims.history WHERE source_row_number = 1").Scan(&cents)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if cents == nil || *cents != 500025 {
			t.Errorf("billed cents: got %v, want 500025", cents)
		}
	})

	t.Run("label_collapse", func(t *testing.T) {
		var covered *int16
		err := pool.QueryRow(ctx,
			"SELECT covered FROM claims.history WHERE source_row_number = 2").Scan(&covered)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if covered == nil || *covered != 0 {
			t.Errorf("row 2 covered: got %v, want explicit 0", covered)
		}
		err = pool.QueryRow(ctx,
			"SELECT covered FROM claims.history WHERE source_row_number = 3").Scan(&covered)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if covered != nil {
			t.Errorf("row 3 covered: got %v, want NULL", covered)
		}
	})

	t.Run("read_history_round_trip", func(t *testing.T) {
		rows, err := claimread.ReadHistory(ctx, pool)
		if err != nil {
			t.Fatalf("read history: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("read %d rows, want 3", len(rows))
		}
		r := rows[0]
		if r.PlanType != "hospital" || r.ClinicalCategory != "appendectomy" {
			t.Errorf("row 0 text fields: %+v", r)
		}
		if r.BilledAmount == nil || *r.BilledAmount != 5000.25 {
			t.Errorf("row 0 billed: %v, want 5000.25 back from cents", r.BilledAmount)
		}
		if r.TreatmentDate != "2024-03-01" {
			t.Errorf("row 0 treatment_date: %q", r.TreatmentDate)
		}
		// Empty tier cell stays NULL end to end.
		if rows[1].HospitalTier != nil {
			t.Errorf("row 1 tier: %v, want nil", rows[1].HospitalTier)
		}
		// Loaded rows resolve into adjudicable claims.
		claim := r.ToClaim()
		if claim.CoverageLimit != model.UnboundedLimit {
			t.Errorf("claim coverage limit: %v", claim.CoverageLimit)
		}
		if claim.TreatmentDate == nil {
			t.Error("claim treatment date not parsed")
		}
	})
}

func TestEndToEnd_Idempotency(t *testing.T) {
	pool := setupDB(t)
	ctx := context.Background()
	log := logging.Setup("text")
	path := writeFixture(t)

	first, err := load.Run(ctx, pool, log, path, false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.RowsLoaded != 3 {
		t.Fatalf("first run loaded %d rows", first.RowsLoaded)
	}

	second, err := load.Run(ctx, pool, log, path, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !second.AlreadyLoaded {
		t.Error("second run should skip an already-loaded file")
	}
	if second.RowsLoaded != 0 {
		t.Errorf("second run loaded %d rows, want 0", second.RowsLoaded)
	}

	var count int64
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM claims.history").Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 3 {
		t.Errorf("history rows after re-run: got %d, want 3", count)
	}

	// Forced re-load replaces rather than appends.
	forced, err := load.Run(ctx, pool, log, path, true)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if forced.AlreadyLoaded || forced.RowsLoaded != 3 {
		t.Errorf("forced run: %+v", forced)
	}
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM claims.history").Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 3 {
		t.Errorf("history rows after forced re-run: got %d, want 3", count)
	}
}
