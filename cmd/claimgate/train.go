package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/claimread"
	"github.com/gyeh/claimgate/internal/config"
	"github.com/gyeh/claimgate/internal/db"
	"github.com/gyeh/claimgate/internal/exitcode"
	"github.com/gyeh/claimgate/internal/logging"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/train"
)

var trainConfigPath string

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the coverage classifier from historical claims (weak labels from rules)",
	RunE:  runTrain,
}

func init() {
	f := trainCmd.Flags()
	f.StringVar(&cfg.InputPath, "input", "", "Path to historical claims file (.csv or .parquet); omit to read from --dsn")
	f.StringVar(&cfg.OutPath, "out", "models/coverage_model.json", "Output path for the model artifact")
	f.StringVar(&trainConfigPath, "config", "", "Optional engine YAML config")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if trainConfigPath != "" {
		if err := cfg.LoadFromFile(trainConfigPath); err != nil {
			log.Error().Err(err).Msg("config validation failed")
			os.Exit(exitcode.UsageError)
		}
	}
	cfg.ApplyDefaults()

	if err := cfg.ValidateArtifacts(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	cat, err := catalog.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("catalog load failed")
		os.Exit(exitcode.ConfigError)
	}
	if _, err := catalog.LoadFees(cfg.FeesPath); err != nil {
		log.Error().Err(err).Msg("fee schedule load failed")
		os.Exit(exitcode.ConfigError)
	}

	rows, err := readTrainingRows(ctx, &cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("reading training rows failed")
		os.Exit(exitcode.TrainError)
	}

	params := train.Params{
		LabelColumns: cfg.LabelColumns,
		TestFraction: cfg.TestFraction,
		Seed:         42,
		OutPath:      cfg.OutPath,
	}
	summary, err := train.Run(log, rows, cat, params)
	if err != nil {
		if pe, ok := err.(*train.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("training failed")
		} else {
			log.Error().Err(err).Msg("training failed")
		}
		os.Exit(exitcode.TrainError)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("summary marshal failed")
		os.Exit(exitcode.TrainError)
	}
	fmt.Println(string(out))
	return nil
}

// readTrainingRows pulls history from the input file when given, otherwise
// from the claims.history table.
func readTrainingRows(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]model.ClaimHistoryRow, error) {
	if cfg.InputPath != "" {
		if err := cfg.ValidateInput(); err != nil {
			return nil, err
		}
		src, err := claimread.Open(cfg.InputPath)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		rows, err := claimread.ReadAll(src)
		if err != nil {
			return nil, err
		}
		log.Info().Str("input", cfg.InputPath).Int("rows", len(rows)).Msg("claims file read")
		return rows, nil
	}

	if err := cfg.ValidateWithDSN(); err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	rows, err := claimread.ReadHistory(ctx, pool)
	if err != nil {
		return nil, err
	}
	log.Info().Int("rows", len(rows)).Msg("claims history read from database")
	return rows, nil
}
