package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgate/internal/db"
	"github.com/gyeh/claimgate/internal/exitcode"
	"github.com/gyeh/claimgate/internal/load"
	"github.com/gyeh/claimgate/internal/logging"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk-load a historical claims file into the database",
	RunE:  runLoad,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&cfg.InputPath, "input", "", "Path to claims file (.csv or .parquet, required)")
	f.BoolVar(&cfg.Force, "force", false, "Re-load even if file SHA already exists")
	_ = loadCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateInput(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := load.Run(ctx, pool, log, cfg.InputPath, cfg.Force)
	if err != nil {
		if pe, ok := err.(*load.PipelineError); ok {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("load failed")
			if pe.Phase == "stage" {
				os.Exit(exitcode.CopyError)
			}
			os.Exit(exitcode.UsageError)
		}
		log.Error().Err(err).Msg("load failed")
		os.Exit(exitcode.CopyError)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("summary marshal failed")
		os.Exit(exitcode.CopyError)
	}
	fmt.Println(string(out))
	return nil
}
