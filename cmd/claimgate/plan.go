package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/claimread"
	"github.com/gyeh/claimgate/internal/exitcode"
	"github.com/gyeh/claimgate/internal/logging"
	"github.com/gyeh/claimgate/internal/model"
	"github.com/gyeh/claimgate/internal/normalize"
	"github.com/gyeh/claimgate/internal/rules"
)

const planSampleSize = 1000

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run validation and stats for a claims file (no writes)",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&cfg.InputPath, "input", "", "Path to claims file (.csv or .parquet, required)")
	_ = planCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	cfg.ApplyDefaults()

	if err := cfg.ValidateInput(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateArtifacts(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	cat, err := catalog.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("catalog load failed")
		os.Exit(exitcode.ConfigError)
	}

	sha, err := normalize.FileHash(cfg.InputPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.UsageError)
	}
	stat, err := os.Stat(cfg.InputPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to stat file")
		os.Exit(exitcode.UsageError)
	}

	src, err := claimread.Open(cfg.InputPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to open claims file")
		os.Exit(exitcode.UsageError)
	}
	defer src.Close()

	planTypes := make(map[string]int)
	labelColumn := ""
	var sampled, weakCovered, explicit int

	buf := make([]model.ClaimHistoryRow, 256)
	for sampled < planSampleSize {
		n, readErr := src.Read(buf)
		for i := 0; i < n && sampled < planSampleSize; i++ {
			sampled++
			row := &buf[i]
			claim := row.ToClaim()
			planTypes[claim.PlanType]++
			if _, col, ok := row.ResolveLabel(cfg.LabelColumns); ok {
				explicit++
				if labelColumn == "" {
					labelColumn = col
				}
			}
			if gate := rules.Evaluate(claim, cat); !gate.HardBlock {
				weakCovered++
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			log.Error().Err(readErr).Msg("failed to read sample rows")
			os.Exit(exitcode.UsageError)
		}
	}

	fmt.Println("=== claimgate plan ===")
	fmt.Printf("File:       %s\n", cfg.InputPath)
	fmt.Printf("SHA-256:    %s\n", sha)
	fmt.Printf("Size:       %d bytes\n", stat.Size())
	fmt.Printf("Sampled:    %d rows\n", sampled)
	fmt.Println()

	fmt.Println("Plan type distribution (sampled):")
	names := make([]string, 0, len(planTypes))
	for name := range planTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-10s %6d\n", name, planTypes[name])
	}
	fmt.Println()

	if labelColumn != "" {
		fmt.Printf("Explicit label column: %q (%d/%d rows populated)\n", labelColumn, explicit, sampled)
	} else {
		fmt.Println("No explicit label column; training would use weak labels from rules")
	}
	if sampled > 0 {
		fmt.Printf("Projected weak-label split: %d covered / %d denied\n", weakCovered, sampled-weakCovered)
	}
	return nil
}
