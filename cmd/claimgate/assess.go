package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgate/internal/catalog"
	"github.com/gyeh/claimgate/internal/classifier"
	"github.com/gyeh/claimgate/internal/engine"
	"github.com/gyeh/claimgate/internal/exitcode"
	"github.com/gyeh/claimgate/internal/logging"
	"github.com/gyeh/claimgate/internal/model"
)

var engineConfigPath string

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Adjudicate a single claim document and print the EOB JSON",
	RunE:  runAssess,
}

func init() {
	f := assessCmd.Flags()
	f.StringVar(&cfg.ClaimPath, "claim", "", "Path to claim JSON document (required)")
	f.StringVar(&cfg.ModelPath, "model", "models/coverage_model.json", "Path to trained model artifact")
	f.StringVar(&engineConfigPath, "config", "", "Optional engine YAML config")
	_ = assessCmd.MarkFlagRequired("claim")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if engineConfigPath != "" {
		if err := cfg.LoadFromFile(engineConfigPath); err != nil {
			log.Error().Err(err).Msg("config validation failed")
			os.Exit(exitcode.UsageError)
		}
	}
	cfg.ApplyDefaults()

	if err := cfg.ValidateArtifacts(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	// Catalog and fee schedule are mandatory configuration; a broken file
	// aborts rather than adjudicating with partial rules.
	cat, err := catalog.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Error().Err(err).Msg("catalog load failed")
		os.Exit(exitcode.ConfigError)
	}
	fees, err := catalog.LoadFees(cfg.FeesPath)
	if err != nil {
		log.Error().Err(err).Msg("fee schedule load failed")
		os.Exit(exitcode.ConfigError)
	}

	// The classifier is optional: a missing or unreadable artifact degrades
	// to rule-only adjudication.
	var bundle *classifier.Bundle
	if cfg.ModelPath != "" {
		bundle, err = classifier.Load(cfg.ModelPath)
		if err != nil {
			log.Warn().Err(err).Msg("classifier unavailable, adjudicating rule-only")
			bundle = nil
		}
	}

	data, err := os.ReadFile(cfg.ClaimPath)
	if err != nil {
		log.Error().Err(err).Msg("claim document read failed")
		os.Exit(exitcode.AssessError)
	}
	claim, err := model.ParseClaimJSON(data)
	if err != nil {
		log.Error().Err(err).Msg("claim document parse failed")
		os.Exit(exitcode.AssessError)
	}

	eng := engine.New(cat, fees, bundle, cfg.DecisionThreshold)
	result := eng.Adjudicate(claim)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("result marshal failed")
		os.Exit(exitcode.AssessError)
	}
	fmt.Println(string(out))
	return nil
}
