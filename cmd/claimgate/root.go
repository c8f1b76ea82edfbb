package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/claimgate/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "claimgate",
	Short: "Claim coverage adjudication engine",
	Long:  "Adjudicates insurance claims against a benefit catalog (hard coverage rules), prices the benefit (EOB), and trains a weak-label coverage classifier from historical claims.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.CatalogPath, "catalog", "benefit_catalog.json", "Path to benefit catalog JSON")
	pf.StringVar(&cfg.FeesPath, "fees", "fee_schedule.json", "Path to fee schedule JSON")
	pf.StringVar(&cfg.DSN, "dsn", os.Getenv("CLAIMGATE_DB_URL"), "Postgres connection string (or set CLAIMGATE_DB_URL)")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
}
