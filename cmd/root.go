package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"txn-extract/internal/categorizer"
	"txn-extract/internal/config"
	"txn-extract/internal/extractor"
	"txn-extract/internal/logger"
)

var (
	envFile   string
	debug     bool
	rulesFile string

	cfg *config.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "txn-extract",
	Short: "Extract transactions from Vietnamese bank notifications",
	Long: `A CLI tool that turns Vietnamese bank SMS, notification and receipt text
into structured transactions (amount, type, category, description, date).`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVar(&envFile, "config", "", "Path to a .env file (defaults to ./.env when present)")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	RootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "YAML category rules file (overrides TXN_RULES_FILE)")

	RootCmd.AddCommand(extractCmd, scanCmd, serveCmd, historyCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return err
	}
	if debug {
		cfg.Debug = true
	}
	if rulesFile != "" {
		cfg.RulesFile = rulesFile
	}

	if err := cfg.Validate("TXN_DB_PATH", "TXN_USER_ID"); err != nil {
		return err
	}

	cmd.SetContext(logger.WithContext(cmd.Context(), logger.New(cfg.Debug)))
	return nil
}

// newExtractor builds the heuristic extractor with the configured rule set.
func newExtractor(log zerolog.Logger) (*extractor.Extractor, error) {
	if cfg.RulesFile == "" {
		return extractor.New(), nil
	}

	rules, err := categorizer.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load category rules: %w", err)
	}

	c := categorizer.NewWithRules(rules)
	log.Debug().
		Str("file", cfg.RulesFile).
		Int("expense_rules", len(c.Rules())).
		Int("income_keywords", len(c.IncomeRule().Keywords)).
		Msg("Loaded category rules")

	return extractor.New(extractor.WithCategorizer(c)), nil
}
