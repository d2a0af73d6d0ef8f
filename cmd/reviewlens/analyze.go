package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"reviewlens/internal/common"
	"reviewlens/internal/config"
	"reviewlens/internal/engine"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a CSV of reviews",
		Long: `Run the full analysis pipeline over a CSV of raw reviews.

The pipeline normalizes the Dutch review text, trains and selects a sentiment
classifier, tags reviews against the complaint taxonomy, and generates
improvement suggestions (LLM-backed with a deterministic rule fallback).
Artifacts are written as CSV files into the output directory.

Examples:
  reviewlens analyze --input data/reviews.csv
  reviewlens analyze --input data/reviews.csv --output-dir outputs --no-llm
  reviewlens analyze --input data/reviews.csv --seed 7`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("input", "i", "", "input CSV with raw reviews (required)")
	cmd.Flags().StringP("output-dir", "o", "outputs", "directory for generated artifacts")
	cmd.Flags().Bool("no-llm", false, "disable the LLM suggestion strategy")
	cmd.Flags().Int64("seed", 42, "random seed for model selection")

	_ = viper.BindPFlag("input", cmd.Flags().Lookup("input"))
	_ = viper.BindPFlag("output_dir", cmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("training.seed", cmd.Flags().Lookup("seed"))

	noLLM := cmd.Flags().Lookup("no-llm")
	cmd.PreRun = func(_ *cobra.Command, _ []string) {
		if noLLM.Changed {
			viper.Set("llm.enabled", false)
		}
	}

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg := config.FromViper()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := common.SetupLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	var bar *progressbar.ProgressBar
	eng.SetProgress(func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "cross-validation")
		}
		_ = bar.Set(done)
	})

	summary, err := eng.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Analyzed %d reviews\n", summary.Reviews)
	if summary.Trained {
		fmt.Printf("Selected model: %s (cv macro-F1 %.3f, held-out accuracy %.3f)\n",
			summary.SelectedModel, summary.MacroF1, summary.Accuracy)
	}
	fmt.Printf("Generated %d suggestions in %s\n", summary.Suggestions, cfg.OutputDir)
	return nil
}
