package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"edgescout/internal/config"
	"edgescout/internal/kalshi"
	"edgescout/internal/perception"
	"edgescout/internal/pipeline"
	"edgescout/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath  string
	interactive bool
	quiet       bool
	verbose     bool
	personas    []string
	outputPath  string
	texPath     string
	searchLimit int

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "edgescout [market]",
	Short: "edgescout - Kalshi prediction market research assistant",
	Long: `edgescout researches Kalshi prediction markets and produces structured,
persona-aware trade suggestions.

Give it a market as a URL, a ticker, or a plain-language description:

  edgescout "KXBTC-24DEC31-100K"
  edgescout "https://kalshi.com/markets/kxbtc/btc-100k"
  edgescout "Will the Fed cut rates in January 2025?"
  edgescout --interactive

The pipeline fetches live pricing, researches the market independently
of its price, estimates probabilities, and compares the two to surface
potential mispricing.

DISCLAIMER: Output is research for informational purposes only, not
financial advice. Prediction markets involve risk of loss.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		switch {
		case verbose:
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		case quiet:
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := buildPipeline(cfg)
		if err != nil {
			return err
		}

		if interactive {
			return runInteractive(ctx, p)
		}
		if len(args) == 0 {
			_ = cmd.Help()
			return fmt.Errorf("no market given")
		}
		return runOnce(ctx, p, args[0])
	},
}

// initCmd writes a starter config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Writes the default configuration to ~/.edgescout/config.yaml (or the
path given with --config) so it can be edited by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

// searchCmd lists open markets matching a query, for finding a ticker
// to analyze
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search open Kalshi markets by title or ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Search only talks to the market API; no model credential
		// needed, so skip full validation.
		path := configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gateway := kalshi.NewClientWithConfig(kalshi.Config{
			BaseURL: cfg.Kalshi.BaseURL,
			Timeout: cfg.KalshiTimeout(),
		})
		markets, err := gateway.SearchMarkets(ctx, args[0], searchLimit)
		if err != nil {
			return err
		}
		if len(markets) == 0 {
			fmt.Println("No open markets matched.")
			return nil
		}
		for _, m := range markets {
			fmt.Printf("%-32s %s\n", m.Ticker, m.Title)
		}
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildPipeline wires the model client and the market data gateway
// into a research pipeline.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	llm, err := perception.NewClient(perception.Config{
		Provider: perception.Provider(cfg.LLM.Provider),
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLMTimeout(),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	gateway := kalshi.NewClientWithConfig(kalshi.Config{
		BaseURL: cfg.Kalshi.BaseURL,
		Timeout: cfg.KalshiTimeout(),
	})

	active := personas
	if len(active) == 0 {
		active = cfg.Personas
	}
	if err := validatePersonas(active); err != nil {
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if len(active) > 0 {
		opts = append(opts, pipeline.WithPersonas(active))
	}
	return pipeline.New(llm, gateway, opts...), nil
}

func validatePersonas(requested []string) error {
	known := make(map[string]bool, len(pipeline.DefaultPersonas))
	for _, p := range pipeline.DefaultPersonas {
		known[p] = true
	}
	for _, p := range requested {
		if !known[p] {
			return fmt.Errorf("unknown persona %q (available: %v)", p, pipeline.DefaultPersonas)
		}
	}
	return nil
}

// runOnce analyzes a single market and emits the report to the chosen
// destination: terminal, markdown file, or LaTeX file.
func runOnce(ctx context.Context, p *pipeline.Pipeline, market string) error {
	state := p.Run(ctx, market)

	switch {
	case texPath != "":
		if err := report.SaveLaTeX(state, texPath); err != nil {
			return err
		}
		fmt.Printf("\nLaTeX report saved to: %s\n", texPath)
		fmt.Printf("Compile with: pdflatex %s\n", texPath)
	case outputPath != "":
		if err := report.SaveMarkdown(state, outputPath); err != nil {
			return err
		}
		fmt.Printf("\nReport saved to: %s\n", outputPath)
	default:
		printReport(state)
	}

	if state.InputValidationError != "" {
		return fmt.Errorf("input not recognized as a market")
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.edgescout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress logging")
	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "run in interactive mode")
	rootCmd.Flags().StringSliceVar(&personas, "personas", nil, "personas to generate recommendations for")
	rootCmd.Flags().StringVar(&outputPath, "output", "", "save report to a markdown file")
	rootCmd.Flags().StringVar(&texPath, "tex", "", "save report to a LaTeX file")

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(searchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
