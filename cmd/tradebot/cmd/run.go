package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebot/broker/paper"
	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/data"
	"github.com/rustyeddy/tradebot/engine"
	"github.com/rustyeddy/tradebot/journal"
	"github.com/rustyeddy/tradebot/pkg/logging"
	"github.com/rustyeddy/tradebot/risk"
	"github.com/rustyeddy/tradebot/strategy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trading loop from a config file",
	Long: `Run the trading bot using settings from a configuration file.

The config selects the broker mode, strategy, symbol universe, polling
interval, and risk thresholds. The loop runs until interrupted; a stop
request takes effect after the current cycle completes.

Example:
  tradebot run -f configs/paper.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	// Broker API credentials live in .env, not in the config file. Missing
	// is fine; paper mode needs none.
	_ = godotenv.Load()

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})

	var j journal.Journal
	switch cfg.Journal.Type {
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.TradesFile)
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	default:
		j = journal.Noop{}
	}
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	b := paper.New(cfg.Paper.InitialBalance)
	log.Info("paper trading enabled",
		"balance", cfg.Paper.InitialBalance, "currency", cfg.Paper.Currency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Connect(ctx); err != nil {
		return fmt.Errorf("broker connect: %w", err)
	}

	strat, err := strategy.ByName(cfg.Strategy)
	if err != nil {
		return err
	}

	rm := &risk.Manager{
		MaxPositionPct:    cfg.Risk.MaxPositionPct,
		StopLossPct:       cfg.Risk.StopLossPct,
		DailyLossLimitPct: cfg.Risk.DailyLossLimitPct,
		MaxOpenPositions:  cfg.Risk.MaxOpenPositions,
	}

	var provider data.Provider = data.NewClient(cfg.Data.BaseURL, log)
	if cfg.Data.StreamURL != "" {
		stream := data.NewStream(cfg.Data.StreamURL, provider, log)
		if err := stream.Connect(ctx); err != nil {
			return fmt.Errorf("connect quote stream: %w", err)
		}
		defer stream.Close()
		provider = stream
	}

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
		log.Info("metrics listening", "addr", cfg.Metrics.Addr)
	}

	interval, err := cfg.Interval()
	if err != nil {
		return err
	}

	eng := engine.New(b, strat, rm, provider, j, cfg.Symbols, log)
	eng.Run(ctx, interval)

	status, err := eng.Status(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("\nFinal status:\n")
	fmt.Printf("  Cash:        %.2f\n", status.Cash)
	fmt.Printf("  Positions:   %.2f\n", status.PositionValue)
	fmt.Printf("  Total value: %.2f\n", status.TotalValue)
	fmt.Printf("  Trades:      %d\n", status.TradeCount)
	fmt.Printf("  Total P&L:   %+.2f\n", status.TotalPnL)
	fmt.Printf("  Win rate:    %.0f%%\n", status.WinRate*100)
	return nil
}
