package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradebot",
	Short: "An automated trading bot with risk-constrained order execution",
	Long: `Tradebot polls market data on a fixed interval, evaluates a
technical-analysis strategy per symbol, and places orders through a broker
backend under risk constraints: position sizing against account equity,
exposure and cash admission checks, and stop-loss enforcement before new
entries.

The built-in paper broker fills orders immediately against an in-memory
cash account, which makes it the reference backend for testing strategies
without touching a live market.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}
