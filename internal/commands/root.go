package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the moneymitra command tree.
func NewRootCommand() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "moneymitra",
		Short: "India-focused personal finance assistant",
		Long: `MoneyMitra answers personal finance questions with live Indian market data.

It exposes the finance tools (mutual fund NAV and details, NSE indices, gold,
INR FX rates, crypto, global and Yahoo Finance quotes, SIP and FD calculators)
to a Gemini model, over HTTP or in an interactive terminal chat.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	load := func() (*AppConfig, error) {
		return LoadConfig(envFile)
	}

	rootCmd.AddCommand(
		newServeCommand(load),
		newChatCommand(load),
		newToolCommand(load),
		newToolsCommand(load),
	)
	return rootCmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}
