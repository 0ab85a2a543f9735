package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/moneymitra/server/internal/agent/tools"
	"github.com/moneymitra/server/internal/display"
)

func newToolsCommand(load func() (*AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the registered tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			registry, err := cfg.NewRegistry()
			if err != nil {
				return err
			}
			return printTools(cmd.OutOrStdout(), registry)
		},
	}
}

func printTools(out io.Writer, registry *tools.Registry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tDESCRIPTION")
	for _, name := range registry.Names() {
		desc := ""
		if info, ok := registry.Info(name); ok {
			desc = info.Desc
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, display.Lookup(name).CallLabel, desc)
	}
	return tw.Flush()
}

func newToolCommand(load func() (*AppConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "tool <name> [json-args]",
		Short: "Run one tool and print its JSON result",
		Long: `Run one tool directly, without the language model.

Arguments are a JSON object; pass "-" to read them from stdin.

Examples:
  moneymitra tool mutualFundNav '{"schemeCode":"118834"}'
  moneymitra tool goldPriceInInr
  moneymitra tool sipFutureValue '{"monthlyInvestment":10000,"years":10,"annualReturnPercent":12}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			registry, err := cfg.NewRegistry()
			if err != nil {
				return err
			}

			argsJSON := ""
			if len(args) == 2 {
				argsJSON = args[1]
				if argsJSON == "-" {
					b, err := io.ReadAll(cmd.InOrStdin())
					if err != nil {
						return err
					}
					argsJSON = string(b)
				}
			}
			return runTool(cmd, registry, args[0], argsJSON)
		},
	}
}

func runTool(cmd *cobra.Command, registry *tools.Registry, name, argsJSON string) error {
	result, err := registry.Invoke(cmd.Context(), name, argsJSON)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, []byte(result), "", "  ") != nil {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return err
}
