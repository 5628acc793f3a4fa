package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sjoshi/otp/pkg/interfaces/cli/commands"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "otp",
		Short: "Order promise calculation engine",
		Long:  "Calculates delivery promise dates from current stock and incoming supply.",
	}
	root.AddCommand(newServeCommand(), newPromiseCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the promise API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			serve := commands.NewServeCommand(commands.ServeConfig{ConfigFile: configFile})
			return serve.Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config YAML file")
	return cmd
}

func newPromiseCommand() *cobra.Command {
	var cfg commands.PromiseConfig

	cmd := &cobra.Command{
		Use:   "promise",
		Short: "Compute a delivery promise from CSV supply data",
		Example: `  otp promise --stock stock.csv --supply supply.csv \
    --customer "ACME Corp" --item WIDGET-100:5 --item GADGET-200:2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			promise := commands.NewPromiseCommand(cfg)
			return promise.Execute(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&cfg.ConfigFile, "config", "c", "", "Path to config YAML file")
	cmd.Flags().StringVar(&cfg.StockFile, "stock", "", "Path to stock CSV file")
	cmd.Flags().StringVar(&cfg.SupplyFile, "supply", "", "Path to incoming supply CSV file")
	cmd.Flags().StringVar(&cfg.Customer, "customer", "", "Customer name")
	cmd.Flags().StringArrayVar(&cfg.Items, "item", nil, "Item line as ITEM-CODE:QTY (repeatable)")
	cmd.Flags().StringVar(&cfg.Mode, "mode", "", "Fulfillment mode: EARLIEST, NO_EARLY_DELIVERY, STRICT_FAIL")
	cmd.Flags().StringVar(&cfg.Format, "format", "text", "Output format: text, json")
	return cmd
}
