package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	useMock    bool
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Signal-gated BUY/SELL decisions with position rules",
		Long: `sentinel evaluates technical and investor-flow signals for a symbol
universe, applies purchase limits, cooldowns and holding periods, and
executes the resulting orders on a paper account.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use generated market data instead of the REST source")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(positionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
