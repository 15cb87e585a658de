package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"TradeSentinel/internal/model"
)

func positionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "positions [SYMBOL]",
		Short: "Print position summaries from the position history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false, nil)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var summaries []model.PositionSummary
			if len(args) == 1 {
				s, err := a.policy.Summary(args[0])
				if err != nil {
					return err
				}
				summaries = append(summaries, s)
			} else if summaries, err = a.policy.Summaries(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tQTY\tBUYS\tAVG ENTRY\tFIRST BUY\tLAST BUY\tSTATE")
			for _, s := range summaries {
				state := "open"
				switch {
				case s.IsPositionClosed && s.TotalQuantity == 0:
					state = "closed"
				case s.TotalQuantity == 0:
					state = "none"
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%s\t%s\t%s\n",
					s.Symbol, s.TotalQuantity, s.PurchaseCount, s.AverageEntry,
					formatTime(s.FirstPurchaseTime), formatTime(s.LastPurchaseTime), state)
			}
			return w.Flush()
		},
	}
}
