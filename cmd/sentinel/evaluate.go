package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate [SYMBOL...]",
		Short: "Run one evaluation pass and print the intents without executing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true, args)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			holdings, err := a.policy.Holdings()
			if err != nil {
				return fmt.Errorf("load holdings: %w", err)
			}
			res := a.engine().Evaluate(context.Background(), uuid.NewString(), cfg.Decision.Symbols, holdings)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SYMBOL\tHELD\tCLOSE\tMA20\tDIV%\tSCORE\tGATE\tRESULT")
			for _, ev := range res.Evaluations {
				if ev.Signal == nil {
					fmt.Fprintf(w, "%s\t%d\t-\t-\t-\t-\t-\t%s\n", ev.Symbol, ev.HeldQty, ev.Skip)
					continue
				}
				sig := ev.Signal
				div := string(sig.Divergence.Category)
				if sig.Divergence.Known {
					div = fmt.Sprintf("%.2f (%s)", sig.Divergence.Pct, sig.Divergence.Category)
				}
				gate := "pass"
				if !ev.GatePassed {
					gate = strings.Join(ev.GateFailed, ",")
				}
				result := ev.Skip
				if ev.Intent != nil {
					result = fmt.Sprintf("%s x%d", ev.Intent.Side, ev.Intent.Quantity)
				}
				fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%s\t%.2f\t%s\t%s\n",
					ev.Symbol, ev.HeldQty, sig.LatestClose, sig.MA20, div, sig.CompositeScore, gate, result)
			}
			return w.Flush()
		},
	}
}
