package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TradeSentinel/internal/broker"
	"TradeSentinel/internal/notifier"
	"TradeSentinel/internal/recorder"
	"TradeSentinel/internal/scheduler"
)

func runCmd() *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled evaluation cycles until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("[INFO] TradeSentinel starting...")
			cfg, err := loadConfig(true, nil)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			var n notifier.Notifier
			var tn *notifier.TelegramNotifier
			if cfg.Telegram.BotToken != "" {
				tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
				n = tn
			} else {
				log.Println("[WARN] telegram not configured, reports go to the log")
				n = notifier.NewNoopNotifier()
			}

			var rec recorder.Recorder
			if cfg.Database.SQLitePath != "" {
				sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
				if err != nil {
					log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
					rec = recorder.NewNoopRecorder()
				} else {
					rec = sr
					defer sr.Close()
				}
			} else {
				rec = recorder.NewNoopRecorder()
			}

			// Context for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			ex := broker.NewPaperExecutor(cfg.Account.ID, a.policy)
			sched := scheduler.NewScheduler(ctx, a.engine(), ex, a.policy, n, rec, cfg.Decision.Symbols)
			if err := sched.RegisterAll(cfg.Schedule.CycleCron, cfg.Schedule.SummaryCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Println("[INFO] Telegram polling started")
			}

			if runNow || os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] running a cycle on start")
				go func() {
					if _, err := sched.RunCycle(ctx, "cli"); err != nil {
						log.Printf("[ERROR] startup cycle: %v", err)
					}
				}()
			}

			log.Printf("[INFO] TradeSentinel is running on %d symbols. Press Ctrl+C to stop.", len(cfg.Decision.Symbols))

			// Wait for shutdown signal
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Println("[INFO] shutdown signal received, stopping...")
			cancel()
			log.Println("[INFO] TradeSentinel stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "now", false, "run one cycle immediately after start")
	return cmd
}
