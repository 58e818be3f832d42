package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vtcal/internal/convert"
	"vtcal/internal/history"
	appLog "vtcal/internal/log"
	"vtcal/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timetable upload service",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// CLI --listen overrides the config file if provided.
		if serveListen != "" {
			cfg.Listen = serveListen
		}

		conv, err := convert.New(cfg)
		if err != nil {
			return err
		}

		var hist *history.Store
		if cfg.HistoryDB != "" {
			hist, err = history.New(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer hist.Close()
		}

		appLog.Info("vtcal serve starting",
			"listen", cfg.Listen,
			"timezone", cfg.Timezone,
			"max_upload_mb", cfg.MaxUploadMB,
			"history", cfg.HistoryDB != "",
		)

		// Root context with cancellation on SIGINT/SIGTERM.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		}()

		return web.NewServer(cfg, conv, hist).Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
}
