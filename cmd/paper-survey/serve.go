// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-survey/internal/intent"
	"github.com/pdiddy/paper-survey/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the paper-survey HTTP server",
	Long: `Serve starts the HTTP surface: GET /search for synchronous queries and
the /v1/search/tasks endpoints for asynchronous task-based searches. The
server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log := setupLogging(verbose)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		exec, store, cleanup, err := newExecutor(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()
		exec.Parser = intent.FreeTextParser{}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go store.StartCleanup(ctx)

		srv := server.New(exec, store, cfg.Server, log)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
