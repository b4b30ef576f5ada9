package cmd

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Add1ct1ve/CalWid/internal/api"
	"github.com/Add1ct1ve/CalWid/internal/tasks"
)

var listenFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the snapshot over a local HTTP API",
	Long: `Run a local HTTP server the widget polls instead of talking to Google
directly.

Endpoints:
  GET  /api/data             Fetch fresh data, falling back to the cached
                             snapshot when a source fails
  GET  /api/cached           The cached snapshot, no network
  POST /api/tasks/complete   Mark a task completed ({"task_id", "tasklist_id"})

The server runs until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenFlag, "listen", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	listen := listenFlag
	if listen == "" {
		listen = cfg.Server.Listen
	}

	manager, err := newManager(false)
	if err != nil {
		return err
	}

	cache := newSnapshotCache(manager)
	completer := tasks.NewFetcher(manager, cfg.Tasks.Lists)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(listen, cache, completer)
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
