package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Add1ct1ve/CalWid/internal/logger"
	"github.com/Add1ct1ve/CalWid/internal/render"
)

var (
	formatFlag string
	daysFlag   int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch events and tasks, update the snapshot, and print it",
	Long: `Fetch calendar events and open tasks from Google, replace the local snapshot,
and print the result.

The snapshot is replaced only when both sources fetch successfully; on any
failure the previous snapshot is printed instead, so a transient API outage
never blanks the widget.

Examples:
  calwid sync                  # Fetch and print as JSON
  calwid sync --format=text    # Fetch and print as plain text
  calwid sync --days=14        # Override the events lookahead window`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&formatFlag, "format", "json", "output format (json/text)")
	syncCmd.Flags().IntVar(&daysFlag, "days", 0, "events lookahead in days (overrides config)")
}

func runSync(cmd *cobra.Command, args []string) error {
	if daysFlag > 0 {
		cfg.Sync.LookaheadDays = daysFlag
	}

	manager, err := newManager(false)
	if err != nil {
		return err
	}
	if !manager.HasUsableToken() {
		logger.Debug("no usable token, refresh will be attempted")
	}

	cache := newSnapshotCache(manager)

	snap, report, err := cache.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch data: %w", err)
	}
	if !report.Fresh() {
		logger.Warn("serving cached snapshot", "fetched_at", snap.FetchedAt)
	}

	switch formatFlag {
	case "json":
		out, err := render.FormatJSON(snap)
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %w", err)
		}
		fmt.Println(out)
	case "text":
		fmt.Println(render.NewFormatter().FormatText(snap))
	default:
		return fmt.Errorf("unknown format: %s (supported: json, text)", formatFlag)
	}

	return nil
}
