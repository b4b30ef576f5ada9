package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Add1ct1ve/CalWid/internal/render"
	"github.com/Add1ct1ve/CalWid/internal/snapshot"
)

var showFormatFlag string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached snapshot without touching the network",
	Long: `Print the last fetched snapshot. Never goes to the network; with nothing
cached yet an empty snapshot is printed.

Examples:
  calwid show                 # Cached snapshot as JSON
  calwid show --format=text   # Cached snapshot as plain text`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFormatFlag, "format", "json", "output format (json/text)")
}

func runShow(cmd *cobra.Command, args []string) error {
	// No fetchers needed: the cache only loads the persisted snapshot.
	cache := snapshot.NewCache(snapshotPath(), nil, nil, cfg.Sync.LookaheadDays)
	snap := cache.Cached()

	switch showFormatFlag {
	case "json":
		out, err := render.FormatJSON(snap)
		if err != nil {
			return fmt.Errorf("failed to format JSON output: %w", err)
		}
		fmt.Println(out)
	case "text":
		fmt.Println(render.NewFormatter().FormatText(snap))
	default:
		return fmt.Errorf("unknown format: %s (supported: json, text)", showFormatFlag)
	}

	return nil
}
