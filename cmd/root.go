package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Add1ct1ve/CalWid/internal/auth"
	"github.com/Add1ct1ve/CalWid/internal/calendar"
	"github.com/Add1ct1ve/CalWid/internal/config"
	"github.com/Add1ct1ve/CalWid/internal/logger"
	"github.com/Add1ct1ve/CalWid/internal/snapshot"
	"github.com/Add1ct1ve/CalWid/internal/tasks"
)

var (
	dataDir         string
	cfgFile         string
	credentialsPath string
	verbose         bool
	cfg             *config.Config

	// Version information
	version    string
	commitHash string
	buildTime  string
)

var rootCmd = &cobra.Command{
	Use:   "calwid",
	Short: "Google Calendar and Tasks aggregator for desktop widgets",
	Long: `A CLI tool that aggregates Google Calendar events and Google Tasks into a
single cached snapshot for desktop widgets and status bars.

calwid authorizes against Google once, keeps the token fresh, and serves a
normalized view of upcoming events and open tasks. When Google is unreachable
the last good snapshot is served instead, so the widget never goes blank.

Run it on demand for one-shot output, or as a local HTTP server that a widget
polls.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, commit, buildTimeStr string) {
	version = v
	commitHash = commit
	buildTime = buildTimeStr

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commitHash, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for token and snapshot (default: ~/.local/share/calwid)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config directory (default is $HOME/.config/calwid)")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "", "path to OAuth client credentials JSON file (default: <config dir>/credentials.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	logger.Init(verbose)

	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

// resolveCredentialsPath picks the credentials file: flag, then config,
// then the default location.
func resolveCredentialsPath() string {
	if credentialsPath != "" {
		return credentialsPath
	}
	if cfg.Auth.CredentialsFile != "" {
		return cfg.Auth.CredentialsFile
	}
	return filepath.Join(config.DefaultConfigDir(), "credentials.json")
}

func tokenPath() string {
	return filepath.Join(dataDir, "token.json")
}

func snapshotPath() string {
	return filepath.Join(dataDir, "cache.json")
}

// newManager builds the token manager. interactive controls whether a
// missing or unrefreshable token may launch the browser flow.
func newManager(interactive bool) (*auth.Manager, error) {
	opts := []auth.Option{auth.WithInteractive(interactive)}
	if cfg.Auth.CallbackTimeoutMinutes > 0 {
		opts = append(opts, auth.WithCallbackTimeout(time.Duration(cfg.Auth.CallbackTimeoutMinutes)*time.Minute))
	}
	return auth.NewManager(resolveCredentialsPath(), auth.NewStore(tokenPath()), opts...)
}

// newSnapshotCache wires both fetchers to the shared token manager.
func newSnapshotCache(manager *auth.Manager) *snapshot.Cache {
	events := calendar.NewFetcher(manager)
	taskFetcher := tasks.NewFetcher(manager, cfg.Tasks.Lists)
	return snapshot.NewCache(snapshotPath(), events, taskFetcher, cfg.Sync.LookaheadDays)
}
