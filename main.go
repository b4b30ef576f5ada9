package main

import (
	"os"
	"path/filepath"

	"github.com/subosito/gotenv"

	"github.com/Add1ct1ve/CalWid/cmd"
	"github.com/Add1ct1ve/CalWid/internal/logger"
)

// Build-time variables injected by ldflags
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	// Load .env file if present (current directory or user config dir) to
	// allow credential-path overrides. The first file found wins.
	tryPaths := []string{".env"}
	if cfgHome, err := os.UserConfigDir(); err == nil {
		tryPaths = append(tryPaths, filepath.Join(cfgHome, "calwid", ".env"))
	}
	for _, p := range tryPaths {
		if _, err := os.Stat(p); err == nil {
			if loadErr := gotenv.Load(p); loadErr == nil {
				break
			}
		}
	}

	cmd.SetVersionInfo(Version, CommitHash, BuildTime)

	if err := cmd.Execute(); err != nil {
		logger.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
