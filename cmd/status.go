package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Add1ct1ve/CalWid/internal/auth"
	"github.com/Add1ct1ve/CalWid/internal/snapshot"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication and snapshot status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("calwid status")
	fmt.Println("=============")

	// Credentials
	credsPath := resolveCredentialsPath()
	if _, err := os.Stat(credsPath); err == nil {
		fmt.Printf("Credentials:  %s\n", credsPath)
	} else {
		fmt.Printf("Credentials:  missing (%s)\n", credsPath)
	}

	// Token
	store := auth.NewStore(tokenPath())
	token, err := store.Load()
	switch {
	case err != nil:
		fmt.Printf("Token:        unreadable (%v)\n", err)
	case token == nil:
		fmt.Println("Token:        not authorized (run 'calwid auth')")
	case token.Usable(time.Now()):
		expiresIn := time.Until(time.Unix(token.ExpiresAt, 0)).Round(time.Second)
		fmt.Printf("Token:        valid (expires in %s)\n", expiresIn)
	case token.RefreshToken != "":
		fmt.Println("Token:        expired, will refresh on next sync")
	default:
		fmt.Println("Token:        expired, re-authorization required")
	}

	// Snapshot
	cache := snapshot.NewCache(snapshotPath(), nil, nil, cfg.Sync.LookaheadDays)
	snap := cache.Cached()
	if snap.FetchedAt.IsZero() {
		fmt.Println("Snapshot:     none")
	} else {
		age := time.Since(snap.FetchedAt).Round(time.Second)
		fmt.Printf("Snapshot:     %d events, %d tasks (fetched %s ago)\n",
			len(snap.Events), len(snap.Tasks), age)
	}

	// Config
	fmt.Printf("Lookahead:    %d days\n", cfg.Sync.LookaheadDays)
	if len(cfg.Tasks.Lists) == 0 {
		fmt.Println("Task lists:   none configured")
	} else {
		fmt.Printf("Task lists:   %v\n", cfg.Tasks.Lists)
	}

	return nil
}
