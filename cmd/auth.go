package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Add1ct1ve/CalWid/internal/auth"
)

var (
	revokeFlag     bool
	authStatusFlag bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize against Google or manage the stored token",
	Long: `Run the interactive OAuth flow: a browser opens on the Google consent page,
and the granted token is stored locally for every later command.

Requires an OAuth client credentials file (Desktop application type) from the
Google Cloud console.

Examples:
  calwid auth            # Run the browser authorization flow
  calwid auth --status   # Report whether a usable token is stored
  calwid auth --revoke   # Remove the stored token`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&revokeFlag, "revoke", false, "remove the stored token")
	authCmd.Flags().BoolVar(&authStatusFlag, "status", false, "report token status without authorizing")
}

func runAuth(cmd *cobra.Command, args []string) error {
	if revokeFlag {
		store := auth.NewStore(tokenPath())
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		fmt.Println("Stored token removed.")
		return nil
	}

	manager, err := newManager(true)
	if err != nil {
		return err
	}

	if authStatusFlag {
		if manager.HasUsableToken() {
			fmt.Println("Token is valid.")
		} else {
			fmt.Println("No usable token. Run 'calwid auth' to authorize.")
		}
		return nil
	}

	token, err := manager.Authorize(cmd.Context())
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if err := auth.NewStore(tokenPath()).Save(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Println("Authorization successful.")
	return nil
}
