package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Add1ct1ve/CalWid/internal/tasks"
)

var doneCmd = &cobra.Command{
	Use:   "done <task-id> <tasklist-id>",
	Short: "Mark a task as completed",
	Long: `Mark a task completed at Google. The local snapshot is not modified;
run 'calwid sync' afterwards to see the task disappear.

The task and task-list ids come from the snapshot output ('calwid sync' or
'calwid show' with --format=json).`,
	Args: cobra.ExactArgs(2),
	RunE: runDone,
}

func runDone(cmd *cobra.Command, args []string) error {
	taskID, tasklistID := args[0], args[1]

	manager, err := newManager(false)
	if err != nil {
		return err
	}

	fetcher := tasks.NewFetcher(manager, cfg.Tasks.Lists)
	if err := fetcher.Complete(cmd.Context(), taskID, tasklistID); err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	fmt.Printf("Task %s marked as completed.\n", taskID)
	return nil
}
