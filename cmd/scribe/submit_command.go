package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var sessionID string
	var follow bool

	cmd := &cobra.Command{
		Use:   "submit <url>",
		Short: "Submit a media URL for transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			view, err := client.Submit(cmd.Context(), sessionID, args[0])
			if err != nil {
				return fmt.Errorf("submit job: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s queued (session %s)\n", view.ID, view.SessionID)
			if !follow {
				return nil
			}
			return followEvents(cmd, client, view.ID, 0)
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session identifier to group jobs under")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream progress events until the job finishes")
	return cmd
}
