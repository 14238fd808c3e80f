package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/api"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var since int64

	cmd := &cobra.Command{
		Use:   "events <job-id>",
		Short: "Show the progress feed of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			jobID := args[0]
			if follow {
				return followEvents(cmd, client, jobID, since)
			}

			events, err := client.Events(cmd.Context(), jobID, since)
			if err != nil {
				return fmt.Errorf("fetch events: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No events recorded")
				return nil
			}
			for _, event := range events {
				fmt.Fprintf(out, "%4d  %s\n", event.Seq, event.Content)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream events until the job finishes")
	cmd.Flags().Int64Var(&since, "since", 0, "Replay events after this sequence number")
	return cmd
}

func followEvents(cmd *cobra.Command, client *api.Client, jobID string, since int64) error {
	out := cmd.OutOrStdout()
	err := client.Follow(cmd.Context(), jobID, since, func(seq int64, content string) error {
		_, writeErr := fmt.Fprintf(out, "%4d  %s\n", seq, content)
		return writeErr
	})
	if err != nil {
		return fmt.Errorf("follow events: %w", err)
	}
	return nil
}
