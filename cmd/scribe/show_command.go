package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var transcriptOnly bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Display one job and its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			view, err := client.Describe(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("describe job: %w", err)
			}
			if view == nil {
				return fmt.Errorf("job %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			if transcriptOnly {
				if !view.HasTranscript {
					return fmt.Errorf("job %s has no transcript yet", view.ID)
				}
				fmt.Fprintln(out, view.Transcript)
				return nil
			}

			colorize := shouldColorize(out)
			fmt.Fprintf(out, "ID:        %s\n", view.ID)
			fmt.Fprintf(out, "Session:   %s\n", view.SessionID)
			fmt.Fprintf(out, "Status:    %s\n", colorizeStatus(view.Status, colorize))
			if view.Title != "" {
				fmt.Fprintf(out, "Title:     %s\n", view.Title)
			}
			fmt.Fprintf(out, "Source:    %s\n", view.SourceURL)
			if view.DurationSeconds > 0 {
				fmt.Fprintf(out, "Duration:  %s\n", formatSeconds(view.DurationSeconds))
			}
			fmt.Fprintf(out, "Created:   %s\n", view.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Updated:   %s\n", view.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
			if view.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:     %s\n", view.ErrorMessage)
			}
			if view.HasTranscript {
				fmt.Fprintf(out, "\n%s\n", view.Transcript)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&transcriptOnly, "transcript", false, "Print only the transcript HTML")
	return cmd
}
