package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RaufunNazin/Highlighter/internal/runs"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the local session and recent pipeline activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if ctx.store.Token() == "" {
				fmt.Fprintln(out, "Session:     not logged in")
			} else if profile, err := ctx.store.User(cmd.Context()); err == nil && profile != nil {
				fmt.Fprintf(out, "Session:     logged in as %s\n", profile.Username)
			} else {
				fmt.Fprintln(out, "Session:     logged in")
			}

			videoRef, _ := ctx.store.VideoRef(cmd.Context())
			finalRef, _ := ctx.store.FinalVideoRef(cmd.Context())
			if videoRef != "" {
				fmt.Fprintf(out, "Last video:  %s\n", videoRef)
			}
			if finalRef != "" {
				fmt.Fprintf(out, "Final video: %s\n", finalRef)
			}

			recent, err := ctx.journal.List(cmd.Context(), 5)
			if err != nil {
				return err
			}
			for _, run := range recent {
				switch run.Status {
				case runs.StatusRunning:
					fmt.Fprintf(out, "Running:     %s (%s)\n", run.Type, run.ID[:8])
				case runs.StatusFailed:
					fmt.Fprintf(out, "Last error:  %s: %s\n", run.Type, run.Error)
				}
			}
			return nil
		},
	}
}
