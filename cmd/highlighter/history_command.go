package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var remote bool
	var format string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show pipeline run history",
		Long: "Shows the local run journal by default. With --remote the edit " +
			"history kept by the remote service for the logged-in user is " +
			"fetched instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}
			if format == "" {
				format = defaultFormat()
			}

			if remote {
				return runRemoteHistory(ctx, cmd, format)
			}
			return runLocalHistory(ctx, cmd, format, limit)
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the remote edit history")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json or yaml")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of local entries")
	return cmd
}

func runLocalHistory(ctx *commandContext, cmd *cobra.Command, format string, limit int) error {
	list, err := ctx.journal.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	switch format {
	case "json", "yaml":
		return renderStructured(cmd, format, list)
	case "table":
		rows := make([][]string, 0, len(list))
		for _, run := range list {
			line := run.Detail
			if run.Error != "" {
				line = run.Error
			}
			rows = append(rows, []string{
				run.ID[:8],
				run.Type,
				run.Status,
				run.VideoRef,
				line,
				run.CreatedAt.Local().Format(time.DateTime),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Type", "Status", "Video", "Detail", "Started"},
			rows,
			nil,
		))
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func runRemoteHistory(ctx *commandContext, cmd *cobra.Command, format string) error {
	profile, err := ctx.store.User(cmd.Context())
	if err != nil {
		return err
	}
	if profile == nil {
		return errors.New("not logged in")
	}

	records, err := ctx.gw.History(cmd.Context(), profile.ID)
	if err != nil {
		return authError(err)
	}

	switch format {
	case "json", "yaml":
		return renderStructured(cmd, format, records)
	case "table":
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []string{
				fmt.Sprintf("%d", rec.ID),
				rec.InputVideo,
				rec.Subtitle,
				rec.OutputVideo,
				rec.Time,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"ID", "Input", "Subtitle", "Output", "Time"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
		))
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderStructured(cmd *cobra.Command, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// defaultFormat picks a table for humans and JSON for pipes.
func defaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}
