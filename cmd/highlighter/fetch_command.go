package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <name>",
		Short: "Download a produced artifact (segment or final video)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			name := args[0]
			dest := output
			if dest == "" {
				if err := os.MkdirAll(ctx.cfg.DownloadsDir(), 0o755); err != nil {
					return fmt.Errorf("create downloads dir: %w", err)
				}
				dest = filepath.Join(ctx.cfg.DownloadsDir(), filepath.Base(name))
			}

			f, err := os.Create(dest)
			if err != nil {
				return err
			}

			n, err := ctx.gw.FetchStatic(cmd.Context(), name, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(dest)
				return authError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", dest, n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination path (defaults to the downloads directory)")
	return cmd
}
