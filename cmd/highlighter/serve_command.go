package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/RaufunNazin/Highlighter/internal/api"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local control API",
		Long: "Serves a loopback-only HTTP API over the client state. Requests " +
			"are authenticated with a locally generated token printed on startup.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}
			if port == 0 {
				port = ctx.cfg.LocalAPIPort
			}

			token, err := ctx.store.Get(cmd.Context(), api.ControlTokenKey)
			if err != nil {
				return err
			}
			if token == "" {
				token = uuid.NewString()
				if err := ctx.store.Set(cmd.Context(), api.ControlTokenKey, token); err != nil {
					return err
				}
			}

			server := api.NewServer(api.ServerConfig{
				Port:      port,
				Store:     ctx.store,
				Journal:   ctx.journal,
				Gateway:   ctx.gw,
				Auth:      ctx.flow,
				Logger:    ctx.logger,
				StartTime: time.Now(),
			})

			fmt.Fprintf(cmd.OutOrStdout(), "Control API on http://%s (token %s)\n", server.Addr(), token)

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (defaults to the configured port)")
	return cmd
}
