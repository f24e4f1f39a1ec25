package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(g *globals) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the normalizer over HTTP",
		Long: `Start an HTTP bridge a host-side add-on can post rig documents to.

Endpoints:
  GET  /healthz
  POST /v1/rigs/{fix|ik|fingers|limits|cleanup}

Query parameters such as ?simplify=false override the configured fix stages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				g.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				g.cfg.Server.Port = port
			}

			handler := server.NewHandler(g.runner(), g.cfg.Options(), Version, g.logger)
			srvCfg := server.DefaultConfig(handler.Routes())
			srvCfg.Address = g.cfg.Addr()

			srv, err := server.New(srvCfg)
			if err != nil {
				return err
			}
			if err := srv.Listen(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "%s on http://%s\n", color.CyanString("Listening"), srv.Addr())
			g.logger.Info("Server started", zap.String("addr", srv.Addr()))

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down: %w", err)
			}
			g.logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default: server.host from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default: server.port from config)")
	return cmd
}
