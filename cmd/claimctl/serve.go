package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/claim-advocate/internal/httpapi"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := getCLIContext(cmd)
			if addr != "" {
				cc.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cc.cfg, cc.log)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := a.Close(closeCtx); err != nil {
					cc.log.Warn("shutdown", zap.Error(err))
				}
			}()
			a.watchKnowledge(ctx)

			srv := &http.Server{
				Addr:              cc.cfg.Server.Addr,
				Handler:           httpapi.NewServer(httpapi.Config{Service: a.svc, Metrics: a.metrics, Log: cc.log}),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       cc.cfg.Server.ReadTimeout,
				WriteTimeout:      cc.cfg.Server.WriteTimeout,
			}
			errc := make(chan error, 1)
			go func() {
				cc.log.Info("claim advocate listening", zap.String("addr", srv.Addr), zap.String("version", Version))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			cc.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
