package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/imageproxy"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the same-origin image relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			addr := firstNonEmpty(bind, svc.cfg.Server.Bind)
			log := svc.log.WithField("component", "relay")

			mux := http.NewServeMux()
			mux.Handle(svc.resolver.Relay, imageproxy.NewHandler(svc.fetcher, log))
			if dir := svc.cfg.Proxy.AssetsDir; dir != "" {
				mux.Handle("/assets/", http.FileServer(http.Dir(dir)))
			}
			server := &http.Server{
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      svc.cfg.ProxyTimeout() + 10*time.Second,
				IdleTimeout:       60 * time.Second,
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("relay listen: %w", err)
			}
			go func() {
				<-signalCtx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = server.Shutdown(shutdownCtx)
			}()

			log.WithFields(logrus.Fields{"address": listener.Addr().String(), "relay": svc.resolver.Relay}).Info("relay listening")
			fmt.Fprintf(cmd.OutOrStdout(), "Relay listening on http://%s%s\n", listener.Addr(), svc.resolver.Relay)
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("relay server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to server.bind)")
	return cmd
}
