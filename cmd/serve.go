package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/frameclassifier/internal/config"
	"github.com/lehigh-university-libraries/frameclassifier/internal/events"
	"github.com/lehigh-university-libraries/frameclassifier/internal/extract"
	"github.com/lehigh-university-libraries/frameclassifier/internal/handlers"
	"github.com/lehigh-university-libraries/frameclassifier/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the labeling API server",
		Long: `Starts the JSON API for labeling sessions and frame extraction on the
specified port.

Label changes and extraction progress are pushed to websocket clients on /ws.
Prometheus metrics are served on /metrics.`,
		Example: `  # Start server on FRAMECLASSIFIER_PORT (default 8888)
  frameclassifier serve

  # Start server on custom port
  frameclassifier serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == "" {
				port = strconv.Itoa(cfg.Port)
			}

			ctx, stop := context.WithCancel(cmd.Context())
			defer stop()

			hub := events.NewHub(256)
			go hub.Run(ctx)

			extractor := extract.NewExtractor(extract.NewFFmpegDecoder(cfg.FFmpegPath, cfg.FFprobePath), cfg.JPEGQuality)
			handler := handlers.New(storage.New(), extract.NewRunner(ctx, extractor), hub)

			// Set up routes
			mux := http.NewServeMux()
			handler.Routes(mux, hub)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Frameclassifier API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				stop()
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (defaults to FRAMECLASSIFIER_PORT)")

	return cmd
}
