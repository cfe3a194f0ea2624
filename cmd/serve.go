package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/metadiff/internal/comparison"
	"github.com/lehigh-university-libraries/metadiff/internal/config"
	"github.com/lehigh-university-libraries/metadiff/internal/handlers"
	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
	"github.com/lehigh-university-libraries/metadiff/internal/metrics"
	"github.com/lehigh-university-libraries/metadiff/internal/uploads"
)

func newServeCmd() *cobra.Command {
	var (
		port       string
		uploadDir  string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web interface for comparing image metadata",
		Long: `Starts the metadata comparison web interface.

Up to four images can be uploaded at once. Each upload replaces the previous
set, and the metadata of the first two images is compared and shown grouped
into Basic Info, AI Parameters, EXIF Data and Other Metadata.

Settings come from defaults, an optional YAML file (--config) and METADIFF_*
environment variables. Flags override all of them.`,
		Example: `  # Start server on default port 8888
  metadiff serve

  # Start server on custom port with uploads kept elsewhere
  metadiff serve --port 3000 --upload-dir /tmp/metadiff`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("upload-dir") {
				cfg.UploadDir = uploadDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if f := cmd.Flag("verbose"); f == nil || !f.Changed {
				setupLogger(cfg.SlogLevel())
			}

			var collector *metrics.Collector
			var opts []metadata.Option
			var observe func(*comparison.Result)
			if cfg.MetricsEnabled {
				collector = metrics.NewCollector()
				opts = append(opts, metadata.WithFailureHook(func(string, error) {
					collector.ExtractionFailures.Inc()
				}))
				observe = func(r *comparison.Result) {
					collector.ObserveComparison(len(r.Diff))
				}
			}

			store := uploads.New(cfg.UploadDir)
			service := comparison.NewService(newExtractor(opts...), observe)
			handler := handlers.New(store, service, collector, cfg.MaxUploadBytes)

			addr := ":" + cfg.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Metadiff interface available", "addr", addr, "url", "http://localhost"+addr, "upload_dir", cfg.UploadDir)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
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

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&uploadDir, "upload-dir", "static/uploads", "Directory uploaded images are stored in")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")

	return cmd
}
