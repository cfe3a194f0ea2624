package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/metadiff/internal/images"
	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "metadiff",
		Short: "Compare the embedded metadata of two images",
		Long: `Metadiff extracts the metadata embedded in images (format, size, PNG text
chunks such as AI generation parameters, and EXIF tags) and reports every
field that differs between two of them.

It can run as a small web app with an upload form, or compare files directly
from the command line.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			setupLogger(level)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCompareCmd())
	cmd.AddCommand(newInspectCmd())

	return cmd
}

// setupLogger logs to stderr so command output on stdout stays clean.
func setupLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func newExtractor(opts ...metadata.Option) *metadata.Extractor {
	return metadata.NewExtractor(images.NewDecoder(), opts...)
}
