package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/metadiff/internal/comparison"
	"github.com/lehigh-university-libraries/metadiff/internal/report"
)

func newCompareCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "compare <image1> <image2>",
		Short: "Print the metadata differences between two images",
		Example: `  metadiff compare a.png b.png
  metadiff compare a.png b.png --format json
  metadiff compare a.png b.png --format parquet --output diff.parquet`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			for _, p := range args {
				if _, err := os.Stat(p); err != nil {
					return fmt.Errorf("cannot read %s: %w", p, err)
				}
			}

			result := comparison.NewService(newExtractor(), nil).CompareFiles(args[0], args[1])

			if f == report.FormatParquet {
				if output == "" {
					return errors.New("--output is required for parquet format")
				}
				return report.WriteParquet(output, result)
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				return report.Write(w, f, result)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json, yaml, parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}

// withOutput runs write against path, or stdout when path is empty.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
