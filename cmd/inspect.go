package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/metadiff/internal/report"
)

func newInspectCmd() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Print the metadata extracted from one image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if f != report.FormatJSON && f != report.FormatYAML {
				return fmt.Errorf("inspect supports json or yaml, not %s", f)
			}
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("cannot read %s: %w", args[0], err)
			}

			m := newExtractor().ExtractFile(args[0])
			return withOutput(cmd, output, func(w io.Writer) error {
				return report.WriteMetadata(w, f, m)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}
