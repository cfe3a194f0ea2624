// Package report renders metadata comparisons and metadata maps for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/metadiff/internal/comparison"
	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

// Format names an output encoding.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML, FormatParquet:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json, yaml or parquet)", s)
}

// Row is one difference flattened for tabular output.
type Row struct {
	Category string `parquet:"category" json:"category"`
	Path     string `parquet:"path" json:"path"`
	Image1   string `parquet:"image1" json:"image1"`
	Image2   string `parquet:"image2" json:"image2"`
}

// Rows flattens r in display order.
func Rows(r *comparison.Result) []Row {
	var rows []Row
	for _, g := range r.Groups {
		for _, e := range g.Entries {
			rows = append(rows, Row{
				Category: string(g.Category),
				Path:     e.Path,
				Image1:   Text(e.Image1),
				Image2:   Text(e.Image2),
			})
		}
	}
	return rows
}

// Text renders a primitive value for display; nil shows as "None".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Write renders r to w as text, JSON or YAML.
func Write(w io.Writer, format Format, r *comparison.Result) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		return writeYAML(w, r)
	case FormatText:
		return writeText(w, r)
	}
	return fmt.Errorf("format %q cannot be written to a stream", format)
}

// WriteMetadata renders a single metadata map as JSON or YAML.
func WriteMetadata(w io.Writer, format Format, m metadata.Map) error {
	switch format {
	case FormatJSON, FormatText:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		return writeYAML(w, m)
	}
	return fmt.Errorf("format %q is not supported for metadata", format)
}

// WriteParquet writes one row per difference to path.
func WriteParquet(path string, r *comparison.Result) error {
	if err := parquet.WriteFile(path, Rows(r)); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

func writeText(w io.Writer, r *comparison.Result) error {
	if r.Empty() {
		_, err := fmt.Fprintf(w, "No metadata differences between %s and %s\n", r.Image1, r.Image2)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range r.Groups {
		fmt.Fprintf(tw, "%s\n", g.Category)
		fmt.Fprintf(tw, "  PATH\t%s\t%s\n", r.Image1, r.Image2)
		for _, e := range g.Entries {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Path, oneLine(Text(e.Image1)), oneLine(Text(e.Image2)))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
