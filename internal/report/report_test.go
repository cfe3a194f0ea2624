package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/metadiff/internal/comparison"
	"github.com/lehigh-university-libraries/metadiff/internal/diff"
	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

func sampleResult() *comparison.Result {
	d := diff.Result{
		"size":             {Image1: "512x512", Image2: "768x768"},
		"parameters":       {Image1: "a cat\nSteps: 20", Image2: "a dog\nSteps: 20"},
		"EXIF_Orientation": {Image1: int64(1), Image2: nil},
	}
	return &comparison.Result{
		Image1: "a.png",
		Image2: "b.png",
		Diff:   d,
		Groups: diff.GroupByCategory(d),
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestRows(t *testing.T) {
	assert.Equal(t, []Row{
		{Category: "Basic Info", Path: "size", Image1: "512x512", Image2: "768x768"},
		{Category: "AI Parameters", Path: "parameters", Image1: "a cat\nSteps: 20", Image2: "a dog\nSteps: 20"},
		{Category: "EXIF Data", Path: "EXIF_Orientation", Image1: "1", Image2: "None"},
	}, Rows(sampleResult()))
}

func TestTextKeepsEveryDigit(t *testing.T) {
	assert.Equal(t, "123456789012345678901", Text(json.Number("123456789012345678901")))
	assert.Equal(t, "156680208700286101", Text(json.Number("156680208700286101")))
	assert.Equal(t, "None", Text(nil))
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "Basic Info")
	assert.Contains(t, out, "EXIF Data")
	assert.Contains(t, out, `a cat\nSteps: 20`)
	assert.Contains(t, out, "None")
}

func TestWriteTextNoDifferences(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, &comparison.Result{Image1: "a.png", Image2: "b.png"}))

	assert.Equal(t, "No metadata differences between a.png and b.png\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResult()))

	var decoded struct {
		Image1 string `json:"image1"`
		Groups []struct {
			Category string `json:"category"`
			Entries  []struct {
				Path   string `json:"path"`
				Image1 any    `json:"image1"`
				Image2 any    `json:"image2"`
			} `json:"entries"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "a.png", decoded.Image1)
	require.Len(t, decoded.Groups, 3)
	assert.Equal(t, "size", decoded.Groups[0].Entries[0].Path)
	assert.Equal(t, "768x768", decoded.Groups[0].Entries[0].Image2)
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleResult()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "b.png", decoded["image2"])
	assert.Len(t, decoded["groups"], 3)
}

func TestWriteParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diff.parquet")
	require.NoError(t, WriteParquet(path, sampleResult()))

	rows, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	assert.Equal(t, Rows(sampleResult()), rows)
}

func TestWriteMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMetadata(&buf, FormatYAML, metadata.Map{"format": "PNG"}))
	assert.Equal(t, "format: PNG\n", buf.String())

	assert.Error(t, WriteMetadata(&buf, FormatParquet, metadata.Map{}))
}
