package images

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

// exifWalker collects every tag goexif resolved.
type exifWalker struct {
	tags []metadata.ExifTag
}

func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	n := string(name)
	if strings.HasPrefix(n, exif.UnknownPrefix) {
		n = ""
	}
	w.tags = append(w.tags, metadata.ExifTag{
		ID:    tag.Id,
		Name:  n,
		Value: tagValue(tag),
	})
	return nil
}

// readExif parses a raw EXIF block (TIFF data, optionally behind an
// "Exif\0\0" header). Only errors that leave nothing usable are returned.
func readExif(raw []byte) ([]metadata.ExifTag, error) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		if x == nil || exif.IsCriticalError(err) {
			return nil, fmt.Errorf("failed to decode EXIF: %w", err)
		}
		slog.Debug("Partial EXIF data", "err", err)
	}

	w := &exifWalker{}
	if err := x.Walk(w); err != nil {
		return nil, fmt.Errorf("failed to walk EXIF tags: %w", err)
	}

	sort.Slice(w.tags, func(i, j int) bool {
		return w.tags[i].ID < w.tags[j].ID
	})
	return w.tags, nil
}

// tagValue converts a tag to a metadata value: text for ASCII tags, raw
// bytes for undefined tags, a number for single-valued numeric tags and a
// sequence otherwise.
func tagValue(tag *tiff.Tag) any {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return tag.String()
		}
		return strings.TrimRight(s, "\x00")
	case tiff.UndefVal:
		return append([]byte(nil), tag.Val...)
	case tiff.IntVal:
		return collect(tag, func(i int) (any, error) {
			return tag.Int64(i)
		})
	case tiff.RatVal:
		return collect(tag, func(i int) (any, error) {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return nil, err
			}
			if den == 0 {
				return fmt.Sprintf("%d/%d", num, den), nil
			}
			return float64(num) / float64(den), nil
		})
	case tiff.FloatVal:
		return collect(tag, func(i int) (any, error) {
			f, err := tag.Float(i)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return strconv.FormatFloat(f, 'g', -1, 64), nil
			}
			return f, nil
		})
	}
	return tag.String()
}

func collect(tag *tiff.Tag, at func(i int) (any, error)) any {
	n := int(tag.Count)
	if n == 1 {
		v, err := at(0)
		if err != nil {
			return tag.String()
		}
		return v
	}
	values := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := at(i)
		if err != nil {
			return tag.String()
		}
		values = append(values, v)
	}
	return values
}
