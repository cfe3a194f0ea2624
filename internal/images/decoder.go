// Package images decodes stored image files into the descriptor used by the
// metadata extractor: format, colour mode, dimensions, container info
// entries and EXIF tags.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

// Decoder reads image files from disk.
type Decoder struct{}

// NewDecoder creates a new image decoder
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode reads the file at path and describes it.
func (d *Decoder) Decode(path string) (*metadata.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes describes an in-memory image file.
func DecodeBytes(data []byte) (*metadata.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image config: %w", err)
	}

	img := &metadata.Image{
		Format: strings.ToUpper(format),
		Mode:   modeFromModel(cfg.ColorModel),
		Width:  cfg.Width,
		Height: cfg.Height,
	}

	var rawExif []byte
	switch format {
	case "png":
		c, err := readPNG(data)
		if err != nil {
			return nil, err
		}
		img.Mode = c.mode
		img.Info = c.info
		rawExif = c.exif
	case "jpeg":
		c, err := readJPEG(data)
		if err != nil {
			return nil, err
		}
		img.Info = c.info
		rawExif = c.exif
	case "gif":
		info, err := readGIF(data)
		if err != nil {
			return nil, err
		}
		img.Mode = "P"
		img.Info = info
	case "webp":
		rawExif = readWebPExif(data)
	case "tiff":
		rawExif = data
	}

	if len(rawExif) > 0 {
		tags, err := readExif(rawExif)
		if err != nil {
			return nil, err
		}
		img.Exif = tags
	}

	return img, nil
}

// modeFromModel names a colour model the way image tools usually report it.
func modeFromModel(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.YCbCrModel:
		return "RGB"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.NYCbCrAModel, color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model:
		return "RGBA"
	}
	return "RGB"
}
