package images

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

func encodePNG(t *testing.T, img image.Image, chunks ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	data := buf.Bytes()

	// signature + IHDR chunk
	ihdrEnd := 8 + 8 + 13 + 4
	out := append([]byte(nil), data[:ihdrEnd]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return append(out, data[ihdrEnd:]...)
}

func pngChunk(kind string, payload []byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.WriteString(kind)
	buf.Write(payload)
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(payload)
	_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func textChunk(key, value string) []byte {
	return pngChunk("tEXt", []byte(key+"\x00"+value))
}

func deflate(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// tiffBlock builds a little-endian TIFF structure with a single IFD holding
// Make and Orientation.
func tiffBlock() []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("II*\x00")
	_ = binary.Write(&buf, le, uint32(8))
	_ = binary.Write(&buf, le, uint16(2))
	// Make, ASCII, 5 bytes at offset 38
	_ = binary.Write(&buf, le, uint16(0x010f))
	_ = binary.Write(&buf, le, uint16(2))
	_ = binary.Write(&buf, le, uint32(5))
	_ = binary.Write(&buf, le, uint32(38))
	// Orientation, SHORT, inline value 6
	_ = binary.Write(&buf, le, uint16(0x0112))
	_ = binary.Write(&buf, le, uint16(3))
	_ = binary.Write(&buf, le, uint32(1))
	_ = binary.Write(&buf, le, uint16(6))
	_ = binary.Write(&buf, le, uint16(0))
	_ = binary.Write(&buf, le, uint32(0))
	buf.WriteString("Test\x00")
	return buf.Bytes()
}

// doubleTIFF builds a TIFF structure whose only tag is XResolution stored as
// a DOUBLE holding v.
func doubleTIFF(v float64) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("II*\x00")
	_ = binary.Write(&buf, le, uint32(8))
	_ = binary.Write(&buf, le, uint16(1))
	_ = binary.Write(&buf, le, uint16(0x011a))
	_ = binary.Write(&buf, le, uint16(12))
	_ = binary.Write(&buf, le, uint32(1))
	_ = binary.Write(&buf, le, uint32(26))
	_ = binary.Write(&buf, le, uint32(0))
	_ = binary.Write(&buf, le, math.Float64bits(v))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image, segments ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	data := buf.Bytes()

	out := append([]byte(nil), data[:2]...)
	for _, s := range segments {
		out = append(out, s...)
	}
	return append(out, data[2:]...)
}

func jpegSegment(marker byte, payload []byte) []byte {
	seg := []byte{0xff, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDecodeMinimalPNG(t *testing.T) {
	path := writeFile(t, "min.png", encodePNG(t, image.NewGray(image.Rect(0, 0, 3, 2))))

	img, err := NewDecoder().Decode(path)
	require.NoError(t, err)

	assert.Equal(t, metadata.Map{"format": "PNG", "mode": "L", "size": "3x2"}, metadata.Extract(img))
}

func TestDecodePNGTextChunks(t *testing.T) {
	itxt := append([]byte("workflow\x00\x01\x00en\x00\x00"), deflate(t, `{"nodes": []}`)...)
	data := encodePNG(t, image.NewNRGBA(image.Rect(0, 0, 4, 4)),
		textChunk("parameters", "a photo of a cat\nSteps: 20, Seed: 1"),
		pngChunk("zTXt", append([]byte("Comment\x00\x00"), deflate(t, "caf\xe9")...)),
		pngChunk("iTXt", itxt),
		pngChunk("gAMA", []byte{0, 0, 0xb1, 0x8f}),
	)

	img, err := DecodeBytes(data)
	require.NoError(t, err)

	assert.Equal(t, "PNG", img.Format)
	assert.Equal(t, "RGBA", img.Mode)
	assert.Equal(t, []metadata.InfoEntry{
		{Key: "parameters", Value: "a photo of a cat\nSteps: 20, Seed: 1"},
		{Key: "Comment", Value: "café"},
		{Key: "workflow", Value: `{"nodes": []}`},
		{Key: "gamma", Value: 0.45455},
	}, img.Info)
	assert.Empty(t, img.Exif)
}

func TestDecodePNGExifChunk(t *testing.T) {
	data := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 2, 2)), pngChunk("eXIf", tiffBlock()))

	img, err := DecodeBytes(data)
	require.NoError(t, err)

	got := metadata.Extract(img)
	assert.Equal(t, "Test", got["EXIF_Make"])
	assert.Equal(t, int64(6), got["EXIF_Orientation"])
}

func TestDecodePNGOversizedTextChunk(t *testing.T) {
	bomb := deflate(t, strings.Repeat("a", maxTextChunk+1))
	itxt := append([]byte("workflow\x00\x01\x00\x00\x00"), bomb...)

	tests := []struct {
		name  string
		chunk []byte
	}{
		{name: "zTXt", chunk: pngChunk("zTXt", append([]byte("Comment\x00\x00"), bomb...))},
		{name: "iTXt", chunk: pngChunk("iTXt", itxt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodePNG(t, image.NewGray(image.Rect(0, 0, 1, 1)), tt.chunk)

			_, err := DecodeBytes(data)
			assert.ErrorIs(t, err, errTextChunkTooLarge)

			path := writeFile(t, "bomb.png", data)
			assert.Empty(t, metadata.NewExtractor(NewDecoder()).ExtractFile(path))
		})
	}
}

func TestDecodePNGTextChunkAtLimit(t *testing.T) {
	text := strings.Repeat("a", maxTextChunk)
	data := encodePNG(t, image.NewGray(image.Rect(0, 0, 1, 1)),
		pngChunk("zTXt", append([]byte("Comment\x00\x00"), deflate(t, text)...)),
	)

	img, err := DecodeBytes(data)
	require.NoError(t, err)
	require.Len(t, img.Info, 1)
	assert.Len(t, img.Info[0].Value, maxTextChunk)
}

func TestLatin1(t *testing.T) {
	assert.Equal(t, "café", latin1("caf\xe9"))
	assert.Equal(t, "plain", latin1("plain"))
}

func TestExifNonFiniteFloats(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected any
	}{
		{name: "finite", value: 72.5, expected: 72.5},
		{name: "NaN", value: math.NaN(), expected: "NaN"},
		{name: "positive infinity", value: math.Inf(1), expected: "+Inf"},
		{name: "negative infinity", value: math.Inf(-1), expected: "-Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, err := readExif(doubleTIFF(tt.value))
			require.NoError(t, err)
			require.Len(t, tags, 1)
			assert.Equal(t, tt.expected, tags[0].Value)

			_, err = json.Marshal(metadata.Extract(&metadata.Image{Exif: tags}))
			assert.NoError(t, err)
		})
	}
}

func TestDecodeJPEG(t *testing.T) {
	jfif := []byte{'J', 'F', 'I', 'F', 0, 1, 2, 1, 0, 72, 0, 72, 0, 0}
	data := encodeJPEG(t, image.NewRGBA(image.Rect(0, 0, 16, 8)),
		jpegSegment(markerAPP0, jfif),
		jpegSegment(markerAPP1, append(append([]byte(nil), exifHeader...), tiffBlock()...)),
		jpegSegment(markerCOM, []byte("generated")),
	)

	img, err := DecodeBytes(data)
	require.NoError(t, err)

	got := metadata.Extract(img)
	assert.Equal(t, "JPEG", got["format"])
	assert.Equal(t, "RGB", got["mode"])
	assert.Equal(t, "16x8", got["size"])
	assert.Equal(t, int64(0x0102), got["jfif"])
	assert.Equal(t, []any{int64(72), int64(72)}, got["dpi"])
	assert.Equal(t, "generated", got["comment"])
	assert.Equal(t, "Test", got["EXIF_Make"])
	assert.Equal(t, int64(6), got["EXIF_Orientation"])
}

func TestDecodeJPEGCorruptExif(t *testing.T) {
	data := encodeJPEG(t, image.NewGray(image.Rect(0, 0, 8, 8)),
		jpegSegment(markerAPP1, append(append([]byte(nil), exifHeader...), []byte("garbage!")...)),
	)

	_, err := DecodeBytes(data)
	assert.Error(t, err)
}

func TestDecodeGIF(t *testing.T) {
	palette := color.Palette{color.Black, color.White}
	frame := image.NewPaletted(image.Rect(0, 0, 5, 6), palette)
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image:     []*image.Paletted{frame, frame},
		Delay:     []int{7, 7},
		LoopCount: 0,
	}))

	img, err := DecodeBytes(buf.Bytes())
	require.NoError(t, err)

	got := metadata.Extract(img)
	assert.Equal(t, "GIF", got["format"])
	assert.Equal(t, "P", got["mode"])
	assert.Equal(t, "5x6", got["size"])
	assert.Equal(t, "GIF89a", got["version"])
	assert.Equal(t, int64(0), got["loop"])
	assert.Equal(t, int64(70), got["duration"])
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.png") },
		},
		{
			name: "not an image",
			path: func(t *testing.T) string { return writeFile(t, "fake.png", []byte("hello")) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder().Decode(tt.path(t))
			assert.Error(t, err)

			extractor := metadata.NewExtractor(NewDecoder())
			assert.Empty(t, extractor.ExtractFile(tt.path(t)))
		})
	}
}

func TestReadWebPExif(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.WriteString("WEBP")
	buf.WriteString("VP8X")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(3))
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteString("EXIF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(4))
	buf.WriteString("II*\x00")

	assert.Equal(t, []byte("II*\x00"), readWebPExif(buf.Bytes()))
	assert.Nil(t, readWebPExif([]byte("RIFF")))
}

func TestModeFromModel(t *testing.T) {
	assert.Equal(t, "RGB", modeFromModel(color.YCbCrModel))
	assert.Equal(t, "L", modeFromModel(color.GrayModel))
	assert.Equal(t, "CMYK", modeFromModel(color.CMYKModel))
	assert.Equal(t, "P", modeFromModel(color.Palette{color.Black}))
	assert.Equal(t, "RGBA", modeFromModel(color.NRGBAModel))
}
