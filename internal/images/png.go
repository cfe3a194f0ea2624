package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding/charmap"

	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// maxTextChunk caps the decompressed size of a zTXt or iTXt chunk.
const maxTextChunk = 1 << 20

var errTextChunkTooLarge = errors.New("decompressed text chunk too large")

// container is what the format readers pull out of a file besides pixels.
type container struct {
	mode string
	info []metadata.InfoEntry
	exif []byte
}

// readPNG walks the chunk list. A truncated trailing chunk ends the walk
// without error.
func readPNG(data []byte) (*container, error) {
	if !bytes.HasPrefix(data, []byte(pngSignature)) {
		return nil, fmt.Errorf("not a PNG file")
	}

	c := &container{}
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos:]))
		kind := string(data[pos+4 : pos+8])
		start := pos + 8
		end := start + length
		if length < 0 || end+4 > len(data) {
			break
		}
		chunk := data[start:end]
		pos = end + 4

		switch kind {
		case "IHDR":
			if len(chunk) < 10 {
				return nil, fmt.Errorf("invalid IHDR chunk")
			}
			c.mode = pngMode(chunk[9], chunk[8])
		case "tEXt":
			key, value, ok := strings.Cut(string(chunk), "\x00")
			if ok {
				c.add(key, latin1(value))
			}
		case "zTXt":
			key, rest, ok := strings.Cut(string(chunk), "\x00")
			if !ok || len(rest) < 1 {
				continue
			}
			text, err := inflate([]byte(rest[1:]))
			if errors.Is(err, errTextChunkTooLarge) {
				return nil, fmt.Errorf("zTXt chunk %q: %w", key, err)
			}
			if err != nil {
				continue
			}
			c.add(key, latin1(string(text)))
		case "iTXt":
			key, text, ok, err := parseITXt(chunk)
			if err != nil {
				return nil, fmt.Errorf("iTXt chunk %q: %w", key, err)
			}
			if ok {
				c.add(key, text)
			}
		case "gAMA":
			if len(chunk) == 4 {
				c.add("gamma", float64(binary.BigEndian.Uint32(chunk))/100000.0)
			}
		case "pHYs":
			if len(chunk) == 9 && chunk[8] == 1 {
				x := float64(binary.BigEndian.Uint32(chunk[0:4]))
				y := float64(binary.BigEndian.Uint32(chunk[4:8]))
				c.add("dpi", []any{x * 0.0254, y * 0.0254})
			}
		case "eXIf":
			c.exif = chunk
		case "IEND":
			return c, nil
		}
	}

	return c, nil
}

func (c *container) add(key string, value any) {
	c.info = append(c.info, metadata.InfoEntry{Key: key, Value: value})
}

// parseITXt splits an international text chunk:
// keyword NUL flag method language NUL translated-keyword NUL text.
// Malformed chunks are skipped; only an oversized payload is an error.
func parseITXt(chunk []byte) (string, string, bool, error) {
	key, rest, ok := bytes.Cut(chunk, []byte{0})
	if !ok || len(rest) < 2 {
		return "", "", false, nil
	}
	compressed := rest[0] == 1
	rest = rest[2:]
	_, rest, ok = bytes.Cut(rest, []byte{0})
	if !ok {
		return "", "", false, nil
	}
	_, text, ok := bytes.Cut(rest, []byte{0})
	if !ok {
		return "", "", false, nil
	}
	if compressed {
		inflated, err := inflate(text)
		if errors.Is(err, errTextChunkTooLarge) {
			return string(key), "", false, err
		}
		if err != nil {
			return "", "", false, nil
		}
		text = inflated
	}
	return string(key), string(text), true, nil
}

// inflate decompresses a zlib stream of at most maxTextChunk bytes.
func inflate(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, maxTextChunk+1))
	if err != nil {
		return nil, err
	}
	if len(out) > maxTextChunk {
		return nil, errTextChunkTooLarge
	}
	return out, nil
}

// latin1 converts ISO-8859-1 text, the encoding of tEXt and zTXt chunks.
func latin1(s string) string {
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

func pngMode(colorType, bitDepth byte) string {
	switch colorType {
	case 0:
		switch bitDepth {
		case 1:
			return "1"
		case 16:
			return "I;16"
		}
		return "L"
	case 2:
		return "RGB"
	case 3:
		return "P"
	case 4:
		return "LA"
	case 6:
		return "RGBA"
	}
	return "RGB"
}
