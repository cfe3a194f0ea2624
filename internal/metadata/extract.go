package metadata

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// generatorKeys are info keys written by image generators. Their values are
// kept exactly as stored.
var generatorKeys = map[string]bool{
	"parameters":      true,
	"prompt":          true,
	"negative_prompt": true,
	"seed":            true,
	"model":           true,
	"pipeline":        true,
	"steps":           true,
	"cfg_scale":       true,
	"sampler":         true,
}

// Image describes a decoded image file as seen by the extractor.
type Image struct {
	Format string
	Mode   string
	Width  int
	Height int
	// Info holds container-level entries in the order they appear in the file.
	Info []InfoEntry
	Exif []ExifTag
}

// InfoEntry is one key/value pair from the image container (PNG text chunk,
// JFIF header field, GIF extension, ...).
type InfoEntry struct {
	Key   string
	Value any
}

// ExifTag is a single EXIF field. Name is empty when the tag id is unknown.
// Value holds []byte for undefined/byte-string tags.
type ExifTag struct {
	ID    uint16
	Name  string
	Value any
}

// Decoder turns a stored file into an Image.
type Decoder interface {
	Decode(path string) (*Image, error)
}

// Extract builds the metadata map for img.
func Extract(img *Image) Map {
	metadata := Map{}
	if img == nil {
		return metadata
	}

	metadata["format"] = img.Format
	metadata["mode"] = img.Mode
	metadata["size"] = fmt.Sprintf("%dx%d", img.Width, img.Height)

	for _, entry := range img.Info {
		if generatorKeys[strings.ToLower(entry.Key)] {
			metadata[entry.Key] = entry.Value
			continue
		}
		if s, ok := entry.Value.(string); ok && LooksLikeJSON(s) {
			if parsed, ok := TryParse(s); ok {
				metadata[entry.Key] = parsed
				continue
			}
		}
		if b, ok := entry.Value.([]byte); ok {
			metadata[entry.Key] = decodeBytes(b)
			continue
		}
		metadata[entry.Key] = entry.Value
	}

	for _, tag := range img.Exif {
		name := tag.Name
		if name == "" {
			name = strconv.Itoa(int(tag.ID))
		}
		value := tag.Value
		if b, ok := value.([]byte); ok {
			value = decodeBytes(b)
		}
		metadata["EXIF_"+name] = value
	}

	return metadata
}

// decodeBytes returns b as text, or as a b'...' literal when b is not valid
// UTF-8.
func decodeBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return bytesLiteral(b)
}

// bytesLiteral quotes b the way byte strings are conventionally shown:
// single quotes unless b holds a single quote and no double quote, \t \n
// \r escapes, and \xhh for other bytes outside printable ASCII.
func bytesLiteral(b []byte) string {
	quote := byte('\'')
	if bytes.IndexByte(b, '\'') >= 0 && bytes.IndexByte(b, '"') < 0 {
		quote = '"'
	}

	var sb strings.Builder
	sb.WriteByte('b')
	sb.WriteByte(quote)
	for _, c := range b {
		switch {
		case c == quote || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, c)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

// Extractor reads files through a Decoder and never fails: any error is
// logged and produces an empty map.
type Extractor struct {
	decoder   Decoder
	onFailure func(path string, err error)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFailureHook registers fn to be called whenever a file cannot be read.
func WithFailureHook(fn func(path string, err error)) Option {
	return func(e *Extractor) {
		e.onFailure = fn
	}
}

// NewExtractor creates an extractor backed by decoder.
func NewExtractor(decoder Decoder, opts ...Option) *Extractor {
	e := &Extractor{decoder: decoder}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractFile decodes the file at path and returns its metadata.
func (e *Extractor) ExtractFile(path string) (metadata Map) {
	defer func() {
		if r := recover(); r != nil {
			e.fail(path, fmt.Errorf("panic while reading metadata: %v", r))
			metadata = Map{}
		}
	}()

	img, err := e.decoder.Decode(path)
	if err != nil {
		e.fail(path, err)
		return Map{}
	}

	return Extract(img)
}

func (e *Extractor) fail(path string, err error) {
	slog.Error("Error reading metadata", "path", path, "err", err)
	if e.onFailure != nil {
		e.onFailure(path, err)
	}
}
