package images

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	markerSOI   = 0xd8
	markerSOS   = 0xda
	markerEOI   = 0xd9
	markerAPP0  = 0xe0
	markerAPP1  = 0xe1
	markerAPP14 = 0xee
	markerCOM   = 0xfe
)

var exifHeader = []byte("Exif\x00\x00")

// readJPEG walks the marker segments up to the start of scan.
func readJPEG(data []byte) (*container, error) {
	if len(data) < 2 || data[0] != 0xff || data[1] != markerSOI {
		return nil, fmt.Errorf("not a JPEG file")
	}

	c := &container{}
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xff {
			return nil, fmt.Errorf("invalid JPEG marker at offset %d", pos)
		}
		marker := data[pos+1]
		if marker == 0xff {
			pos++
			continue
		}
		// Standalone markers carry no length.
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			pos += 2
			continue
		}
		if marker == markerSOS || marker == markerEOI {
			break
		}

		length := int(binary.BigEndian.Uint16(data[pos+2:]))
		start := pos + 4
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			return nil, fmt.Errorf("truncated JPEG segment 0x%02x", marker)
		}
		segment := data[start:end]
		pos = end

		switch {
		case marker == markerAPP0 && bytes.HasPrefix(segment, []byte("JFIF\x00")) && len(segment) >= 12:
			c.readJFIF(segment)
		case marker == markerAPP1 && bytes.HasPrefix(segment, exifHeader) && c.exif == nil:
			c.exif = segment
		case marker == markerAPP14 && bytes.HasPrefix(segment, []byte("Adobe")) && len(segment) >= 12:
			c.add("adobe", int64(binary.BigEndian.Uint16(segment[5:7])))
			c.add("adobe_transform", int64(segment[11]))
		case marker == markerCOM:
			c.add("comment", append([]byte(nil), segment...))
		case isProgressiveSOF(marker):
			c.add("progressive", int64(1))
			c.add("progression", int64(1))
		}
	}

	return c, nil
}

func (c *container) readJFIF(segment []byte) {
	major, minor := segment[5], segment[6]
	unit := segment[7]
	x := int64(binary.BigEndian.Uint16(segment[8:10]))
	y := int64(binary.BigEndian.Uint16(segment[10:12]))

	c.add("jfif", int64(major)<<8|int64(minor))
	c.add("jfif_version", []any{int64(major), int64(minor)})
	c.add("jfif_unit", int64(unit))
	c.add("jfif_density", []any{x, y})
	switch unit {
	case 1:
		c.add("dpi", []any{x, y})
	case 2:
		c.add("dpi", []any{float64(x) * 2.54, float64(y) * 2.54})
	}
}

func isProgressiveSOF(marker byte) bool {
	switch marker {
	case 0xc2, 0xc6, 0xca, 0xce:
		return true
	}
	return false
}
