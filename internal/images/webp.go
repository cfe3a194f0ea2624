package images

import "encoding/binary"

// readWebPExif returns the payload of the EXIF chunk of a RIFF WebP file.
func readWebPExif(data []byte) []byte {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil
	}
	pos := 12
	for pos+8 <= len(data) {
		kind := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4:]))
		start := pos + 8
		end := start + size
		if end > len(data) {
			return nil
		}
		if kind == "EXIF" {
			return data[start:end]
		}
		pos = end + size%2
	}
	return nil
}
