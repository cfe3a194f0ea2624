package uploads

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions are the accepted upload types.
var AllowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

	windowsDeviceNames = map[string]bool{
		"CON": true, "AUX": true, "COM1": true, "COM2": true, "COM3": true, "COM4": true,
		"LPT1": true, "LPT2": true, "LPT3": true, "PRN": true, "NUL": true,
	}
)

// AllowedFile reports whether name carries one of the allowed extensions.
func AllowedFile(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	return AllowedExtensions[strings.ToLower(ext[1:])]
}

// SecureFilename reduces name to a flat ASCII filename safe to store:
// separators become spaces, runs of whitespace become underscores and
// anything outside [A-Za-z0-9_.-] is dropped. It may return "".
func SecureFilename(name string) string {
	name = toASCII(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if name != "" && windowsDeviceNames[strings.ToUpper(strings.SplitN(name, ".", 2)[0])] {
		name = "_" + name
	}
	return name
}

// toASCII strips diacritics by decomposing and dropping non-ASCII runes.
func toASCII(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
