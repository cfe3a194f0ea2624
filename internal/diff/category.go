package diff

import "strings"

// Category is the display grouping of a diff path.
type Category string

const (
	CategoryBasic Category = "Basic Info"
	CategoryAI    Category = "AI Parameters"
	CategoryEXIF  Category = "EXIF Data"
	CategoryOther Category = "Other Metadata"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBasic, CategoryAI, CategoryEXIF, CategoryOther}

// Classify assigns a category to path. Rules are checked in order and the
// first match wins.
func Classify(path string) Category {
	if strings.HasPrefix(path, "EXIF") {
		return CategoryEXIF
	}
	switch path {
	case "format", "mode", "size":
		return CategoryBasic
	}
	lower := strings.ToLower(path)
	for _, marker := range []string{"parameters", "prompt", "model"} {
		if strings.Contains(lower, marker) {
			return CategoryAI
		}
	}
	return CategoryOther
}

// Entry is a single difference with its path.
type Entry struct {
	Path string `json:"path" yaml:"path"`
	Pair `yaml:",inline"`
}

// Group collects the entries of one category, sorted by path.
type Group struct {
	Category Category `json:"category" yaml:"category"`
	Entries  []Entry  `json:"entries" yaml:"entries"`
}

// GroupByCategory splits r into groups in display order. Categories without
// entries are omitted.
func GroupByCategory(r Result) []Group {
	byCategory := make(map[Category][]Entry)
	for _, path := range r.Paths() {
		c := Classify(path)
		byCategory[c] = append(byCategory[c], Entry{Path: path, Pair: r[path]})
	}

	groups := make([]Group, 0, len(byCategory))
	for _, c := range Categories {
		if entries, ok := byCategory[c]; ok {
			groups = append(groups, Group{Category: c, Entries: entries})
		}
	}
	return groups
}
