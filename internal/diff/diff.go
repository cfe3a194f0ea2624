// Package diff computes structural differences between two metadata maps.
//
// String values holding JSON are decoded at every level before comparison,
// so a parameter blob stored as text is compared field by field instead of
// as one opaque string.
package diff

import (
	"fmt"
	"sort"

	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
)

// Pair holds the differing values found at one path.
type Pair struct {
	Image1 any `json:"image1" yaml:"image1"`
	Image2 any `json:"image2" yaml:"image2"`
}

// Result maps a path ("a.b[2].c") to the pair of values that differ there.
type Result map[string]Pair

// Paths returns the result's paths in lexical order.
func (r Result) Paths() []string {
	paths := make([]string, 0, len(r))
	for p := range r {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Compare walks a and b depth-first and reports every leaf that differs.
// Sequences are compared up to the shorter length; trailing elements of the
// longer one are not reported.
func Compare(a, b any) Result {
	result := Result{}
	compare(a, b, "", result)
	return result
}

func compare(a, b any, path string, out Result) {
	a = metadata.Normalize(a)
	b = metadata.Normalize(b)

	if am, ok := metadata.AsMap(a); ok {
		bm, ok := metadata.AsMap(b)
		if !ok {
			return
		}
		for _, key := range unionKeys(am, bm) {
			child := key
			if path != "" {
				child = path + "." + key
			}
			visit(am[key], bm[key], child, out)
		}
		return
	}

	if as, ok := metadata.AsSlice(a); ok {
		bs, ok := metadata.AsSlice(b)
		if !ok {
			return
		}
		n := min(len(as), len(bs))
		for i := 0; i < n; i++ {
			visit(as[i], bs[i], fmt.Sprintf("%s[%d]", path, i), out)
		}
	}
}

// visit handles one pair of child values: equal values are skipped,
// container pairs are walked, everything else is recorded as a leaf.
func visit(a, b any, path string, out Result) {
	a = metadata.Normalize(a)
	b = metadata.Normalize(b)

	if metadata.Equal(a, b) {
		return
	}

	if descend(a, b) {
		compare(a, b, path, out)
		return
	}

	out[path] = Pair{
		Image1: metadata.Primitive(a),
		Image2: metadata.Primitive(b),
	}
}

// descend reports whether a and b should be compared element-wise rather
// than recorded as a single difference.
func descend(a, b any) bool {
	if metadata.IsContainer(a) && metadata.IsContainer(b) {
		return true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	return aok && bok && metadata.LooksLikeJSON(as) && metadata.LooksLikeJSON(bs)
}

func unionKeys(a, b map[string]any) []string {
	keys := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
