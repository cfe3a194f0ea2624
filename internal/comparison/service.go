package comparison

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/metadiff/internal/diff"
	"github.com/lehigh-university-libraries/metadiff/internal/metadata"
	"github.com/lehigh-university-libraries/metadiff/internal/uploads"
)

// Extractor produces the metadata map of a stored file.
type Extractor interface {
	ExtractFile(path string) metadata.Map
}

// Result is the comparison of two images' metadata.
type Result struct {
	Image1 string       `json:"image1" yaml:"image1"`
	Image2 string       `json:"image2" yaml:"image2"`
	Diff   diff.Result  `json:"-" yaml:"-"`
	Groups []diff.Group `json:"groups" yaml:"groups"`
}

// Empty reports whether the two images have identical metadata.
func (r *Result) Empty() bool {
	return len(r.Diff) == 0
}

// Service compares image metadata.
type Service struct {
	extractor Extractor
	observe   func(*Result)
}

// NewService creates a comparison service. observe, when non-nil, is called
// with every completed comparison.
func NewService(extractor Extractor, observe func(*Result)) *Service {
	return &Service{
		extractor: extractor,
		observe:   observe,
	}
}

// CompareSession compares the first two files of the session. It returns nil
// when fewer than two files were uploaded or either file has gone missing.
func (s *Service) CompareSession(session uploads.Session) *Result {
	if len(session.Files) < 2 {
		return nil
	}
	path1, path2 := session.Path(0), session.Path(1)
	for _, p := range []string{path1, path2} {
		if _, err := os.Stat(p); err != nil {
			slog.Warn("Skipping comparison, upload missing", "path", p, "err", err)
			return nil
		}
	}
	return s.CompareFiles(path1, path2)
}

// CompareFiles extracts metadata from both files and diffs it. Unreadable
// files contribute an empty map.
func (s *Service) CompareFiles(path1, path2 string) *Result {
	m1 := s.extractor.ExtractFile(path1)
	m2 := s.extractor.ExtractFile(path2)

	d := diff.Compare(m1, m2)
	result := &Result{
		Image1: filepath.Base(path1),
		Image2: filepath.Base(path2),
		Diff:   d,
		Groups: diff.GroupByCategory(d),
	}

	slog.Info("Metadata compared", "image1", result.Image1, "image2", result.Image2, "differences", len(d))
	if s.observe != nil {
		s.observe(result)
	}
	return result
}
