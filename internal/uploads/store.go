package uploads

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MaxFiles is the number of files kept per upload cycle.
const MaxFiles = 4

// Session is the set of files from the most recent upload cycle.
type Session struct {
	ID    string   `json:"id"`
	Dir   string   `json:"dir"`
	Files []string `json:"files"`
}

// Path returns the stored location of the i-th file.
func (s Session) Path(i int) string {
	return filepath.Join(s.Dir, s.Files[i])
}

// File is one incoming upload.
type File struct {
	Name string
	Body io.Reader
}

// Store owns the upload directory. Every Replace discards the previous set.
type Store struct {
	dir     string
	current *Session
	mu      sync.RWMutex
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// Replace clears the directory and stores up to MaxFiles allowed files under
// sanitized names. Files with a disallowed extension or a name that
// sanitizes to nothing are skipped.
func (s *Store) Replace(files []File) (Session, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return Session{}, nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := s.clear(); err != nil {
		return Session{}, nil, err
	}

	session := Session{ID: uuid.NewString(), Dir: s.dir}
	var rejected []string
	if len(files) > MaxFiles {
		files = files[:MaxFiles]
	}
	for _, f := range files {
		if !AllowedFile(f.Name) {
			rejected = append(rejected, f.Name)
			continue
		}
		name := SecureFilename(f.Name)
		if name == "" {
			rejected = append(rejected, f.Name)
			continue
		}
		if err := s.save(name, f.Body); err != nil {
			return Session{}, nil, err
		}
		session.Files = appendUnique(session.Files, name)
	}

	s.current = &session
	slog.Info("Upload set replaced", "session_id", session.ID, "files", len(session.Files), "rejected", len(rejected))
	return session, rejected, nil
}

// Current returns the active upload session. After a restart it is rebuilt
// from the directory contents.
func (s *Store) Current() Session {
	s.mu.RLock()
	if s.current != nil {
		defer s.mu.RUnlock()
		return *s.current
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return *s.current
	}

	session := Session{ID: uuid.NewString(), Dir: s.dir}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Unable to list upload directory", "dir", s.dir, "err", err)
		}
		return session
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) > MaxFiles {
		names = names[:MaxFiles]
	}
	session.Files = names
	s.current = &session
	return session
}

// Open returns the stored file called name. Only names of the current
// session are served.
func (s *Store) Open(name string) (*os.File, error) {
	for _, f := range s.Current().Files {
		if f == name {
			return os.Open(filepath.Join(s.dir, name))
		}
	}
	return nil, os.ErrNotExist
}

func (s *Store) clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to list upload directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove previous upload: %w", err)
		}
	}
	s.current = nil
	return nil
}

func (s *Store) save(name string, body io.Reader) error {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return nil
}

func appendUnique(list []string, name string) []string {
	for _, n := range list {
		if n == name {
			return list
		}
	}
	return append(list, name)
}
