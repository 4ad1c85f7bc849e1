package conversion

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Scratch hands out request-unique files and directories under one root.
// Names carry a random uuid so concurrent uploads sharing a filename never collide.
type Scratch struct {
	root   string
	logger *slog.Logger
}

// NewScratch creates the scratch root if needed.
func NewScratch(root string, logger *slog.Logger) (*Scratch, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}
	return &Scratch{root: root, logger: logger}, nil
}

// Root returns the scratch root directory.
func (s *Scratch) Root() string {
	return s.root
}

// Materialize writes content to <root>/<uuid>_<basename>.
// The caller must Release the returned file.
func (s *Scratch) Materialize(filename string, content []byte) (*ScratchFile, error) {
	p := filepath.Join(s.root, uuid.NewString()+"_"+safeBase(filename))
	if err := os.WriteFile(p, content, 0o600); err != nil {
		// a partial write may have left the file behind
		s.remove(p)
		return nil, fmt.Errorf("materialize upload: %w", err)
	}
	return &ScratchFile{Path: p, scratch: s}, nil
}

// MkdirTemp creates a fresh uuid-named directory for an archive expansion.
func (s *Scratch) MkdirTemp() (string, error) {
	dir := filepath.Join(s.root, "x_"+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", fmt.Errorf("create scratch namespace: %w", err)
	}
	return dir, nil
}

// remove deletes p recursively. Failures are logged, never returned.
func (s *Scratch) remove(p string) {
	if err := os.RemoveAll(p); err != nil {
		s.logger.Warn("failed to release scratch", "path", p, "error", err)
	}
}

// ScratchFile is one materialized upload.
type ScratchFile struct {
	Path    string
	scratch *Scratch
	once    sync.Once
}

// Release removes the file. Safe to call more than once.
func (f *ScratchFile) Release() {
	f.once.Do(func() { f.scratch.remove(f.Path) })
}

// safeBase reduces a client-declared filename to a plain base name.
func safeBase(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == ".." || base == "/" {
		return "upload"
	}
	return base
}
