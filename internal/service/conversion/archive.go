package conversion

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"mdconv/internal/config"
	"mdconv/internal/domain"
	"mdconv/internal/formats"
)

// Entry is one extracted archive member that passed the format registry.
type Entry struct {
	RelPath string // forward-slash path inside the archive
	Path    string // location in the scratch namespace
}

// ExpanderConfig bounds what a single archive may unpack to.
type ExpanderConfig struct {
	MaxExtractedBytes int64
	MaxEntries        int
}

// Expander unpacks zip archives into isolated scratch namespaces.
type Expander struct {
	scratch  *Scratch
	registry *formats.Registry
	cfg      ExpanderConfig
}

// NewExpander creates an archive expander. Zero limits take the defaults.
func NewExpander(scratch *Scratch, registry *formats.Registry, cfg ExpanderConfig) *Expander {
	if cfg.MaxExtractedBytes <= 0 {
		cfg.MaxExtractedBytes = config.DefaultMaxExtractedBytes
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = config.DefaultMaxArchiveEntries
	}
	return &Expander{
		scratch:  scratch,
		registry: registry,
		cfg:      cfg,
	}
}

// Budget is the decompressed byte allowance shared by an upload and every
// archive nested in it. Safe for concurrent use.
type Budget struct {
	remaining atomic.Int64
}

// NewBudget returns a budget holding the configured extracted-bytes limit.
func (e *Expander) NewBudget() *Budget {
	b := &Budget{}
	b.remaining.Store(e.cfg.MaxExtractedBytes)
	return b
}

// Remaining reports the bytes still allowed.
func (b *Budget) Remaining() int64 {
	return b.remaining.Load()
}

var errBudgetExceeded = errors.New("archive exceeds the extracted size limit")

// budgetWriter charges every write against a Budget and fails once it is spent.
type budgetWriter struct {
	w      io.Writer
	budget *Budget
}

func (bw budgetWriter) Write(p []byte) (int, error) {
	if bw.budget.remaining.Add(-int64(len(p))) < 0 {
		return 0, errBudgetExceeded
	}
	return bw.w.Write(p)
}

// Expand fully decompresses the archive at archivePath into a new namespace,
// charging the bytes written to budget. A nil budget starts a fresh one.
// A corrupt, oversized or unsafe archive fails with *domain.ArchiveError and
// leaves nothing behind. On success the caller must Close the expansion.
func (e *Expander) Expand(ctx context.Context, archivePath string, budget *Budget) (_ *Expansion, err error) {
	if budget == nil {
		budget = e.NewBudget()
	}

	dir, err := e.scratch.MkdirTemp()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			e.scratch.remove(dir)
		}
	}()

	zr, err := zip.OpenReader(archivePath)
	if zr != nil {
		defer zr.Close()
	}
	if err != nil {
		return nil, &domain.ArchiveError{Err: err}
	}

	if len(zr.File) > e.cfg.MaxEntries {
		return nil, &domain.ArchiveError{
			Err: fmt.Errorf("archive has %d entries, limit is %d", len(zr.File), e.cfg.MaxEntries),
		}
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := extractEntry(dir, f, budget); err != nil {
			return nil, &domain.ArchiveError{Err: err}
		}
	}

	return &Expansion{dir: dir, registry: e.registry, scratch: e.scratch}, nil
}

// extractEntry writes one member below dir, charging it to budget.
// Symlinks and other special members are skipped.
func extractEntry(dir string, f *zip.File, budget *Budget) error {
	if !filepath.IsLocal(filepath.FromSlash(f.Name)) {
		return fmt.Errorf("entry %q escapes the archive root", f.Name)
	}
	target := filepath.Join(dir, filepath.FromSlash(f.Name))

	mode := f.Mode()
	switch {
	case mode.IsDir():
		return os.MkdirAll(target, 0o700)
	case !mode.IsRegular():
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(budgetWriter{w: out, budget: budget}, rc); err != nil {
		if errors.Is(err, errBudgetExceeded) {
			return err
		}
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

// Expansion is an unpacked archive. Close releases the namespace.
type Expansion struct {
	dir      string
	registry *formats.Registry
	scratch  *Scratch
	once     sync.Once
}

// Dir returns the namespace root.
func (x *Expansion) Dir() string {
	return x.dir
}

var errStopWalk = errors.New("stop walk")

// Entries lazily walks the namespace depth-first in lexical order and yields
// every regular file the format registry supports. Unsupported files are
// skipped silently. A walk failure is yielded once as the final element.
func (x *Expansion) Entries() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		err := filepath.WalkDir(x.dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() || !x.registry.IsSupported(d.Name()) {
				return nil
			}
			rel, err := filepath.Rel(x.dir, p)
			if err != nil {
				return err
			}
			if !yield(Entry{RelPath: filepath.ToSlash(rel), Path: p}, nil) {
				return errStopWalk
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopWalk) {
			yield(Entry{}, err)
		}
	}
}

// Close removes the namespace. Safe to call more than once.
func (x *Expansion) Close() {
	x.once.Do(func() { x.scratch.remove(x.dir) })
}
