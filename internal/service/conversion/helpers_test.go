package conversion

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mdconv/internal/domain"
	models "mdconv/internal/domain/models/conversion"
	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/formats"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoConverter returns the file content unchanged. Content starting with
// "FAIL" is a decode error and content starting with "PANIC" panics.
type echoConverter struct {
	mu    sync.Mutex
	calls int
}

func (c *echoConverter) Convert(_ context.Context, path string) (string, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if bytes.HasPrefix(data, []byte("PANIC")) {
		panic("decoder bug in " + filepath.Base(path))
	}
	if bytes.HasPrefix(data, []byte("FAIL")) {
		return "", errors.New("cannot decode " + filepath.Base(path))
	}
	return string(data), nil
}

// memoryRepo is an in-memory RecordRepository.
type memoryRepo struct {
	mu        sync.Mutex
	records   []models.ConversionRecord
	appendErr error
}

func (r *memoryRepo) Append(_ context.Context, record *models.ConversionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.appendErr != nil {
		return r.appendErr
	}
	record.ID = int64(len(r.records) + 1)
	record.CreatedAt = time.Unix(0, record.ID).UTC()
	r.records = append(r.records, *record)
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*models.ConversionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id < 1 || id > int64(len(r.records)) {
		return nil, fmt.Errorf("conversion %d: %w", id, domain.ErrNotFound)
	}
	record := r.records[id-1]
	return &record, nil
}

func (r *memoryRepo) List(_ context.Context, offset, limit int) ([]models.ConversionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.ConversionSummary
	for i := len(r.records) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i].Summary())
	}
	return out, nil
}

func (r *memoryRepo) Ping(context.Context) error { return nil }

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type testEnv struct {
	service convSvc.ConversionService
	repo    *memoryRepo
	conv    *echoConverter
	scratch string
}

type envOption func(*testEnv, *ArchiveOptions, *ExpanderConfig)

func withArchiveOptions(opts ArchiveOptions) envOption {
	return func(_ *testEnv, o *ArchiveOptions, _ *ExpanderConfig) { *o = opts }
}

func withExpanderConfig(cfg ExpanderConfig) envOption {
	return func(_ *testEnv, _ *ArchiveOptions, c *ExpanderConfig) { *c = cfg }
}

func newTestEnv(t *testing.T, options ...envOption) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:    &memoryRepo{},
		conv:    &echoConverter{},
		scratch: t.TempDir(),
	}
	archiveOpts := ArchiveOptions{MaxDepth: 2, Concurrency: 1}
	expanderCfg := ExpanderConfig{}
	for _, opt := range options {
		opt(env, &archiveOpts, &expanderCfg)
	}

	logger := discardLogger()
	registry := formats.Default()
	scratch, err := NewScratch(env.scratch, logger)
	require.NoError(t, err)

	expander := NewExpander(scratch, registry, expanderCfg)
	processors := NewFileProcessorRegistry(
		NewArchiveProcessor(expander, env.conv, registry, archiveOpts, logger),
		NewSingleFileProcessor(env.conv, registry, logger),
	)
	env.service = NewConversionService(env.repo, processors, scratch, registry, 1<<20, logger)
	return env
}

// requireScratchEmpty asserts every scratch file and namespace was released.
func requireScratchEmpty(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "scratch not released")
}

type zipMember struct {
	name    string
	content string
}

func buildZip(t *testing.T, members ...zipMember) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.Create(m.name)
		require.NoError(t, err)
		_, err = io.Copy(w, strings.NewReader(m.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeZip(t *testing.T, members ...zipMember) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	require.NoError(t, os.WriteFile(path, buildZip(t, members...), 0o600))
	return path
}
