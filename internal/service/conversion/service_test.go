package conversion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdconv/internal/domain"
	models "mdconv/internal/domain/models/conversion"
	convSvc "mdconv/internal/domain/services/conversion"
)

func TestConvert_SingleFile(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "notes.txt",
		Content:  []byte("Hello"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Record.ID)
	assert.Equal(t, "notes.txt", res.Record.Filename)
	assert.Equal(t, "Hello", res.Record.ConvertedContent)
	assert.Equal(t, models.StatusSuccess, res.Record.Status)
	assert.Equal(t, int64(5), res.Record.FileSize)
	assert.GreaterOrEqual(t, res.Record.ConversionTime, 0.0)

	assert.Equal(t, models.BatchKindSingle, res.Result.Kind)
	require.Len(t, res.Result.Files, 1)
	assert.Equal(t, models.Succeeded("notes.txt", "Hello"), res.Result.Files[0])

	// the recorded scratch path is gone once the request returns
	assert.NoFileExists(t, res.Record.OriginalPath)
	requireScratchEmpty(t, env.scratch)
}

func TestConvert_UnsupportedType(t *testing.T) {
	for _, name := range []string{"malware.exe", "README", "backup.tar.gz", ".env"} {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
				Filename: name,
				Content:  []byte("x"),
			})
			require.ErrorIs(t, err, domain.ErrValidation)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Supported, ".zip")
			assert.Contains(t, vErr.Supported, ".pdf")

			assert.Zero(t, env.repo.count())
			assert.Zero(t, env.conv.calls)
			requireScratchEmpty(t, env.scratch)
		})
	}
}

func TestConvert_InvalidRequest(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: strings.Repeat("a", 300) + ".txt",
		Content:  []byte("x"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "big.txt",
		Content:  make([]byte, 1<<20+1),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, env.repo.count())
}

func TestConvert_SingleFileConversionFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "broken.pdf",
		Content:  []byte("FAIL: not a pdf"),
	})
	require.ErrorIs(t, err, domain.ErrConversion)

	var cErr *domain.ConversionError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "broken.pdf", cErr.Filename)
	assert.Contains(t, err.Error(), "cannot decode")

	assert.Zero(t, env.repo.count())
	requireScratchEmpty(t, env.scratch)
}

func TestConvert_ArchiveWithPartialFailures(t *testing.T) {
	env := newTestEnv(t)

	upload := buildZip(t,
		zipMember{"a.txt", "alpha"},
		zipMember{"dir/b.md", "beta"},
		zipMember{"c.html", "FAIL"},
		zipMember{"d.exe", "binary"},
	)

	res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "bundle.zip",
		Content:  upload,
	})
	require.NoError(t, err)

	assert.Equal(t, models.BatchKindArchive, res.Result.Kind)
	require.Len(t, res.Result.Files, 3)
	assert.Equal(t, 1, res.Result.Failures())

	byName := make(map[string]models.FileOutcome)
	for _, f := range res.Result.Files {
		byName[f.Filename] = f
	}
	assert.True(t, byName["a.txt"].OK())
	assert.True(t, byName["dir/b.md"].OK())
	assert.Equal(t, models.StatusError, byName["c.html"].Status)
	assert.Empty(t, byName["c.html"].Content)
	assert.Contains(t, byName["c.html"].Error, "cannot decode")
	assert.NotContains(t, byName, "d.exe")

	content := res.Record.ConvertedContent
	assert.Contains(t, content, "# a.txt\n\nalpha")
	assert.Contains(t, content, "# dir/b.md\n\nbeta")
	assert.NotContains(t, content, "c.html")
	assert.Equal(t, 1, strings.Count(content, archiveSectionSeparator))
	assert.Equal(t, models.StatusSuccess, res.Record.Status)

	requireScratchEmpty(t, env.scratch)
}

func TestConvert_ArchiveSkipsUnsupportedMembers(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "mixed.zip",
		Content:  buildZip(t, zipMember{"a.txt", "only me"}, zipMember{"b.exe", "MZ"}),
	})
	require.NoError(t, err)

	require.Len(t, res.Result.Files, 1)
	assert.Equal(t, "# a.txt\n\nonly me", res.Record.ConvertedContent)
}

func TestConvert_ArchiveWithoutSupportedFiles(t *testing.T) {
	tests := []struct {
		name    string
		members []zipMember
	}{
		{"only unsupported", []zipMember{{"b.exe", "MZ"}, {"c.bin", "x"}}},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			_, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
				Filename: "nothing.zip",
				Content:  buildZip(t, tt.members...),
			})
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "no supported files found in the ZIP archive", vErr.Message)
			assert.NotEmpty(t, vErr.Supported)

			assert.Zero(t, env.repo.count())
			requireScratchEmpty(t, env.scratch)
		})
	}
}

func TestConvert_AllMembersFail(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "bad.zip",
		Content:  buildZip(t, zipMember{"a.txt", "FAIL"}, zipMember{"b.txt", "FAIL too"}),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Result.Failures())
	assert.Empty(t, res.Record.ConvertedContent)
	assert.Equal(t, 1, env.repo.count())
}

func TestConvert_CorruptArchive(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "corrupt.zip",
		Content:  []byte("PK but not really a zip"),
	})
	require.ErrorIs(t, err, domain.ErrArchive)

	assert.Zero(t, env.repo.count())
	requireScratchEmpty(t, env.scratch)
}

func TestConvert_NestedArchive(t *testing.T) {
	inner := buildZip(t, zipMember{"x.txt", "deep"})
	outer := buildZip(t,
		zipMember{"inner.zip", string(inner)},
		zipMember{"y.txt", "shallow"},
	)

	t.Run("expanded within depth", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
			Filename: "outer.zip",
			Content:  outer,
		})
		require.NoError(t, err)

		assert.Equal(t, []models.FileOutcome{
			models.Succeeded("inner.zip/x.txt", "deep"),
			models.Succeeded("y.txt", "shallow"),
		}, res.Result.Files)
		requireScratchEmpty(t, env.scratch)
	})

	t.Run("depth limit reached", func(t *testing.T) {
		env := newTestEnv(t, withArchiveOptions(ArchiveOptions{MaxDepth: 0, Concurrency: 1}))

		res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
			Filename: "outer.zip",
			Content:  outer,
		})
		require.NoError(t, err)

		require.Len(t, res.Result.Files, 2)
		assert.Equal(t, "inner.zip", res.Result.Files[0].Filename)
		assert.Contains(t, res.Result.Files[0].Error, "depth limit")
		assert.True(t, res.Result.Files[1].OK())
		requireScratchEmpty(t, env.scratch)
	})

	t.Run("corrupt nested archive", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
			Filename: "outer.zip",
			Content:  buildZip(t, zipMember{"inner.zip", "garbage"}, zipMember{"y.txt", "ok"}),
		})
		require.NoError(t, err)

		require.Len(t, res.Result.Files, 2)
		assert.Equal(t, models.StatusError, res.Result.Files[0].Status)
		assert.True(t, res.Result.Files[1].OK())
	})
}

func TestConvert_MemberPanicBecomesErrorOutcome(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			env := newTestEnv(t, withArchiveOptions(ArchiveOptions{MaxDepth: 1, Concurrency: concurrency}))

			res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
				Filename: "bundle.zip",
				Content:  buildZip(t, zipMember{"a.pdf", "PANIC"}, zipMember{"b.txt", "fine"}),
			})
			require.NoError(t, err)

			require.Len(t, res.Result.Files, 2)
			assert.Equal(t, "a.pdf", res.Result.Files[0].Filename)
			assert.Equal(t, models.StatusError, res.Result.Files[0].Status)
			assert.Contains(t, res.Result.Files[0].Error, "converter panic: decoder bug")
			assert.Equal(t, models.Succeeded("b.txt", "fine"), res.Result.Files[1])
			assert.Equal(t, "# b.txt\n\nfine", res.Record.ConvertedContent)

			requireScratchEmpty(t, env.scratch)
		})
	}
}

func TestConvert_NestedArchivesShareExtractedBudget(t *testing.T) {
	inner := string(buildZip(t, zipMember{"x.txt", strings.Repeat("x", 900)}))
	outer := buildZip(t,
		zipMember{"i1.zip", inner},
		zipMember{"i2.zip", inner},
		zipMember{"i3.zip", inner},
	)

	for _, concurrency := range []int{1, 3} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			env := newTestEnv(t,
				withArchiveOptions(ArchiveOptions{MaxDepth: 2, Concurrency: concurrency}),
				withExpanderConfig(ExpanderConfig{MaxExtractedBytes: 1000}),
			)

			res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
				Filename: "bomb.zip",
				Content:  outer,
			})
			require.NoError(t, err)

			var extracted int
			for _, f := range res.Result.Files {
				if f.OK() {
					extracted += len(f.Content)
					continue
				}
				assert.Contains(t, f.Error, "extracted size limit")
			}
			assert.LessOrEqual(t, extracted, 1000)
			assert.GreaterOrEqual(t, res.Result.Failures(), 2)

			requireScratchEmpty(t, env.scratch)
		})
	}
}

func TestConvert_ConcurrentMembersKeepOrder(t *testing.T) {
	env := newTestEnv(t, withArchiveOptions(ArchiveOptions{MaxDepth: 1, Concurrency: 8}))

	var members []zipMember
	var want []models.FileOutcome
	for i := range 40 {
		name := fmt.Sprintf("f%02d.txt", i)
		members = append(members, zipMember{name, "content " + name})
		want = append(want, models.Succeeded(name, "content "+name))
	}

	res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "many.zip",
		Content:  buildZip(t, members...),
	})
	require.NoError(t, err)

	assert.Equal(t, want, res.Result.Files)
	assert.Equal(t, 40, env.conv.calls)
	requireScratchEmpty(t, env.scratch)
}

func TestConvert_ConcurrentUploadsWithSameName(t *testing.T) {
	env := newTestEnv(t)

	const n = 16
	results := make([]*convSvc.ConvertResult, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
				Filename: "same.txt",
				Content:  []byte(fmt.Sprintf("upload %d", i)),
			})
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	ids := make(map[int64]bool)
	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, fmt.Sprintf("upload %d", i), res.Record.ConvertedContent)
		ids[res.Record.ID] = true
	}
	assert.Len(t, ids, n)
	requireScratchEmpty(t, env.scratch)
}

func TestConvert_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.appendErr = errors.New("disk full")

	_, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "notes.txt",
		Content:  []byte("Hello"),
	})
	require.ErrorIs(t, err, domain.ErrStorage)

	var sErr *domain.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "append", sErr.Op)
	requireScratchEmpty(t, env.scratch)
}

func TestConvert_CancelledRequestIsNotRecorded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("single", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Convert(ctx, &convSvc.ConversionRequest{Filename: "a.txt", Content: []byte("x")})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, env.repo.count())
		requireScratchEmpty(t, env.scratch)
	})

	t.Run("archive", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.service.Convert(ctx, &convSvc.ConversionRequest{
			Filename: "a.zip",
			Content:  buildZip(t, zipMember{"a.txt", "x"}),
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, env.repo.count())
		requireScratchEmpty(t, env.scratch)
	})
}

func TestGetRecord_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
		Filename: "page.html",
		Content:  []byte("<p>hi</p>"),
	})
	require.NoError(t, err)

	got, err := env.service.GetRecord(context.Background(), res.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Record, got)

	_, err = env.service.GetRecord(context.Background(), 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.EqualError(t, err, "Conversion not found")
}

func TestListHistory(t *testing.T) {
	env := newTestEnv(t)
	for i := range 12 {
		_, err := env.service.Convert(context.Background(), &convSvc.ConversionRequest{
			Filename: fmt.Sprintf("f%d.txt", i),
			Content:  []byte("x"),
		})
		require.NoError(t, err)
	}

	page, err := env.service.ListHistory(context.Background(), &convSvc.HistoryRequest{})
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, "f11.txt", page[0].Filename)

	page, err = env.service.ListHistory(context.Background(), &convSvc.HistoryRequest{Skip: 10, Limit: 5})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "f0.txt", page[1].Filename)

	_, err = env.service.ListHistory(context.Background(), &convSvc.HistoryRequest{Skip: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.service.ListHistory(context.Background(), &convSvc.HistoryRequest{Limit: 1000})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSupportedFormats(t *testing.T) {
	env := newTestEnv(t)

	listing := env.service.SupportedFormats()
	assert.NotEmpty(t, listing.Formats)
	assert.NotEmpty(t, listing.Message)
}

func TestScratch_MaterializeIsUnique(t *testing.T) {
	root := t.TempDir()
	s, err := NewScratch(root, discardLogger())
	require.NoError(t, err)

	a, err := s.Materialize("../../etc/passwd", []byte("a"))
	require.NoError(t, err)
	b, err := s.Materialize("../../etc/passwd", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, root, filepath.Dir(a.Path))
	assert.True(t, strings.HasSuffix(a.Path, "_passwd"))

	a.Release()
	a.Release()
	assert.NoFileExists(t, a.Path)

	data, err := os.ReadFile(b.Path)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
	b.Release()

	requireScratchEmpty(t, root)
}

func TestSafeBase(t *testing.T) {
	tests := map[string]string{
		"notes.txt":          "notes.txt",
		"a/b/c.md":           "c.md",
		`C:\Users\x\doc.pdf`: "doc.pdf",
		"..":                 "upload",
		"/":                  "upload",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeBase(in), in)
	}
}
