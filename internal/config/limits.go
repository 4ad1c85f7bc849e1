package config

const (
	// MaxFilenameLength is the maximum length for uploaded file names.
	// Limited to 255 to fit in VARCHAR(255) on every supported store.
	MaxFilenameLength = 255

	// DefaultMaxUploadBytes caps a single upload (100 MB, same as bulk imports).
	DefaultMaxUploadBytes int64 = 100 << 20

	// DefaultMaxExtractedBytes caps the total decompressed size of one archive.
	// Protects the scratch area against zip bombs.
	DefaultMaxExtractedBytes int64 = 512 << 20

	// DefaultMaxArchiveEntries caps the number of members extracted from one archive.
	DefaultMaxArchiveEntries = 10000

	// DefaultMaxArchiveDepth is how many levels of nested archives are expanded.
	// 0 converts only top-level members; nested archives become error outcomes.
	DefaultMaxArchiveDepth = 2

	// MaxEntryConcurrency bounds ENTRY_CONCURRENCY.
	MaxEntryConcurrency = 32

	// DefaultHistoryLimit is the history page size when none is given.
	DefaultHistoryLimit = 10

	// MaxHistoryLimit is the largest history page a client may request.
	MaxHistoryLimit = 100
)
