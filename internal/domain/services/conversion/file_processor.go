package conversion

import (
	"context"

	"mdconv/internal/domain/models/conversion"
)

// FileProcessor defines the strategy interface for converting a materialized upload.
// Different implementations handle different file types (archives vs individual files).
type FileProcessor interface {
	// CanProcess returns true if this processor can handle the given filename
	CanProcess(filename string) bool

	// Process converts the file stored at path. filename is the name the
	// client declared and is used for outcome labels.
	Process(ctx context.Context, path, filename string) (*conversion.BatchResult, error)

	// Name returns the processor name for logging
	Name() string
}
