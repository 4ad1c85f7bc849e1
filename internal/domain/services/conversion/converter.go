package conversion

import "context"

// Converter is the decoding capability used by the pipeline: it turns the
// file at path into markdown or fails with a decode error.
// Format handling is entirely up to the implementation.
//
// Implementations must be safe for concurrent use.
type Converter interface {
	Convert(ctx context.Context, path string) (markdown string, err error)
}

// ContentConverter converts file content to markdown format.
// Each converter handles a specific file type (html, txt, ipynb, pdf, etc.)
// and produces normalized markdown.
//
// Implementations should be stateless and thread-safe.
type ContentConverter interface {
	// Convert transforms input content to markdown.
	// Returns an error if conversion fails.
	Convert(ctx context.Context, input []byte) (markdown string, err error)

	// SupportedExtensions returns file extensions this converter handles.
	// Extensions should include the leading dot (e.g., [".html", ".htm"]).
	SupportedExtensions() []string

	// Name returns a human-readable converter name for logging/debugging.
	Name() string
}
