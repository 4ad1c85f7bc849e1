package converter

import (
	"bytes"
	"context"

	convSvc "mdconv/internal/domain/services/conversion"
)

// markdownConverter handles uploads that are already Markdown.
type markdownConverter struct{}

// NewMarkdownConverter returns the .md/.markdown converter.
func NewMarkdownConverter() convSvc.ContentConverter {
	return &markdownConverter{}
}

// Convert returns the input unchanged apart from a leading byte order mark.
func (c *markdownConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return string(bytes.TrimPrefix(input, utf8BOM)), nil
}

func (c *markdownConverter) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

func (c *markdownConverter) Name() string {
	return "markdown"
}
