package converter

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	convSvc "mdconv/internal/domain/services/conversion"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textConverter converts plain text files to markdown.
// Plain text is valid markdown, so only the encoding is checked.
type textConverter struct{}

// NewTextConverter creates a new text converter.
func NewTextConverter() convSvc.ContentConverter {
	return &textConverter{}
}

// Convert strips a UTF-8 byte order mark and returns the text.
// Input that is not valid UTF-8 is rejected.
func (c *textConverter) Convert(ctx context.Context, input []byte) (string, error) {
	input = bytes.TrimPrefix(input, utf8BOM)
	if !utf8.Valid(input) {
		return "", fmt.Errorf("text is not valid UTF-8")
	}
	return string(input), nil
}

func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

func (c *textConverter) Name() string {
	return "plaintext"
}
