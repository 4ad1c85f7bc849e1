package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	convSvc "mdconv/internal/domain/services/conversion"
)

// notebookConverter converts Jupyter notebooks (.ipynb) to markdown.
// Markdown cells are emitted verbatim, code cells are fenced with the
// kernel language and raw cells are fenced without one. Outputs are dropped.
type notebookConverter struct{}

// NewNotebookConverter creates a new notebook converter.
func NewNotebookConverter() convSvc.ContentConverter {
	return &notebookConverter{}
}

func (c *notebookConverter) Convert(ctx context.Context, input []byte) (string, error) {
	if !gjson.ValidBytes(input) {
		return "", fmt.Errorf("notebook is not valid JSON")
	}

	doc := gjson.ParseBytes(input)
	cells := doc.Get("cells")
	if !cells.IsArray() {
		return "", fmt.Errorf("notebook has no cells array")
	}

	lang := doc.Get("metadata.kernelspec.language").String()
	if lang == "" {
		lang = doc.Get("metadata.language_info.name").String()
	}

	var blocks []string
	cells.ForEach(func(_, cell gjson.Result) bool {
		source := strings.TrimRight(cellSource(cell.Get("source")), "\n")
		if strings.TrimSpace(source) == "" {
			return true
		}

		switch cell.Get("cell_type").String() {
		case "markdown":
			blocks = append(blocks, source)
		case "code":
			blocks = append(blocks, fence(lang, source))
		default:
			blocks = append(blocks, fence("", source))
		}
		return true
	})

	return strings.Join(blocks, "\n\n"), nil
}

func (c *notebookConverter) SupportedExtensions() []string {
	return []string{".ipynb"}
}

func (c *notebookConverter) Name() string {
	return "notebook"
}

// cellSource joins a cell source, which nbformat allows as a string or a list of lines.
func cellSource(src gjson.Result) string {
	if !src.IsArray() {
		return src.String()
	}
	var sb strings.Builder
	for _, line := range src.Array() {
		sb.WriteString(line.String())
	}
	return sb.String()
}

func fence(lang, body string) string {
	marker := "```"
	for strings.Contains(body, marker) {
		marker += "`"
	}
	return marker + lang + "\n" + body + "\n" + marker
}
