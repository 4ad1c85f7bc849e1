package converter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	convSvc "mdconv/internal/domain/services/conversion"
)

// pdfConverter extracts the text layer of a PDF, one markdown section per page.
// Image-only pages have no text layer and are skipped.
type pdfConverter struct{}

// NewPDFConverter creates a new PDF text converter.
func NewPDFConverter() convSvc.ContentConverter {
	return &pdfConverter{}
}

func (c *pdfConverter) Convert(ctx context.Context, input []byte) (string, error) {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(input), model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("read PDF: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text := pageText(pdfCtx, pageNr)
		if text == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "## Page %d\n\n%s", pageNr, text)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return sb.String(), nil
}

func (c *pdfConverter) SupportedExtensions() []string {
	return []string{".pdf"}
}

func (c *pdfConverter) Name() string {
	return "pdf"
}

func pageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// pdfLiteral matches a string literal operand: (text here)
var pdfLiteral = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

// textFromContentStream walks the text-showing operators (Tj, TJ, ', ")
// of a page content stream. T* and the quote operators start a new line.
func textFromContentStream(data []byte) string {
	var lines []string
	var cur strings.Builder

	flush := func() {
		if line := normalizeSpace(cur.String()); line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}

	for _, raw := range bytes.Split(data, []byte{'\n'}) {
		line := bytes.TrimSpace(raw)
		switch {
		case len(line) == 0:
			continue
		case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			flush()
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			writeLiterals(&cur, line)
		case bytes.HasSuffix(line, []byte("'")), bytes.HasSuffix(line, []byte(`"`)):
			flush()
			writeLiterals(&cur, line)
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if cur.Len() > 0 {
				cur.WriteByte(' ')
			}
		}
	}
	flush()

	return strings.Join(lines, "\n")
}

func writeLiterals(sb *strings.Builder, line []byte) {
	for _, m := range pdfLiteral.FindAllSubmatch(line, -1) {
		sb.WriteString(decodeLiteral(m[1]))
	}
}

// decodeLiteral resolves the escape sequences allowed in PDF string literals.
func decodeLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '0', '1', '2', '3', '4', '5', '6', '7':
			val := 0
			for n := 0; n < 3 && i < len(raw) && raw[i] >= '0' && raw[i] <= '7'; n++ {
				val = val*8 + int(raw[i]-'0')
				i++
			}
			i--
			sb.WriteByte(byte(val))
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

func normalizeSpace(s string) string {
	var sb strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = sb.Len() > 0
		case unicode.IsPrint(r):
			if space {
				sb.WriteByte(' ')
				space = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
