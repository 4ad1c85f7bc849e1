package sanitizer

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer strips active content from uploaded HTML before conversion.
//
// Thread-safe for concurrent use.
type HTMLSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer creates a sanitizer based on the UGC policy: formatting,
// headings, lists, links, images and tables survive; scripts, styles,
// event handlers and javascript: URLs do not.
func NewHTMLSanitizer() *HTMLSanitizer {
	policy := bluemonday.UGCPolicy()

	// Keep language hints such as class="language-go" so code blocks stay fenced with a language.
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")

	return &HTMLSanitizer{policy: policy}
}

// Sanitize returns the HTML with everything outside the policy removed.
func (s *HTMLSanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
