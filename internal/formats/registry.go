// Package formats is the process-wide set of file extensions the pipeline accepts.
//
// The set is decoded once from the embedded formats.yaml and never mutated
// afterwards, so a Registry is shared by all requests without locking.
// Support is decided by extension only; file content is never sniffed.
package formats

import (
	_ "embed"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed formats.yaml
var defaultData []byte

// Category groups extensions that share converter dependencies.
type Category struct {
	Formats      []string `yaml:"formats" json:"formats"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies"`
	Archive      bool     `yaml:"archive,omitempty" json:"-"`
}

type document struct {
	Message    string              `yaml:"message"`
	Categories map[string]Category `yaml:"categories"`
}

// Listing is the informational view returned to clients.
type Listing struct {
	Formats      []string            `json:"formats"`
	Dependencies map[string]Category `json:"dependencies"`
	Message      string              `json:"message"`
}

// Registry answers extension membership questions.
type Registry struct {
	supported map[string]struct{}
	archives  map[string]struct{}
	sorted    []string
	deps      map[string]Category
	message   string
}

// Default returns the registry built from the embedded formats.yaml.
// It is initialized on first use and shared afterwards.
var Default = sync.OnceValue(func() *Registry {
	r, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("formats: embedded formats.yaml: %v", err))
	}
	return r
})

// Parse builds a registry from YAML. Extensions are normalized to lowercase
// with a leading dot.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal formats: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("no format categories defined")
	}

	r := &Registry{
		supported: make(map[string]struct{}),
		archives:  make(map[string]struct{}),
		deps:      make(map[string]Category),
		message:   doc.Message,
	}

	for name, cat := range doc.Categories {
		normalized := make([]string, 0, len(cat.Formats))
		for _, ext := range cat.Formats {
			ext = normalizeExt(ext)
			if ext == "" {
				return nil, fmt.Errorf("category %s: empty extension", name)
			}
			r.supported[ext] = struct{}{}
			if cat.Archive {
				r.archives[ext] = struct{}{}
			}
			normalized = append(normalized, ext)
		}
		if len(cat.Dependencies) > 0 {
			r.deps[name] = Category{Formats: normalized, Dependencies: slices.Clone(cat.Dependencies)}
		}
	}

	r.sorted = make([]string, 0, len(r.supported))
	for ext := range r.supported {
		r.sorted = append(r.sorted, ext)
	}
	sort.Strings(r.sorted)

	return r, nil
}

// Ext returns the lowercase extension of the last path element, including the dot.
// Returns "" when the name has no extension; a leading dot (".env") is not one.
// Both / and \ count as separators.
func Ext(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 || idx == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[idx:])
}

// IsSupported reports whether the file's extension is accepted.
func (r *Registry) IsSupported(filename string) bool {
	ext := Ext(filename)
	if ext == "" {
		return false
	}
	_, ok := r.supported[ext]
	return ok
}

// IsArchive reports whether the file's extension is an accepted archive type.
func (r *Registry) IsArchive(filename string) bool {
	_, ok := r.archives[Ext(filename)]
	return ok
}

// Extensions returns the sorted supported extensions. The slice is a copy.
func (r *Registry) Extensions() []string {
	return slices.Clone(r.sorted)
}

// List returns the supported extensions with their dependency notes.
func (r *Registry) List() Listing {
	deps := make(map[string]Category, len(r.deps))
	for name, cat := range r.deps {
		deps[name] = Category{
			Formats:      slices.Clone(cat.Formats),
			Dependencies: slices.Clone(cat.Dependencies),
		}
	}
	return Listing{
		Formats:      r.Extensions(),
		Dependencies: deps,
		Message:      r.message,
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
