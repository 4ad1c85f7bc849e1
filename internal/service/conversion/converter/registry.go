package converter

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/formats"
)

// ConverterRegistry manages content converters and routes files by extension.
// It is the default implementation of the pipeline's Converter capability.
//
// Extensions without a registered content converter go to the fallback
// converter when one is set (typically the external markitdown command).
//
// Thread-safe for concurrent access.
type ConverterRegistry struct {
	mu         sync.RWMutex
	converters map[string]convSvc.ContentConverter // key: file extension (e.g., ".html")
	fallback   convSvc.Converter
}

// NewConverterRegistry creates a registry with the built-in converters pre-registered.
func NewConverterRegistry() *ConverterRegistry {
	registry := &ConverterRegistry{
		converters: make(map[string]convSvc.ContentConverter),
	}

	registry.Register(NewMarkdownConverter())
	registry.Register(NewTextConverter())
	registry.Register(NewHTMLConverter())
	registry.Register(NewNotebookConverter())
	registry.Register(NewPDFConverter())

	return registry
}

// Register adds a converter and associates it with its supported extensions.
// Extensions are normalized to lowercase with leading dot.
func (r *ConverterRegistry) Register(converter convSvc.ContentConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range converter.SupportedExtensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = converter
	}
}

// SetFallback sets the converter used for extensions with no content converter.
func (r *ConverterRegistry) SetFallback(fallback convSvc.Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fallback
}

// GetConverter retrieves a converter for the given file extension.
// Returns nil if no converter is registered for this extension.
func (r *ConverterRegistry) GetConverter(fileExt string) convSvc.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.converters[strings.ToLower(fileExt)]
}

// Convert reads the file at path and converts it with the converter
// registered for its extension, or with the fallback.
func (r *ConverterRegistry) Convert(ctx context.Context, path string) (string, error) {
	ext := formats.Ext(path)

	if converter := r.GetConverter(ext); converter != nil {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", ext, err)
		}
		return converter.Convert(ctx, content)
	}

	r.mu.RLock()
	fallback := r.fallback
	r.mu.RUnlock()

	if fallback != nil {
		return fallback.Convert(ctx, path)
	}
	return "", fmt.Errorf("no converter available for %s files", ext)
}

// SupportedExtensions returns all extensions with a built-in converter.
func (r *ConverterRegistry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	return exts
}
