package conversion

import (
	"context"
	"log/slog"

	"mdconv/internal/domain"
	"mdconv/internal/domain/models/conversion"
	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/formats"
)

// singleFileProcessor converts one non-archive upload.
// Unlike archive members, a failed conversion fails the whole request.
type singleFileProcessor struct {
	converter convSvc.Converter
	registry  *formats.Registry
	logger    *slog.Logger
}

// NewSingleFileProcessor creates a processor for individual files.
func NewSingleFileProcessor(
	converter convSvc.Converter,
	registry *formats.Registry,
	logger *slog.Logger,
) convSvc.FileProcessor {
	return &singleFileProcessor{
		converter: converter,
		registry:  registry,
		logger:    logger,
	}
}

// CanProcess returns true for any supported extension
func (p *singleFileProcessor) CanProcess(filename string) bool {
	return p.registry.IsSupported(filename)
}

func (p *singleFileProcessor) Process(ctx context.Context, path, filename string) (*conversion.BatchResult, error) {
	markdown, err := p.converter.Convert(ctx, path)
	if err != nil {
		p.logger.Warn("failed to convert file", "filename", filename, "error", err)
		return nil, &domain.ConversionError{Filename: filename, Err: err}
	}

	p.logger.Debug("file converted",
		"filename", filename,
		"chars", len(markdown),
	)

	return &conversion.BatchResult{
		Kind:  conversion.BatchKindSingle,
		Files: []conversion.FileOutcome{conversion.Succeeded(filename, markdown)},
	}, nil
}

// Name returns the processor name
func (p *singleFileProcessor) Name() string {
	return "SingleFileProcessor"
}
