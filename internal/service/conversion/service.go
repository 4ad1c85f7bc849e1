package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mdconv/internal/domain"
	"mdconv/internal/domain/models/conversion"
	conversionRepo "mdconv/internal/domain/repositories/conversion"
	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/formats"
)

// archiveSectionSeparator goes between the folded sections of an archive.
const archiveSectionSeparator = "\n\n---\n\n"

// conversionService implements the ConversionService interface
type conversionService struct {
	repo           conversionRepo.RecordRepository
	processors     *FileProcessorRegistry
	scratch        *Scratch
	registry       *formats.Registry
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(
	repo conversionRepo.RecordRepository,
	processors *FileProcessorRegistry,
	scratch *Scratch,
	registry *formats.Registry,
	maxUploadBytes int64,
	logger *slog.Logger,
) convSvc.ConversionService {
	return &conversionService{
		repo:           repo,
		processors:     processors,
		scratch:        scratch,
		registry:       registry,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Convert runs one upload through the pipeline and records it.
// Nothing is recorded unless the whole pipeline succeeds.
func (s *conversionService) Convert(ctx context.Context, req *convSvc.ConversionRequest) (*convSvc.ConvertResult, error) {
	if err := req.Validate(s.maxUploadBytes); err != nil {
		return nil, &domain.ValidationError{Message: err.Error(), Supported: s.registry.Extensions()}
	}
	if !s.registry.IsSupported(req.Filename) {
		return nil, domain.NewUnsupportedTypeError(formats.Ext(req.Filename), s.registry.Extensions())
	}

	processor := s.processors.GetProcessor(req.Filename)
	if processor == nil {
		return nil, domain.NewUnsupportedTypeError(formats.Ext(req.Filename), s.registry.Extensions())
	}

	file, err := s.scratch.Materialize(req.Filename, req.Content)
	if err != nil {
		return nil, err
	}
	defer file.Release()

	start := time.Now()
	result, err := processor.Process(ctx, file.Path, req.Filename)
	if err != nil {
		return nil, err
	}
	content := foldContent(result)
	elapsed := time.Since(start).Seconds()

	// A cancelled request must not leave a record behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	record := &conversion.ConversionRecord{
		Filename:         req.Filename,
		OriginalPath:     file.Path,
		ConvertedContent: content,
		Status:           conversion.StatusSuccess,
		FileSize:         int64(len(req.Content)),
		ConversionTime:   elapsed,
	}
	if err := s.repo.Append(ctx, record); err != nil {
		s.logger.Error("failed to record conversion",
			"filename", req.Filename,
			"error", err,
		)
		return nil, &domain.StorageError{Op: "append", Err: err}
	}

	s.logger.Info("conversion recorded",
		"id", record.ID,
		"filename", record.Filename,
		"processor", processor.Name(),
		"files", len(result.Files),
		"failed", result.Failures(),
		"seconds", elapsed,
	)

	return &convSvc.ConvertResult{Record: record, Result: result}, nil
}

// foldContent turns a batch into the content stored on the record: the file
// itself for single uploads, one "# <path>" section per converted member for
// archives. Failed members are left out.
func foldContent(result *conversion.BatchResult) string {
	if result.Kind == conversion.BatchKindSingle {
		return result.Files[0].Content
	}

	sections := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		if !f.OK() {
			continue
		}
		sections = append(sections, fmt.Sprintf("# %s\n\n%s", f.Filename, f.Content))
	}
	return strings.Join(sections, archiveSectionSeparator)
}

// ListHistory returns record summaries, newest first
func (s *conversionService) ListHistory(ctx context.Context, req *convSvc.HistoryRequest) ([]conversion.ConversionSummary, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	summaries, err := s.repo.List(ctx, req.Skip, req.Limit)
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: err}
	}
	return summaries, nil
}

// GetRecord returns one record by ID
func (s *conversionService) GetRecord(ctx context.Context, id int64) (*conversion.ConversionRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "Conversion not found"}
		}
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return record, nil
}

// SupportedFormats returns the registry listing
func (s *conversionService) SupportedFormats() formats.Listing {
	return s.registry.List()
}
