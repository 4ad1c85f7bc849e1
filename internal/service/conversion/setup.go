package conversion

import (
	"fmt"
	"log/slog"

	"mdconv/internal/config"
	conversionRepo "mdconv/internal/domain/repositories/conversion"
	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/formats"
	"mdconv/internal/service/conversion/converter"
)

// SetupConverter builds the default converter capability: the built-in
// content converters plus, when MARKITDOWN_BIN is set, the external command
// for every other format.
func SetupConverter(cfg *config.Config, logger *slog.Logger) (convSvc.Converter, error) {
	registry := converter.NewConverterRegistry()

	if cfg.MarkitdownBin != "" {
		fallback, err := converter.NewCommandConverter(cfg.MarkitdownBin)
		if err != nil {
			return nil, err
		}
		registry.SetFallback(fallback)
		logger.Info("external converter available", "bin", cfg.MarkitdownBin)
	} else {
		logger.Warn("MARKITDOWN_BIN not set - only built-in formats can be converted",
			"built_in", registry.SupportedExtensions(),
		)
	}

	return registry, nil
}

// SetupService wires the conversion pipeline around a record store and a converter.
func SetupService(
	cfg *config.Config,
	repo conversionRepo.RecordRepository,
	conv convSvc.Converter,
	logger *slog.Logger,
) (convSvc.ConversionService, error) {
	registry := formats.Default()

	scratch, err := NewScratch(cfg.ScratchDir, logger)
	if err != nil {
		return nil, fmt.Errorf("scratch setup failed: %w", err)
	}

	expander := NewExpander(scratch, registry, ExpanderConfig{
		MaxExtractedBytes: cfg.MaxExtractedBytes,
		MaxEntries:        cfg.MaxArchiveEntries,
	})

	// Archive first: first match wins and .zip is also a supported extension.
	processors := NewFileProcessorRegistry(
		NewArchiveProcessor(expander, conv, registry, ArchiveOptions{
			MaxDepth:    cfg.MaxArchiveDepth,
			Concurrency: cfg.EntryConcurrency,
		}, logger),
		NewSingleFileProcessor(conv, registry, logger),
	)

	logger.Info("conversion pipeline initialized",
		"scratch_dir", scratch.Root(),
		"formats", len(registry.Extensions()),
		"entry_concurrency", cfg.EntryConcurrency,
	)

	return NewConversionService(repo, processors, scratch, registry, cfg.MaxUploadBytes, logger), nil
}
