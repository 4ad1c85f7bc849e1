package conversion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	"mdconv/internal/domain"
	"mdconv/internal/domain/models/conversion"
	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/formats"
)

// ArchiveOptions tunes archive processing.
type ArchiveOptions struct {
	// MaxDepth is how many levels of archives nested inside the upload are expanded.
	MaxDepth int
	// Concurrency is the number of members converted at once (1 = sequential).
	Concurrency int
}

// archiveProcessor expands an uploaded archive and converts every supported member.
//
// Member failures are contained: each becomes an error outcome and the batch
// continues. Only an unreadable top-level archive fails the request.
type archiveProcessor struct {
	expander  *Expander
	converter convSvc.Converter
	registry  *formats.Registry
	opts      ArchiveOptions
	logger    *slog.Logger
}

// NewArchiveProcessor creates a new archive processor
func NewArchiveProcessor(
	expander *Expander,
	converter convSvc.Converter,
	registry *formats.Registry,
	opts ArchiveOptions,
	logger *slog.Logger,
) convSvc.FileProcessor {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &archiveProcessor{
		expander:  expander,
		converter: converter,
		registry:  registry,
		opts:      opts,
		logger:    logger,
	}
}

// CanProcess returns true for archive extensions (.zip)
func (p *archiveProcessor) CanProcess(filename string) bool {
	return p.registry.IsArchive(filename)
}

func (p *archiveProcessor) Process(ctx context.Context, path, filename string) (*conversion.BatchResult, error) {
	// One budget covers the upload and every archive nested in it.
	outcomes, err := p.expand(ctx, path, "", 0, p.expander.NewBudget())
	if err != nil {
		return nil, err
	}

	if len(outcomes) == 0 {
		return nil, &domain.ValidationError{
			Message:   "no supported files found in the ZIP archive",
			Supported: p.registry.Extensions(),
		}
	}

	result := &conversion.BatchResult{Kind: conversion.BatchKindArchive, Files: outcomes}

	p.logger.Info("archive processing complete",
		"filename", filename,
		"files", len(outcomes),
		"failed", result.Failures(),
	)

	return result, nil
}

// Name returns the processor name
func (p *archiveProcessor) Name() string {
	return "ArchiveProcessor"
}

// expand unpacks the archive at path and converts its members.
// prefix is prepended to member names of nested archives.
func (p *archiveProcessor) expand(ctx context.Context, path, prefix string, depth int, budget *Budget) ([]conversion.FileOutcome, error) {
	expansion, err := p.expander.Expand(ctx, path, budget)
	if err != nil {
		return nil, err
	}
	defer expansion.Close()

	var (
		mu      sync.Mutex
		results = make(map[int][]conversion.FileOutcome)
		count   int
		walkErr error
	)

	g := new(errgroup.Group)
	g.SetLimit(p.opts.Concurrency)

	for entry, err := range expansion.Entries() {
		if err != nil {
			walkErr = err
			break
		}
		if ctx.Err() != nil {
			break
		}

		idx := count
		count++
		g.Go(func() error {
			outcomes := p.convertEntry(ctx, entry, prefix, depth, budget)
			mu.Lock()
			results[idx] = outcomes
			mu.Unlock()
			return nil
		})
	}

	// Members must be done with the namespace before it is closed.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, &domain.ArchiveError{Err: walkErr}
	}

	outcomes := make([]conversion.FileOutcome, 0, count)
	for i := range count {
		outcomes = append(outcomes, results[i]...)
	}
	return outcomes, nil
}

// convertEntry converts one member. Nested archives are expanded in place and
// contribute their own members; anything that goes wrong becomes an error
// outcome, including a converter panic.
func (p *archiveProcessor) convertEntry(ctx context.Context, entry Entry, prefix string, depth int, budget *Budget) (outcomes []conversion.FileOutcome) {
	name := prefix + entry.RelPath

	// Members run on errgroup goroutines, out of reach of the HTTP recovery middleware.
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("converter panic: %v", r)
			p.logger.Error("archive member panicked",
				"file", name,
				"error", err,
				"stack", string(debug.Stack()),
			)
			outcomes = []conversion.FileOutcome{conversion.Failed(name, err)}
		}
	}()

	if p.registry.IsArchive(entry.Path) {
		if depth >= p.opts.MaxDepth {
			err := fmt.Errorf("nested archive exceeds depth limit of %d", p.opts.MaxDepth)
			p.logger.Warn("skipping nested archive", "file", name, "error", err)
			return []conversion.FileOutcome{conversion.Failed(name, err)}
		}
		nested, err := p.expand(ctx, entry.Path, name+"/", depth+1, budget)
		if err != nil {
			p.logger.Warn("failed to expand nested archive", "file", name, "error", err)
			return []conversion.FileOutcome{conversion.Failed(name, err)}
		}
		return nested
	}

	markdown, err := p.converter.Convert(ctx, entry.Path)
	if err != nil {
		p.logger.Warn("file conversion failed", "file", name, "error", err)
		return []conversion.FileOutcome{conversion.Failed(name, err)}
	}

	p.logger.Debug("archive member converted", "file", name)
	return []conversion.FileOutcome{conversion.Succeeded(name, markdown)}
}
