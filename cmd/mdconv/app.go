package main

import (
	"context"
	"fmt"
	"os"

	"mdconv/internal/config"
	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/repository"
	serviceConversion "mdconv/internal/service/conversion"
)

// app is the conversion service wired from the environment, as the server does.
type app struct {
	service convSvc.ConversionService
	closers []func()
}

// openApp builds the service. Logs go to stderr so stdout stays pipeable.
func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := config.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	a := &app{closers: []func(){func() { _ = closeLog() }}}

	store, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	converter, err := serviceConversion.SetupConverter(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.service, err = serviceConversion.SetupService(cfg, store, converter, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
