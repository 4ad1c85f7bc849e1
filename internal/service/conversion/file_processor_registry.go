package conversion

import (
	"sync"

	convSvc "mdconv/internal/domain/services/conversion"
)

// FileProcessorRegistry routes materialized uploads to a FileProcessor.
//
// Each processor handles one shape of upload (archive vs individual file).
// GetProcessor uses "first match wins" in registration order, so the
// archive processor is registered before the single-file processor.
//
// Thread-safe for concurrent access during request handling.
type FileProcessorRegistry struct {
	mu         sync.RWMutex
	processors []convSvc.FileProcessor
}

// NewFileProcessorRegistry creates a registry holding processors in the given order.
func NewFileProcessorRegistry(processors ...convSvc.FileProcessor) *FileProcessorRegistry {
	r := &FileProcessorRegistry{
		processors: make([]convSvc.FileProcessor, 0, len(processors)),
	}
	for _, p := range processors {
		r.Register(p)
	}
	return r
}

// Register appends a file processor.
func (r *FileProcessorRegistry) Register(processor convSvc.FileProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = append(r.processors, processor)
}

// GetProcessor returns the first processor that can handle the given filename,
// or nil if none can.
func (r *FileProcessorRegistry) GetProcessor(filename string) convSvc.FileProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, processor := range r.processors {
		if processor.CanProcess(filename) {
			return processor
		}
	}
	return nil
}
