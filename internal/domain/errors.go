package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConversion = errors.New("conversion failed")
	ErrArchive    = errors.New("archive unreadable")
	ErrStorage    = errors.New("storage failed")
)

// ValidationError indicates user-correctable input: an unsupported file type
// or an archive without a single convertible member.
// Supported carries the accepted extensions so callers can surface them.
type ValidationError struct {
	Message   string
	Supported []string
}

// NewUnsupportedTypeError builds the validation error returned for a rejected extension.
func NewUnsupportedTypeError(ext string, supported []string) *ValidationError {
	if ext == "" {
		ext = "(none)"
	}
	return &ValidationError{
		Message:   fmt.Sprintf("unsupported file type %q; supported types are: %s", ext, strings.Join(supported, ", ")),
		Supported: supported,
	}
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConversionError indicates the converter could not decode a single uploaded file.
type ConversionError struct {
	Filename string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("file conversion failed for %s: %v", e.Filename, e.Err)
}
func (e *ConversionError) Unwrap() error        { return e.Err }
func (e *ConversionError) StatusCode() int      { return http.StatusInternalServerError }
func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

// ArchiveError indicates a corrupt, unreadable or unsafe archive.
type ArchiveError struct {
	Err error
}

func (e *ArchiveError) Error() string        { return fmt.Sprintf("archive error: %v", e.Err) }
func (e *ArchiveError) Unwrap() error        { return e.Err }
func (e *ArchiveError) StatusCode() int      { return http.StatusInternalServerError }
func (e *ArchiveError) Is(target error) bool { return target == ErrArchive }

// StorageError indicates the record store rejected or failed an operation.
// The conversion output of the request is lost; nothing is cached.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string        { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error        { return e.Err }
func (e *StorageError) StatusCode() int      { return http.StatusInternalServerError }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// NotFoundError indicates a resource was not found
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
