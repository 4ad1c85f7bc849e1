package conversion

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mdconv/internal/config"
	"mdconv/internal/domain/models/conversion"
	"mdconv/internal/formats"
)

// ConversionService is the conversion pipeline plus read access to its history.
type ConversionService interface {
	// Convert validates, converts and records one uploaded file.
	// Fails with *domain.ValidationError, *domain.ConversionError,
	// *domain.ArchiveError or *domain.StorageError.
	Convert(ctx context.Context, req *ConversionRequest) (*ConvertResult, error)

	// ListHistory returns record summaries, newest first.
	ListHistory(ctx context.Context, req *HistoryRequest) ([]conversion.ConversionSummary, error)

	// GetRecord returns one record or *domain.NotFoundError.
	GetRecord(ctx context.Context, id int64) (*conversion.ConversionRecord, error)

	// SupportedFormats lists the accepted extensions and their dependency notes.
	SupportedFormats() formats.Listing
}

// ConversionRequest is one upload. It lives only for a single Convert call.
type ConversionRequest struct {
	Filename string
	Content  []byte
}

// Validate checks the request shape. Extension support is checked separately
// so that the error can carry the supported list.
func (r *ConversionRequest) Validate(maxBytes int64) error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Filename,
			validation.Required,
			validation.Length(1, config.MaxFilenameLength),
		),
		validation.Field(&r.Content,
			validation.By(func(value interface{}) error {
				if int64(len(r.Content)) > maxBytes {
					return validation.NewError("validation_too_large", "file exceeds the upload size limit")
				}
				return nil
			}),
		),
	)
}

// ConvertResult is what a successful Convert returns to the caller: the
// persisted record plus the per-file outcomes, which are not persisted.
type ConvertResult struct {
	Record *conversion.ConversionRecord `json:"record"`
	Result *conversion.BatchResult      `json:"result"`
}

// HistoryRequest pages through the history.
type HistoryRequest struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// ApplyDefaults fills a zero limit with the default page size.
func (r *HistoryRequest) ApplyDefaults() {
	if r.Limit == 0 {
		r.Limit = config.DefaultHistoryLimit
	}
}

// Validate checks paging bounds.
func (r *HistoryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Skip, validation.Min(0)),
		validation.Field(&r.Limit, validation.Required, validation.Min(1), validation.Max(config.MaxHistoryLimit)),
	)
}
