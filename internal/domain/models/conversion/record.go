package conversion

import (
	"time"
)

// Status is the outcome of converting one file or one request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// BatchKind tells whether a request was a single file or an archive.
type BatchKind string

const (
	BatchKindSingle  BatchKind = "single"
	BatchKindArchive BatchKind = "archive"
)

// FileOutcome is the result of converting one file: the uploaded file itself
// or one member of an uploaded archive. Build it with Succeeded or Failed.
type FileOutcome struct {
	Filename string `json:"filename"`
	Status   Status `json:"status"`
	Content  string `json:"content"`
	Error    string `json:"error,omitempty"`
}

// Succeeded returns a success outcome carrying the converted markdown.
func Succeeded(filename, content string) FileOutcome {
	return FileOutcome{Filename: filename, Status: StatusSuccess, Content: content}
}

// Failed returns an error outcome. Content is always empty.
func Failed(filename string, err error) FileOutcome {
	return FileOutcome{Filename: filename, Status: StatusError, Error: err.Error()}
}

// OK reports whether the outcome is a success.
func (o FileOutcome) OK() bool {
	return o.Status == StatusSuccess
}

// BatchResult aggregates the outcomes of one request.
// A single-file batch holds exactly one outcome; an archive batch holds one
// outcome per convertible member, failures included.
type BatchResult struct {
	Kind  BatchKind     `json:"type"`
	Files []FileOutcome `json:"files"`
}

// Failures counts the outcomes with StatusError.
func (b *BatchResult) Failures() int {
	n := 0
	for _, f := range b.Files {
		if !f.OK() {
			n++
		}
	}
	return n
}

// ConversionRecord is the durable history entry for one top-level request.
// ID and CreatedAt are assigned by the record store on append.
type ConversionRecord struct {
	ID               int64     `json:"id" db:"id"`
	Filename         string    `json:"filename" db:"filename"`
	OriginalPath     string    `json:"original_path" db:"original_path"`
	ConvertedContent string    `json:"converted_content" db:"converted_content"`
	Status           Status    `json:"status" db:"status"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	ConversionTime   float64   `json:"conversion_time" db:"conversion_time"` // seconds
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// ConversionSummary is a history row without the converted content.
type ConversionSummary struct {
	ID             int64     `json:"id" db:"id"`
	Filename       string    `json:"filename" db:"filename"`
	Status         Status    `json:"status" db:"status"`
	FileSize       int64     `json:"file_size" db:"file_size"`
	ConversionTime float64   `json:"conversion_time" db:"conversion_time"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Summary drops the content and scratch path from a record.
func (r *ConversionRecord) Summary() ConversionSummary {
	return ConversionSummary{
		ID:             r.ID,
		Filename:       r.Filename,
		Status:         r.Status,
		FileSize:       r.FileSize,
		ConversionTime: r.ConversionTime,
		CreatedAt:      r.CreatedAt,
	}
}
