package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// multipartOverhead is allowed on top of the file size limit for boundaries and headers.
const multipartOverhead = 1 << 20

// ErrUploadTooLarge is returned by ReadUpload when the body exceeds the limit.
var ErrUploadTooLarge = errors.New("upload exceeds the size limit")

// ReadUpload reads the multipart file field from the request body.
// The body is capped at maxBytes plus multipart overhead; larger bodies
// fail with ErrUploadTooLarge.
func ReadUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (string, []byte, error) {
	limit := maxBytes + multipartOverhead
	if r.ContentLength > limit {
		return "", nil, ErrUploadTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	// Parts beyond 32MB spill to temporary files, removed below.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, ErrUploadTooLarge
		}
		return "", nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, fmt.Errorf("missing %q file field", field)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}

	return header.Filename, content, nil
}

// QueryInt parses an optional integer query parameter.
// Absent or empty parameters yield defaultValue.
func QueryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
