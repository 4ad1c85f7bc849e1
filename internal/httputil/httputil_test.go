package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestReadUpload(t *testing.T) {
	req := multipartRequest(t, "file", "notes.txt", []byte("hello"))

	name, content, err := ReadUpload(httptest.NewRecorder(), req, "file", 1024)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", name)
	assert.Equal(t, "hello", string(content))
}

func TestReadUpload_MissingField(t *testing.T) {
	req := multipartRequest(t, "attachment", "notes.txt", []byte("hello"))

	_, _, err := ReadUpload(httptest.NewRecorder(), req, "file", 1024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing "file" file field`)
}

func TestReadUpload_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewBufferString(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	_, _, err := ReadUpload(httptest.NewRecorder(), req, "file", 1024)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUploadTooLarge)
}

func TestReadUpload_TooLarge(t *testing.T) {
	req := multipartRequest(t, "file", "big.txt", bytes.Repeat([]byte("x"), multipartOverhead+64))

	_, _, err := ReadUpload(httptest.NewRecorder(), req, "file", 16)
	assert.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/history?skip=5&limit=abc", nil)

	n, err := QueryInt(req, "skip", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = QueryInt(req, "missing", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = QueryInt(req, "limit", 10)
	assert.EqualError(t, err, "limit must be an integer")
}

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusBadRequest, "unsupported file type", map[string]any{
		"supported_formats": []string{".txt", ".zip"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bad Request", body["title"])
	assert.Equal(t, "unsupported file type", body["detail"])
	assert.EqualValues(t, 400, body["status"])
	assert.Equal(t, []any{".txt", ".zip"}, body["supported_formats"])
}

func TestRespondError_TooLargeType(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusRequestEntityTooLarge, "too big")

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Type, "section-6.5.11")
	assert.Equal(t, "too big", body.Detail)
}

func TestRequestContext(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Empty(t, GetRequestID(req))
	assert.Same(t, fallback, Logger(req, fallback))

	req = WithRequestID(req, "req-1", fallback)
	assert.Equal(t, "req-1", GetRequestID(req))
	assert.NotSame(t, fallback, Logger(req, fallback))
}
