package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"mdconv/internal/config"
	"mdconv/internal/domain/models/conversion"
	convSvc "mdconv/internal/domain/services/conversion"
	"mdconv/internal/httputil"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConversionHandler handles conversion HTTP requests.
// Handlers only marshal requests to the conversion service.
type ConversionHandler struct {
	service        convSvc.ConversionService
	store          Pinger
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewConversionHandler creates a new conversion handler
func NewConversionHandler(service convSvc.ConversionService, store Pinger, maxUploadBytes int64, logger *slog.Logger) *ConversionHandler {
	return &ConversionHandler{
		service:        service,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes mounts the conversion API on mux.
func (h *ConversionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/supported-formats", h.SupportedFormats)
	mux.HandleFunc("POST /api/convert", h.Convert)
	mux.HandleFunc("GET /api/history", h.History)
	mux.HandleFunc("GET /api/conversion/{id}", h.GetConversion)
}

// ConvertResponse is the body of a successful upload
type ConvertResponse struct {
	Record *conversion.ConversionRecord `json:"record"`
	Type   conversion.BatchKind         `json:"type"`
	Files  []conversion.FileOutcome     `json:"files"`
}

// Convert converts one uploaded file.
// POST /api/convert (multipart form, field "file")
func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	logger := httputil.Logger(r, h.logger)

	filename, content, err := httputil.ReadUpload(w, r, "file", h.maxUploadBytes)
	if err != nil {
		if errors.Is(err, httputil.ErrUploadTooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("conversion requested", "filename", filename, "size", len(content))

	result, err := h.service.Convert(r.Context(), &convSvc.ConversionRequest{
		Filename: filename,
		Content:  content,
	})
	if err != nil {
		handleError(w, logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, ConvertResponse{
		Record: result.Record,
		Type:   result.Result.Kind,
		Files:  result.Result.Files,
	})
}

// History lists past conversions, newest first.
// GET /api/history?skip=0&limit=10
func (h *ConversionHandler) History(w http.ResponseWriter, r *http.Request) {
	skip, err := httputil.QueryInt(r, "skip", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := httputil.QueryInt(r, "limit", config.DefaultHistoryLimit)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, err := h.service.ListHistory(r.Context(), &convSvc.HistoryRequest{Skip: skip, Limit: limit})
	if err != nil {
		handleError(w, httputil.Logger(r, h.logger), err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summaries)
}

// GetConversion returns one record including its content.
// GET /api/conversion/{id}
func (h *ConversionHandler) GetConversion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		httputil.RespondError(w, http.StatusBadRequest, "conversion id must be a positive integer")
		return
	}

	record, err := h.service.GetRecord(r.Context(), id)
	if err != nil {
		handleError(w, httputil.Logger(r, h.logger), err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, record)
}

// SupportedFormats lists accepted extensions and their dependency notes.
// GET /api/supported-formats
func (h *ConversionHandler) SupportedFormats(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.service.SupportedFormats())
}

// Health reports liveness and record store reachability.
// GET /api/health
func (h *ConversionHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		httputil.Logger(r, h.logger).Error("health check failed", "error", err)
		httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"message": "record store unreachable",
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "mdconv API is running",
	})
}
