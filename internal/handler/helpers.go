package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"mdconv/internal/domain"
	"mdconv/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErr *domain.ValidationError
	var storageErr *domain.StorageError
	var httpErr domain.HTTPError

	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Supported) > 0 {
			httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Message, map[string]any{
				"supported_formats": validationErr.Supported,
			})
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &storageErr):
		logger.Error("record store failure", "op", storageErr.Op, "error", storageErr.Err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to record conversion")
	case errors.As(err, &httpErr):
		// conversion and archive failures carry the decoder's message
		logger.Warn("conversion failed", "error", err)
		httputil.RespondError(w, httpErr.StatusCode(), err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("request cancelled", "error", err)
		httputil.RespondError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		logger.Error("unexpected error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
