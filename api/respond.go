package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rpupo63/project-showcase/errs"
)

const maxResponseSize = 10 * 1024 * 1024 // 10MB

type Responder struct {
	logger zerolog.Logger
	// exposeCauses adds the underlying error chain to error bodies.
	exposeCauses bool
}

func NewResponder(logger zerolog.Logger, exposeCauses bool) Responder {
	return Responder{logger: logger, exposeCauses: exposeCauses}
}

// WriteJSON marshals data before touching the response so a marshal failure
// can still become a clean 500.
func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal Server Error","status":"error"}`))
		return
	}

	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		status = http.StatusInternalServerError
		jsonData, _ = json.Marshal(map[string]any{
			"error":        "Response too large",
			"status":       "error",
			"maxSizeMB":    maxResponseSize / (1024 * 1024),
			"actualSizeMB": len(jsonData) / (1024 * 1024),
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteMessage writes {"message": msg}.
func (r Responder) WriteMessage(w http.ResponseWriter, status int, msg string) {
	r.WriteJSON(w, status, MessageResponse{Message: msg})
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		response := ErrorResponse{
			Error:  "Internal Server Error",
			Status: "error",
		}
		if r.exposeCauses {
			response.Cause = err.Error()
		}
		r.WriteJSON(w, http.StatusInternalServerError, response)
		return
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().
			Int("status", apiErr.StatusCode).
			Bool("storage", errs.IsStorage(apiErr)).
			Str("error", apiErr.GetFullError()).
			Msg("request failed")
	} else {
		r.logger.Debug().
			Int("status", apiErr.StatusCode).
			Str("error", apiErr.Error()).
			Str("field", apiErr.Field).
			Msg("request rejected")
	}

	response := ErrorResponse{
		Error:   apiErr.Message(),
		Status:  "error",
		Field:   apiErr.Field,
		Details: apiErr.Details,
	}
	if apiErr.Cause != nil && r.exposeCauses {
		response.Cause = apiErr.GetFullError()
	}

	r.WriteJSON(w, apiErr.StatusCode, response)
}
