package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rpupo63/project-showcase/database"
	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/services"
)

const maxJSONBodyBytes = 1 << 20

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, cfg router) *routeHandlers {
	projects := services.NewProjectService(database.ProjectRepo())

	var commentOpts []services.CommentServiceOption
	if cfg.notifier != nil {
		commentOpts = append(commentOpts, services.WithNotifier(cfg.notifier))
	}
	comments := services.NewCommentService(database.CommentRepo(), database.ProjectRepo(), commentOpts...)

	exposeCauses := cfg.config.IsDevelopment()
	return &routeHandlers{
		healthHandler:  newHealthHandler(database, cfg.startupTime, exposeCauses),
		projectHandler: newProjectHandler(projects, exposeCauses),
		commentHandler: newCommentHandler(comments, exposeCauses),
		fileHandler:    newFileHandler(projects, cfg.uploads, exposeCauses),
	}
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return 0, errs.NewMissingRequiredFieldError(param)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewInvalidFieldError(param, "must be a positive integer")
	}
	return id, nil
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxJSONBodyBytes)
		case errors.Is(err, io.EOF):
			return errs.NewMalformedPayloadError("json", errors.New("request body is empty"))
		default:
			return errs.NewMalformedPayloadError("json", err)
		}
	}
	return nil
}

// hasBody reports whether the request carries a JSON payload worth decoding.
func hasBody(r *http.Request) bool {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return false
	}
	return r.ContentLength > 0 || strings.Contains(r.Header.Get("Content-Type"), "json")
}
