package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/services"
)

const (
	uploadFileField      = "file"
	uploadProjectIDField = "projectId"

	// room for multipart boundaries and the projectId field
	multipartOverhead = 64 * 1024
)

type fileHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
	uploads   *services.UploadStore
}

func newFileHandler(projects *services.ProjectService, uploads *services.UploadStore, exposeCauses bool) fileHandler {
	logger := log.With().Str("handlerName", "fileHandler").Logger()

	return fileHandler{
		responder: NewResponder(logger, exposeCauses),
		logger:    logger,
		projects:  projects,
		uploads:   uploads,
	}
}

// uploadFile stores a multipart "file" part and, when a projectId field is
// present, makes it the project's main image. The upload is kept even when
// the project is missing; the message says what happened.
// @Summary Upload file
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse "Bad Request - No file or invalid projectId"
// @Failure 413 {object} ErrorResponse "Request Entity Too Large"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type"
// @Router /files/upload [post]
func (h fileHandler) uploadFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)
		reader, err := r.MultipartReader()
		if err != nil {
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(r.Header.Get("Content-Type"), []string{"multipart/form-data"}))
			return
		}

		var (
			stored       *services.StoredFile
			rawProjectID string
		)
		for {
			part, err := reader.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				h.discard(stored)
				h.responder.WriteError(w, uploadReadError(err, h.uploads.MaxBytes()))
				return
			}

			switch part.FormName() {
			case uploadFileField:
				if stored != nil {
					part.Close()
					continue
				}
				file, err := h.uploads.Save(part, part.FileName())
				part.Close()
				if err != nil {
					h.responder.WriteError(w, err)
					return
				}
				stored = &file
			case uploadProjectIDField:
				value, err := io.ReadAll(io.LimitReader(part, 64))
				part.Close()
				if err != nil {
					h.discard(stored)
					h.responder.WriteError(w, uploadReadError(err, h.uploads.MaxBytes()))
					return
				}
				rawProjectID = strings.TrimSpace(string(value))
			default:
				part.Close()
			}
		}

		if stored == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError(uploadFileField))
			return
		}

		response := UploadResponse{
			FileURL:  stored.URL,
			Filename: stored.Name,
			Size:     stored.Size,
			MIMEType: stored.MIMEType,
			Message:  "file uploaded",
		}

		if rawProjectID == "" {
			h.responder.WriteJSON(w, http.StatusOK, response)
			return
		}

		projectID, err := strconv.ParseInt(rawProjectID, 10, 64)
		if err != nil || projectID <= 0 {
			h.discard(stored)
			h.responder.WriteError(w, errs.NewInvalidFieldError(uploadProjectIDField, "must be a positive integer"))
			return
		}

		switch err := h.projects.AttachImage(r.Context(), projectID, stored.URL); {
		case err == nil:
			response.Message = "file uploaded and project updated"
		case errs.IsNotFound(err):
			response.Message = "file uploaded (project not found)"
		default:
			h.logger.Error().Err(err).Int64("projectId", projectID).Msg("failed to link upload to project")
			response.Message = "file uploaded (project could not be updated)"
		}
		h.responder.WriteJSON(w, http.StatusOK, response)
	}
}

// getProjectImage returns the project's main image URL, or null.
func (h fileHandler) getProjectImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		url, err := h.projects.ImageURL(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var response ImageResponse
		if url != "" {
			response.FileURL = &url
		}
		h.responder.WriteJSON(w, http.StatusOK, response)
	}
}

func (h fileHandler) discard(stored *services.StoredFile) {
	if stored == nil {
		return
	}
	if err := h.uploads.Remove(stored.Name); err != nil {
		h.logger.Warn().Err(err).Str("filename", stored.Name).Msg("failed to remove rejected upload")
	}
}

func uploadReadError(err error, maxBytes int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errs.NewMaxBodySizeExceededError(maxBytes)
	}
	return errs.NewMalformedPayloadError("multipart", err)
}
