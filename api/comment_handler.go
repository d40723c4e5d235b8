package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/services"
)

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  *services.CommentService
}

func newCommentHandler(comments *services.CommentService, exposeCauses bool) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder: NewResponder(logger, exposeCauses),
		logger:    logger,
		comments:  comments,
	}
}

func (h commentHandler) getAllComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		comments, err := h.comments.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, comments)
	}
}

// getProjectComments returns a project's comments with their rating statistics
// @Summary Get project comments
// @Tags Comments
// @Produce json
// @Param projectID path int true "Project ID"
// @Success 200 {object} services.CommentSummary
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid projectID"
// @Router /comments/project/{projectID} [get]
func (h commentHandler) getProjectComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		summary, err := h.comments.ForProject(r.Context(), projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, summary)
	}
}

func (h commentHandler) getComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Get(r.Context(), commentID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, comment)
	}
}

// createComment adds a comment to a project
// @Summary Create comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param comment body models.CommentInput true "Comment with content and/or rating"
// @Success 201 {object} models.Comment
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid email or no content and no rating"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Router /comments [post]
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input models.CommentInput
		if err := decodeJSON(w, r, &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Create(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().
			Int64("commentId", comment.ID).
			Int64("projectId", comment.ProjectID).
			Msg("comment created")
		h.responder.WriteJSON(w, http.StatusCreated, comment)
	}
}

// updateComment edits a comment when the body's email owns it
// @Summary Update comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentID path int true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid email"
// @Failure 403 {object} ErrorResponse "Forbidden - Email does not own the comment"
// @Failure 404 {object} ErrorResponse "Not Found - Comment not found"
// @Router /comments/{commentID} [put]
func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var input models.CommentInput
		if err := decodeJSON(w, r, &input); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Update(r.Context(), commentID, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, http.StatusOK, comment)
	}
}

// deleteComment takes the owner's email from the JSON body or ?email=.
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := pathID(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var input deleteCommentRequest
		if hasBody(r) {
			if err := decodeJSON(w, r, &input); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}
		if input.Email == "" {
			input.Email = r.URL.Query().Get("email")
		}

		if err := h.comments.Delete(r.Context(), commentID, input.Email); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Int64("commentId", commentID).Msg("comment deleted")
		h.responder.WriteMessage(w, http.StatusOK, "comment deleted")
	}
}
