package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/project-showcase/config"
	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/services"
	"github.com/rpupo63/project-showcase/testing/testdb"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func newTestRouter(t *testing.T, origins ...string) *chi.Mux {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg := config.Config{
		Env:             "test",
		UploadDir:       t.TempDir(),
		UploadMaxBytes:  1024,
		AcceptedOrigins: origins,
	}
	router, err := newRouter(testdb.Open(t), withConfig(cfg))
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestProjectCommentFlow(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/projects", map[string]any{"title": "Demo"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[models.Project](t, w)
	assert.Equal(t, int64(1), project.ID)
	assert.Equal(t, "Demo", project.Title)

	w = doJSON(t, router, http.MethodPost, "/comments", map[string]any{
		"projectId": 1,
		"content":   "",
		"rating":    4,
		"email":     "a@b.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[models.Comment](t, w)
	assert.Nil(t, comment.Content)
	assert.Equal(t, models.DefaultAuthorName, comment.AuthorName)

	w = doJSON(t, router, http.MethodGet, "/comments/project/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[services.CommentSummary](t, w)
	assert.Equal(t, 4.0, summary.AverageRating)
	assert.Equal(t, 1, summary.TotalComments)
	assert.Equal(t, 1, summary.TotalRatings)
}

func TestProjectHandlers(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/projects", map[string]any{
		"title":        "Showcase",
		"description":  "Portfolio site",
		"technologies": []string{"Go", "Chi"},
		"userId":       9,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Project](t, w)

	t.Run("GetBothPrefixes", func(t *testing.T) {
		for _, path := range []string{"/projects/1", "/api/projects/1"} {
			w := doJSON(t, router, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, w.Code, path)
		}
	})

	t.Run("List", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/projects", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.Project](t, w), 1)
	})

	t.Run("Search", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/projects/search?q=chi", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.Project](t, w), 1)

		w = doJSON(t, router, http.MethodGet, "/projects/search", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("ByUser", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/projects/user/9", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.Project](t, w), 1)

		w = doJSON(t, router, http.MethodGet, "/projects/user/10", nil)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("MissingTitle", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/projects", map[string]any{"description": "no title"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "title", decode[ErrorResponse](t, w).Field)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewBufferString("{not json"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		for _, path := range []string{"/projects/abc", "/projects/0", "/projects/-1"} {
			w := doJSON(t, router, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/projects/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decode[ErrorResponse](t, w)
		assert.Equal(t, "error", body.Status)
		assert.Empty(t, body.Cause)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/projects/1", map[string]any{"demo": "https://demo.example"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[models.Project](t, w)
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, "https://demo.example", *updated.Demo)
		assert.Equal(t, models.StringList{"Go", "Chi"}, updated.Technologies)

		w = doJSON(t, router, http.MethodPut, "/projects/1", map[string]any{"title": "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodPut, "/projects/999", map[string]any{"title": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/projects/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "project deleted", decode[MessageResponse](t, w).Message)

		w = doJSON(t, router, http.MethodDelete, "/projects/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	})
}

func TestCommentHandlers(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/projects", map[string]any{"title": "Rated"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/comments", map[string]any{
		"projectId":  1,
		"content":    "Nice work",
		"email":      "Owner@Example.com",
		"authorName": "Owner",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[models.Comment](t, w)
	assert.Equal(t, "owner@example.com", comment.Email)

	t.Run("CreateValidation", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/comments", map[string]any{"projectId": 1, "content": "x", "email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email", decode[ErrorResponse](t, w).Field)

		w = doJSON(t, router, http.MethodPost, "/comments", map[string]any{"projectId": 1, "email": "a@b.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodPost, "/comments", map[string]any{"projectId": 42, "rating": 5, "email": "a@b.com"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UpdateOwnership", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/comments/1", map[string]any{"email": "other@example.com", "rating": 2})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, http.MethodPut, "/comments/1", map[string]any{"email": "other@example.com", "content": "", "rating": 0})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, http.MethodPut, "/comments/99", map[string]any{"email": "other@example.com", "rating": 2})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doJSON(t, router, http.MethodPut, "/comments/1", map[string]any{"email": "OWNER@example.com", "rating": 5})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[models.Comment](t, w)
		assert.Equal(t, 5, *updated.Rating)
		assert.Equal(t, "Nice work", *updated.Content)
	})

	t.Run("GetAndList", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/comments/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, http.MethodGet, "/comments", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.Comment](t, w), 1)

		w = doJSON(t, router, http.MethodGet, "/comments/project/2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decode[services.CommentSummary](t, w)
		assert.Empty(t, summary.Comments)
		assert.Equal(t, 0.0, summary.AverageRating)
	})

	t.Run("DeleteWithQueryEmail", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/comments/1?email=someone@else.com", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, router, http.MethodDelete, "/comments/1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(t, router, http.MethodDelete, "/comments/1?email=owner@example.com", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "comment deleted", decode[MessageResponse](t, w).Message)
	})

	t.Run("DeleteWithBodyEmail", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/comments", map[string]any{"projectId": 1, "rating": 3, "email": "b@c.com"})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decode[models.Comment](t, w).ID

		w = doJSON(t, router, http.MethodDelete, "/comments/"+strconv.FormatInt(id, 10), map[string]string{"email": "b@c.com"})
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestFileHandlers(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/projects", map[string]any{"title": "With image"})
	require.Equal(t, http.StatusCreated, w.Code)

	upload := func(path string, fields map[string]string, file []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		for k, v := range fields {
			require.NoError(t, mw.WriteField(k, v))
		}
		if file != nil {
			part, err := mw.CreateFormFile("file", "shot.png")
			require.NoError(t, err)
			_, err = part.Write(file)
			require.NoError(t, err)
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, path, &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("NoImageYet", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/files/image/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"fileUrl":null}`, w.Body.String())
	})

	t.Run("UploadAndLink", func(t *testing.T) {
		w := upload("/files/upload", map[string]string{"projectId": "1"}, pngHeader)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[UploadResponse](t, w)
		assert.Equal(t, "file uploaded and project updated", resp.Message)
		assert.Equal(t, "image/png", resp.MIMEType)

		w = doJSON(t, router, http.MethodGet, "/game/image/1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		image := decode[ImageResponse](t, w)
		require.NotNil(t, image.FileURL)
		assert.Equal(t, resp.FileURL, *image.FileURL)

		w = doJSON(t, router, http.MethodGet, resp.FileURL, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pngHeader, w.Body.Bytes())
	})

	t.Run("UploadWithoutProject", func(t *testing.T) {
		w := upload("/game/upload/file", nil, pngHeader)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "file uploaded", decode[UploadResponse](t, w).Message)
	})

	t.Run("UnknownProject", func(t *testing.T) {
		w := upload("/files/upload", map[string]string{"projectId": "77"}, pngHeader)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "file uploaded (project not found)", decode[UploadResponse](t, w).Message)
	})

	t.Run("Rejections", func(t *testing.T) {
		w := upload("/files/upload", map[string]string{"projectId": "1"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = upload("/files/upload", map[string]string{"projectId": "abc"}, pngHeader)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = upload("/files/upload", nil, []byte("plain text is not media"))
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)

		w = upload("/files/upload", nil, append(append([]byte{}, pngHeader...), make([]byte, 4096)...))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		w = doJSON(t, router, http.MethodPost, "/files/upload", map[string]string{"file": "x"})
		assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	})

	t.Run("NoDirectoryListing", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/uploads/", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[HealthResponse](t, w)
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, "ok", health.Database)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	router := newTestRouter(t, "https://allowed.example")

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/projects", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := preflight("https://allowed.example")
	assert.Equal(t, "https://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
