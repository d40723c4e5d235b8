package client_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/project-showcase/api"
	"github.com/rpupo63/project-showcase/client"
	"github.com/rpupo63/project-showcase/config"
	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/testing/testdb"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Port:            9091,
		Env:             "test",
		UploadDir:       t.TempDir(),
		UploadMaxBytes:  1 << 20,
		AcceptedOrigins: []string{"*"},
	}
	server, err := api.NewServer(cfg, testdb.Open(t))
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestRemote(t *testing.T) {
	ctx := context.Background()
	ts := newAPIServer(t)
	remote, err := client.NewRemote(ts.URL+"/api", ts.Client())
	require.NoError(t, err)

	project, err := remote.CreateProject(ctx, models.ProjectInput{Title: ptr("Remote"), UserID: ptr(int64(3))})
	require.NoError(t, err)
	assert.Equal(t, int64(1), project.ID)

	t.Run("Reads", func(t *testing.T) {
		got, err := remote.Project(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, "Remote", got.Title)

		projects, err := remote.Projects(ctx)
		require.NoError(t, err)
		assert.Len(t, projects, 1)

		projects, err = remote.SearchProjects(ctx, "remo")
		require.NoError(t, err)
		assert.Len(t, projects, 1)

		projects, err = remote.ProjectsByUser(ctx, 4)
		require.NoError(t, err)
		assert.NotNil(t, projects)
		assert.Empty(t, projects)
	})

	t.Run("StatusErrors", func(t *testing.T) {
		_, err := remote.Project(ctx, 404)
		require.Error(t, err)
		assert.True(t, errs.IsNotFound(err))
		assert.False(t, errors.Is(err, client.ErrUnavailable))

		_, err = remote.CreateProject(ctx, models.ProjectInput{})
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "title", apiErr.Field)
	})

	t.Run("Comments", func(t *testing.T) {
		comment, err := remote.CreateComment(ctx, models.CommentInput{ProjectID: project.ID, Rating: ptr(4), Email: "a@b.com"})
		require.NoError(t, err)

		summary, err := remote.ProjectComments(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, 4.0, summary.AverageRating)

		_, err = remote.UpdateComment(ctx, comment.ID, models.CommentInput{Email: "x@y.com", Rating: ptr(1)})
		assert.True(t, errs.IsForbidden(err))

		require.NoError(t, remote.DeleteComment(ctx, comment.ID, "a@b.com"))
	})

	t.Run("Files", func(t *testing.T) {
		image, err := remote.ProjectImage(ctx, project.ID)
		require.NoError(t, err)
		assert.Empty(t, image)

		result, err := remote.UploadFile(ctx, "shot.png", bytes.NewReader(pngHeader), project.ID)
		require.NoError(t, err)
		assert.Equal(t, "image/png", result.MIMEType)
		assert.Equal(t, int64(len(pngHeader)), result.Size)
		assert.Equal(t, "file uploaded and project updated", result.Message)
		assert.Equal(t, "/uploads/"+result.Filename, result.FileURL)

		image, err = remote.ProjectImage(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, result.FileURL, image)

		unlinked, err := remote.UploadFile(ctx, "shot.png", bytes.NewReader(pngHeader), 0)
		require.NoError(t, err)
		assert.Equal(t, "file uploaded", unlinked.Message)

		_, err = remote.UploadFile(ctx, "notes.txt", bytes.NewReader([]byte("plain text")), 0)
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnsupportedMediaType, apiErr.StatusCode)
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		updated, err := remote.UpdateProject(ctx, project.ID, models.ProjectInput{MadeWith: ptr("Go")})
		require.NoError(t, err)
		assert.Equal(t, "Go", *updated.MadeWith)

		require.NoError(t, remote.DeleteProject(ctx, project.ID))
		assert.True(t, errs.IsNotFound(remote.DeleteProject(ctx, project.ID)))
	})
}

func TestRemote_Unavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("GatewayStatus", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer ts.Close()

		remote, err := client.NewRemote(ts.URL, ts.Client())
		require.NoError(t, err)
		_, err = remote.Projects(ctx)
		assert.ErrorIs(t, err, client.ErrUnavailable)

		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "upstream down", apiErr.Message())
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		remote, err := client.NewRemote(url, nil)
		require.NoError(t, err)
		_, err = remote.Projects(ctx)
		assert.ErrorIs(t, err, client.ErrUnavailable)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ts := newAPIServer(t)
		remote, err := client.NewRemote(ts.URL, ts.Client())
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = remote.Projects(canceled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, client.ErrUnavailable)
	})
}

func TestNewRemote_InvalidURL(t *testing.T) {
	_, err := client.NewRemote("", nil)
	assert.Error(t, err)
	_, err = client.NewRemote("ftp://example.com", nil)
	assert.Error(t, err)
}
