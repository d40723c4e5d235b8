package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
)

func TestProjectService(t *testing.T) {
	ctx := context.Background()
	projects, comments := newServices(t)

	created, err := projects.Create(ctx, models.ProjectInput{
		Title:        ptr("Demo"),
		Description:  ptr("a demo"),
		Technologies: &models.StringList{"Go", "Angular"},
		UserID:       ptr(int64(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	t.Run("CreateRequiresTitle", func(t *testing.T) {
		_, err := projects.Create(ctx, models.ProjectInput{Description: ptr("no title")})
		assert.True(t, errs.IsMissingRequiredFieldError(err))

		all, err := projects.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := projects.Get(ctx, 42)
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("BlankSearchIsEmpty", func(t *testing.T) {
		found, err := projects.Search(ctx, "  ")
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("SearchByTechnology", func(t *testing.T) {
		found, err := projects.Search(ctx, "angu")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, created.ID, found[0].ID)
	})

	t.Run("ListByUser", func(t *testing.T) {
		mine, err := projects.ListByUser(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		none, err := projects.ListByUser(ctx, 4)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("UpdateRejectsBlankTitle", func(t *testing.T) {
		_, err := projects.Update(ctx, created.ID, models.ProjectInput{Title: ptr("")})
		assert.True(t, errs.IsInvalidFieldError(err))
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		_, err := projects.Update(ctx, 42, models.ProjectInput{Title: ptr("x")})
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("ImageURL", func(t *testing.T) {
		url, err := projects.ImageURL(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, url)

		require.NoError(t, projects.AttachImage(ctx, created.ID, "/uploads/file-1.png"))
		url, err = projects.ImageURL(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "/uploads/file-1.png", url)

		assert.True(t, errs.IsNotFound(projects.AttachImage(ctx, 42, "/uploads/x.png")))
	})

	t.Run("AddImageAppendsOnceMainIsSet", func(t *testing.T) {
		require.NoError(t, projects.AddImage(ctx, created.ID, "/uploads/file-2.png"))
		require.NoError(t, projects.AddImage(ctx, created.ID, "/uploads/file-3.png"))

		got, err := projects.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ImageURL)
		assert.Equal(t, "/uploads/file-1.png", *got.ImageURL)
		assert.Equal(t, models.StringList{"/uploads/file-2.png", "/uploads/file-3.png"}, got.Images)

		assert.True(t, errs.IsNotFound(projects.AddImage(ctx, 42, "/uploads/x.png")))
	})

	t.Run("DeleteCascadesComments", func(t *testing.T) {
		_, err := comments.Create(ctx, models.CommentInput{ProjectID: created.ID, Email: "a@b.com", Rating: ptr(5)})
		require.NoError(t, err)

		require.NoError(t, projects.Delete(ctx, created.ID))

		summary, err := comments.ForProject(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TotalComments)

		assert.True(t, errs.IsNotFound(projects.Delete(ctx, created.ID)))
	})
}
