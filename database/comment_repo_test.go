package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/testing/testdb"
)

func TestCommentRepo(t *testing.T) {
	ctx := context.Background()
	d := testdb.Open(t)
	repo := d.CommentRepo()

	project := models.Project{Title: "Commented"}
	require.NoError(t, d.ProjectRepo().Add(ctx, &project))

	comment := models.Comment{
		ProjectID:  project.ID,
		Content:    ptr("Looks great"),
		Rating:     ptr(4),
		Email:      "fan@example.com",
		AuthorName: models.DefaultAuthorName,
	}
	require.NoError(t, repo.Add(ctx, &comment))

	t.Run("Find", func(t *testing.T) {
		found, err := repo.FindByID(ctx, comment.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Looks great", *found.Content)
		assert.Equal(t, 4, *found.Rating)

		byProject, err := repo.FindByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Len(t, byProject, 1)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		missing, err := repo.FindByID(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("UpdateClearsContentKeepsRating", func(t *testing.T) {
		updated, err := repo.Update(ctx, comment.ID, models.CommentInput{Email: "fan@example.com", Content: ptr("  ")})
		require.NoError(t, err)
		assert.Nil(t, updated.Content)
		assert.Equal(t, 4, *updated.Rating)
		assert.Equal(t, "fan@example.com", updated.Email)
	})

	t.Run("EmptyPatchChangesNothing", func(t *testing.T) {
		before, err := repo.FindByID(ctx, comment.ID)
		require.NoError(t, err)

		after, err := repo.Update(ctx, comment.ID, models.CommentInput{Email: "fan@example.com", Author: ptr("  ")})
		require.NoError(t, err)
		assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
		assert.Equal(t, before.AuthorName, after.AuthorName)

		_, err = repo.Update(ctx, 99, models.CommentInput{Email: "fan@example.com"})
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		_, err := repo.Update(ctx, 99, models.CommentInput{Rating: ptr(2)})
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, comment.ID))
		assert.True(t, errs.IsNotFound(repo.Delete(ctx, comment.ID)))
	})
}

func TestCommentRepo_ForeignKey(t *testing.T) {
	ctx := context.Background()
	repo := testdb.Open(t).CommentRepo()

	comment := models.Comment{ProjectID: 12345, Rating: ptr(3), Email: "a@b.com", AuthorName: "A"}
	err := repo.Add(ctx, &comment)
	require.Error(t, err)
	assert.True(t, errs.IsBadRequest(errs.NewDatabaseError("create", "comment", err)))
}
