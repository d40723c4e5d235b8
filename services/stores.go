package services

import (
	"context"

	"github.com/rpupo63/project-showcase/models"
)

// ProjectStore is the persistence contract for projects. FindByID returns
// (nil, nil) for a missing id; Update and Delete wrap errs.ErrNotFound.
type ProjectStore interface {
	FindAll(ctx context.Context) ([]models.Project, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	FindByUser(ctx context.Context, userID int64) ([]models.Project, error)
	Search(ctx context.Context, query string) ([]models.Project, error)
	Add(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id int64, patch models.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
	SetImageURL(ctx context.Context, id int64, url string) error
}

// CommentStore is the persistence contract for comments, with the same
// not-found conventions as ProjectStore.
type CommentStore interface {
	FindAll(ctx context.Context) ([]models.Comment, error)
	FindByID(ctx context.Context, id int64) (*models.Comment, error)
	FindByProject(ctx context.Context, projectID int64) ([]models.Comment, error)
	Add(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, id int64, patch models.CommentInput) (*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}
