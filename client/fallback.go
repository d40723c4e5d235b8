package client

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/services"
)

// Fallback reads from the remote API and falls back to the local store when
// the API is unavailable. Writes only ever go to the remote API.
type Fallback struct {
	remote DataAccess
	local  DataAccess
	logger zerolog.Logger
}

func NewFallback(remote, local DataAccess, logger zerolog.Logger) *Fallback {
	return &Fallback{remote: remote, local: local, logger: logger}
}

func read[T any](f *Fallback, op string, call func(DataAccess) (T, error)) (T, error) {
	result, err := call(f.remote)
	if err == nil || !errors.Is(err, ErrUnavailable) {
		return result, err
	}
	f.logger.Warn().Err(err).Str("operation", op).Msg("remote unavailable, using local store")
	return call(f.local)
}

func (f *Fallback) Projects(ctx context.Context) ([]models.Project, error) {
	return read(f, "projects", func(d DataAccess) ([]models.Project, error) {
		return d.Projects(ctx)
	})
}

func (f *Fallback) Project(ctx context.Context, id int64) (*models.Project, error) {
	return read(f, "project", func(d DataAccess) (*models.Project, error) {
		return d.Project(ctx, id)
	})
}

func (f *Fallback) SearchProjects(ctx context.Context, query string) ([]models.Project, error) {
	return read(f, "searchProjects", func(d DataAccess) ([]models.Project, error) {
		return d.SearchProjects(ctx, query)
	})
}

func (f *Fallback) ProjectsByUser(ctx context.Context, userID int64) ([]models.Project, error) {
	return read(f, "projectsByUser", func(d DataAccess) ([]models.Project, error) {
		return d.ProjectsByUser(ctx, userID)
	})
}

func (f *Fallback) ProjectComments(ctx context.Context, projectID int64) (services.CommentSummary, error) {
	return read(f, "projectComments", func(d DataAccess) (services.CommentSummary, error) {
		return d.ProjectComments(ctx, projectID)
	})
}

func (f *Fallback) ProjectImage(ctx context.Context, id int64) (string, error) {
	return read(f, "projectImage", func(d DataAccess) (string, error) {
		return d.ProjectImage(ctx, id)
	})
}

func (f *Fallback) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	return f.remote.CreateProject(ctx, in)
}

func (f *Fallback) UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	return f.remote.UpdateProject(ctx, id, in)
}

func (f *Fallback) DeleteProject(ctx context.Context, id int64) error {
	return f.remote.DeleteProject(ctx, id)
}

func (f *Fallback) CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	return f.remote.CreateComment(ctx, in)
}

func (f *Fallback) UpdateComment(ctx context.Context, id int64, in models.CommentInput) (*models.Comment, error) {
	return f.remote.UpdateComment(ctx, id, in)
}

func (f *Fallback) DeleteComment(ctx context.Context, id int64, email string) error {
	return f.remote.DeleteComment(ctx, id, email)
}

func (f *Fallback) UploadFile(ctx context.Context, name string, r io.Reader, projectID int64) (*UploadResult, error) {
	return f.remote.UploadFile(ctx, name, r, projectID)
}
