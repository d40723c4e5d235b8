package client

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/services"
)

// ProjectDetail is what a project page shows: the project and its comments.
type ProjectDetail struct {
	Project  models.Project          `json:"project"`
	Comments services.CommentSummary `json:"comments"`
}

// LoadProjectDetail fetches the project and its comment summary concurrently.
// The first failure cancels the other request.
func LoadProjectDetail(ctx context.Context, data DataAccess, projectID int64) (ProjectDetail, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		project *models.Project
		summary services.CommentSummary
	)
	g.Go(func() error {
		var err error
		project, err = data.Project(ctx, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = data.ProjectComments(ctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProjectDetail{}, err
	}
	return ProjectDetail{Project: *project, Comments: summary}, nil
}
