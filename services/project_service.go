package services

import (
	"context"
	"strings"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
)

// ProjectService applies validation and not-found rules on top of a ProjectStore.
// Every error it returns is an *errs.ApiErr.
type ProjectService struct {
	projects ProjectStore
}

func NewProjectService(projects ProjectStore) *ProjectService {
	return &ProjectService{projects: projects}
}

// List returns every project, newest first.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	projects, err := s.projects.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	return nonNilProjects(projects), nil
}

// Get returns one project or a not-found error naming the id.
func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewEntityNotFound("project", id)
	}
	return project, nil
}

// Create validates the input, stores the project and returns it as reloaded
// from the store.
func (s *ProjectService) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	project, err := in.NewProject()
	if err != nil {
		return nil, err
	}
	if err := s.projects.Add(ctx, &project); err != nil {
		return nil, errs.NewDatabaseError("create", "project", err)
	}
	return s.Get(ctx, project.ID)
}

// Update merges the supplied fields. An empty patch returns the stored
// project unchanged.
func (s *ProjectService) Update(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	if err := in.ValidateUpdate(); err != nil {
		return nil, err
	}
	project, err := s.projects.Update(ctx, id, in)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewEntityNotFound("project", id)
		}
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	return project, nil
}

// Delete removes the project and its comments.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		if errs.IsNotFound(err) {
			return errs.NewEntityNotFound("project", id)
		}
		return errs.NewDatabaseError("delete", "project", err)
	}
	return nil
}

// Search matches title, description and technologies. A blank query
// matches nothing.
func (s *ProjectService) Search(ctx context.Context, query string) ([]models.Project, error) {
	if strings.TrimSpace(query) == "" {
		return []models.Project{}, nil
	}
	projects, err := s.projects.Search(ctx, query)
	if err != nil {
		return nil, errs.NewDatabaseError("search", "projects", err)
	}
	return nonNilProjects(projects), nil
}

// ListByUser returns the projects owned by userID.
func (s *ProjectService) ListByUser(ctx context.Context, userID int64) ([]models.Project, error) {
	projects, err := s.projects.FindByUser(ctx, userID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	return nonNilProjects(projects), nil
}

// AttachImage makes url the project's main image.
func (s *ProjectService) AttachImage(ctx context.Context, id int64, url string) error {
	if err := s.projects.SetImageURL(ctx, id, url); err != nil {
		if errs.IsNotFound(err) {
			return errs.NewEntityNotFound("project", id)
		}
		return errs.NewDatabaseError("update", "project image", err)
	}
	return nil
}

// AddImage makes url the main image of a project that has none and appends
// it to Images otherwise.
func (s *ProjectService) AddImage(ctx context.Context, id int64, url string) error {
	current, err := s.ImageURL(ctx, id)
	if err != nil {
		return err
	}
	if current == "" {
		return s.AttachImage(ctx, id, url)
	}
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return errs.NewEntityNotFound("project", id)
	}
	images := append(models.StringList{}, project.Images...)
	images = append(images, url)
	if _, err := s.projects.Update(ctx, id, models.ProjectInput{Images: &images}); err != nil {
		if errs.IsNotFound(err) {
			return errs.NewEntityNotFound("project", id)
		}
		return errs.NewDatabaseError("update", "project images", err)
	}
	return nil
}

// ImageURL returns the project's main image, or "" when it has none or the
// project does not exist.
func (s *ProjectService) ImageURL(ctx context.Context, id int64) (string, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return "", errs.NewDatabaseError("find", "project image", err)
	}
	if project == nil || project.ImageURL == nil {
		return "", nil
	}
	url := strings.TrimSpace(*project.ImageURL)
	if url == "null" {
		return "", nil
	}
	return url, nil
}

func nonNilProjects(projects []models.Project) []models.Project {
	if projects == nil {
		return []models.Project{}
	}
	return projects
}
