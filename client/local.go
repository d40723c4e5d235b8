package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/services"
)

const (
	ProjectsKey = "showcase_projects"
	CommentsKey = "showcase_comments"
)

// Local serves the DataAccess contract from a KV store with the same
// validation, ownership and statistics rules as the API.
type Local struct {
	projects *services.ProjectService
	comments *services.CommentService
}

func NewLocal(kv KV) *Local {
	store := &kvStore{kv: kv}
	projects := kvProjects{store}
	comments := kvComments{store}
	return &Local{
		projects: services.NewProjectService(projects),
		comments: services.NewCommentService(comments, projects),
	}
}

func (l *Local) Projects(ctx context.Context) ([]models.Project, error) {
	return l.projects.List(ctx)
}

func (l *Local) Project(ctx context.Context, id int64) (*models.Project, error) {
	return l.projects.Get(ctx, id)
}

func (l *Local) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	return l.projects.Create(ctx, in)
}

func (l *Local) UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	return l.projects.Update(ctx, id, in)
}

func (l *Local) DeleteProject(ctx context.Context, id int64) error {
	return l.projects.Delete(ctx, id)
}

func (l *Local) SearchProjects(ctx context.Context, query string) ([]models.Project, error) {
	return l.projects.Search(ctx, query)
}

func (l *Local) ProjectsByUser(ctx context.Context, userID int64) ([]models.Project, error) {
	return l.projects.ListByUser(ctx, userID)
}

func (l *Local) ProjectComments(ctx context.Context, projectID int64) (services.CommentSummary, error) {
	return l.comments.ForProject(ctx, projectID)
}

func (l *Local) CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	return l.comments.Create(ctx, in)
}

func (l *Local) UpdateComment(ctx context.Context, id int64, in models.CommentInput) (*models.Comment, error) {
	return l.comments.Update(ctx, id, in)
}

func (l *Local) DeleteComment(ctx context.Context, id int64, email string) error {
	return l.comments.Delete(ctx, id, email)
}

// UploadFile keeps the file inline as a base64 data URL. A linked project
// gets it as its main image, or as an extra image once one is set.
func (l *Local) UploadFile(ctx context.Context, name string, r io.Reader, projectID int64) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, services.DefaultUploadMaxBytes+1))
	if err != nil {
		return nil, errs.NewMalformedPayloadError("file", err)
	}
	if len(data) == 0 {
		return nil, errs.NewBadRequestErrorWithField("uploaded file is empty", "file", "")
	}
	if int64(len(data)) > services.DefaultUploadMaxBytes {
		return nil, errs.NewMaxBodySizeExceededError(services.DefaultUploadMaxBytes)
	}
	detected, mimeType, err := services.SniffUpload(data)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{
		FileURL:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Filename: services.UploadName(name, detected),
		Size:     int64(len(data)),
		MIMEType: mimeType,
		Message:  "file uploaded",
	}
	if projectID <= 0 {
		return result, nil
	}
	switch err := l.projects.AddImage(ctx, projectID, result.FileURL); {
	case err == nil:
		result.Message = "file uploaded and project updated"
	case errs.IsNotFound(err):
		result.Message = "file uploaded (project not found)"
	default:
		return nil, err
	}
	return result, nil
}

func (l *Local) ProjectImage(ctx context.Context, id int64) (string, error) {
	return l.projects.ImageURL(ctx, id)
}

// kvStore holds both collections under one lock so a project delete and its
// comment cascade are applied together.
type kvStore struct {
	mu sync.Mutex
	kv KV
}

func (s *kvStore) loadProjects() ([]models.Project, error) {
	var projects []models.Project
	return projects, s.load(ProjectsKey, &projects)
}

func (s *kvStore) loadComments() ([]models.Comment, error) {
	var comments []models.Comment
	return comments, s.load(CommentsKey, &comments)
}

func (s *kvStore) load(key string, dst any) error {
	data, ok, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *kvStore) save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.Set(key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

type kvProjects struct {
	*kvStore
}

func (s kvProjects) FindAll(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	models.SortProjectsNewestFirst(projects)
	return projects, nil
}

func (s kvProjects) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, nil
}

func (s kvProjects) FindByUser(ctx context.Context, userID int64) ([]models.Project, error) {
	return s.filter(func(p models.Project) bool {
		return p.UserID != nil && *p.UserID == userID
	})
}

func (s kvProjects) Search(ctx context.Context, query string) ([]models.Project, error) {
	return s.filter(func(p models.Project) bool {
		return p.Matches(query)
	})
}

func (s kvProjects) filter(keep func(models.Project) bool) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	matched := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if keep(p) {
			matched = append(matched, p)
		}
	}
	models.SortProjectsNewestFirst(matched)
	return matched, nil
}

func (s kvProjects) Add(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	var maxID int64
	for _, p := range projects {
		maxID = max(maxID, p.ID)
	}
	project.ID = maxID + 1
	project.CreatedAt = now()
	project.UpdatedAt = project.CreatedAt
	return s.save(ProjectsKey, append(projects, *project))
}

func (s kvProjects) Update(ctx context.Context, id int64, patch models.ProjectInput) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.loadProjects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID != id {
			continue
		}
		if patch.IsEmpty() {
			return &projects[i], nil
		}
		patch.ApplyTo(&projects[i])
		projects[i].UpdatedAt = now()
		if err := s.save(ProjectsKey, projects); err != nil {
			return nil, err
		}
		return &projects[i], nil
	}
	return nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
}

func (s kvProjects) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	kept := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}

	comments, err := s.loadComments()
	if err != nil {
		return err
	}
	keptComments := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ProjectID != id {
			keptComments = append(keptComments, c)
		}
	}

	if err := s.save(ProjectsKey, kept); err != nil {
		return err
	}
	if len(keptComments) != len(comments) {
		return s.save(CommentsKey, keptComments)
	}
	return nil
}

func (s kvProjects) SetImageURL(ctx context.Context, id int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects, err := s.loadProjects()
	if err != nil {
		return err
	}
	for i := range projects {
		if projects[i].ID == id {
			projects[i].ImageURL = &url
			projects[i].UpdatedAt = now()
			return s.save(ProjectsKey, projects)
		}
	}
	return fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
}

type kvComments struct {
	*kvStore
}

func (s kvComments) FindAll(ctx context.Context) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments, err := s.loadComments()
	if err != nil {
		return nil, err
	}
	models.SortCommentsNewestFirst(comments)
	return comments, nil
}

func (s kvComments) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments, err := s.loadComments()
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].ID == id {
			return &comments[i], nil
		}
	}
	return nil, nil
}

func (s kvComments) FindByProject(ctx context.Context, projectID int64) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments, err := s.loadComments()
	if err != nil {
		return nil, err
	}
	matched := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ProjectID == projectID {
			matched = append(matched, c)
		}
	}
	models.SortCommentsNewestFirst(matched)
	return matched, nil
}

func (s kvComments) Add(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments, err := s.loadComments()
	if err != nil {
		return err
	}
	var maxID int64
	for _, c := range comments {
		maxID = max(maxID, c.ID)
	}
	comment.ID = maxID + 1
	comment.CreatedAt = now()
	comment.UpdatedAt = comment.CreatedAt
	return s.save(CommentsKey, append(comments, *comment))
}

func (s kvComments) Update(ctx context.Context, id int64, patch models.CommentInput) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments, err := s.loadComments()
	if err != nil {
		return nil, err
	}
	for i := range comments {
		if comments[i].ID != id {
			continue
		}
		if patch.IsEmpty() {
			return &comments[i], nil
		}
		patch.ApplyTo(&comments[i])
		comments[i].UpdatedAt = now()
		if err := s.save(CommentsKey, comments); err != nil {
			return nil, err
		}
		return &comments[i], nil
	}
	return nil, fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
}

func (s kvComments) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comments, err := s.loadComments()
	if err != nil {
		return err
	}
	kept := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(comments) {
		return fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
	}
	return s.save(CommentsKey, kept)
}
