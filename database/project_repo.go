package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
)

const newestFirst = "created_at DESC, id DESC"

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindAll returns all projects, newest first
func (r *ProjectRepo) FindAll(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).Order(newestFirst).Find(&projects).Error
	return projects, err
}

// FindByID returns a project by its ID, or nil when there is none
func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByUser returns the projects owned by a user, newest first
func (r *ProjectRepo) FindByUser(ctx context.Context, userID int64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(newestFirst).
		Find(&projects).Error
	return projects, err
}

// Search narrows candidates in SQL and then applies the exact
// case-insensitive match in Go, since technologies are stored as JSON text.
func (r *ProjectRepo) Search(ctx context.Context, query string) ([]models.Project, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Project{}, nil
	}
	pattern := "%" + escapeLike(q) + "%"

	var candidates []models.Project
	err := r.db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(technologies) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern).
		Order(newestFirst).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0, len(candidates))
	for _, p := range candidates {
		if p.Matches(q) {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update writes only the supplied fields and returns the reloaded project.
func (r *ProjectRepo) Update(ctx context.Context, id int64, patch models.ProjectInput) (*models.Project, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		project, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
		}
		return project, nil
	}
	cols["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}

	project, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}
	return project, nil
}

// Delete removes a project and its comments in one transaction
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Project{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
		}
		return nil
	})
}

// SetImageURL replaces the project's main image
func (r *ProjectRepo) SetImageURL(ctx context.Context, id int64, url string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Updates(map[string]any{"image_url": url, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("project %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
