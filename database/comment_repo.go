package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// FindAll returns all comments, newest first
func (r *CommentRepo) FindAll(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Order(newestFirst).Find(&comments).Error
	return comments, err
}

// FindByID returns a comment by its ID, or nil when there is none
func (r *CommentRepo) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) FindByProject(ctx context.Context, projectID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order(newestFirst).
		Find(&comments).Error
	return comments, err
}

// Add inserts a new comment into the database
func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// Update writes content, rating and author name when supplied and returns
// the reloaded comment. An empty patch leaves updated_at alone.
func (r *CommentRepo) Update(ctx context.Context, id int64, patch models.CommentInput) (*models.Comment, error) {
	if patch.IsEmpty() {
		comment, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if comment == nil {
			return nil, fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
		}
		return comment, nil
	}
	cols := patch.Columns()
	cols["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
	}

	comment, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
	}
	return comment, nil
}

// Delete removes a comment from the database by id
func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("comment %d: %w", id, errs.ErrNotFound)
	}
	return nil
}
