package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
)

const notifyTimeout = 15 * time.Second

// CommentService enforces comment validation and the email ownership rule.
// Ownership is a courtesy check: anyone who knows the address passes it.
type CommentService struct {
	comments CommentStore
	projects ProjectStore
	notifier Notifier
	logger   zerolog.Logger
}

type CommentServiceOption func(*CommentService)

// WithNotifier sends a notification for every new comment.
func WithNotifier(n Notifier) CommentServiceOption {
	return func(s *CommentService) {
		s.notifier = n
	}
}

func NewCommentService(comments CommentStore, projects ProjectStore, opts ...CommentServiceOption) *CommentService {
	s := &CommentService{
		comments: comments,
		projects: projects,
		logger:   log.With().Str("service", "comments").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForProject returns the project's comments with their statistics. An
// unknown project simply has no comments.
func (s *CommentService) ForProject(ctx context.Context, projectID int64) (CommentSummary, error) {
	comments, err := s.comments.FindByProject(ctx, projectID)
	if err != nil {
		return CommentSummary{}, errs.NewDatabaseError("find", "comments", err)
	}
	return SummarizeComments(comments), nil
}

// List returns every comment, newest first.
func (s *CommentService) List(ctx context.Context) ([]models.Comment, error) {
	comments, err := s.comments.FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comments", err)
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// Get returns one comment or a not-found error naming the id.
func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comment", err)
	}
	if comment == nil {
		return nil, errs.NewEntityNotFound("comment", id)
	}
	return comment, nil
}

// Create validates the input, checks that the project exists and stores the
// comment.
func (s *CommentService) Create(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	comment, err := in.NewComment()
	if err != nil {
		return nil, err
	}

	project, err := s.projects.FindByID(ctx, comment.ProjectID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewEntityNotFound("project", comment.ProjectID)
	}

	if err := s.comments.Add(ctx, &comment); err != nil {
		return nil, errs.NewDatabaseError("create", "comment", err)
	}
	created, err := s.Get(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	s.notify(*project, *created)
	return created, nil
}

// Update checks, in order: the email format, that the comment exists, that
// the email owns it, and that the result still has content or a rating.
func (s *CommentService) Update(ctx context.Context, id int64, in models.CommentInput) (*models.Comment, error) {
	existing, err := s.authorize(ctx, id, in.Email)
	if err != nil {
		return nil, err
	}
	if err := in.ValidateMerged(*existing); err != nil {
		return nil, err
	}
	updated, err := s.comments.Update(ctx, id, in)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.NewEntityNotFound("comment", id)
		}
		return nil, errs.NewDatabaseError("update", "comment", err)
	}
	return updated, nil
}

// Delete applies the same email and ownership checks as Update.
func (s *CommentService) Delete(ctx context.Context, id int64, email string) error {
	if _, err := s.authorize(ctx, id, email); err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		if errs.IsNotFound(err) {
			return errs.NewEntityNotFound("comment", id)
		}
		return errs.NewDatabaseError("delete", "comment", err)
	}
	return nil
}

func (s *CommentService) authorize(ctx context.Context, id int64, email string) (*models.Comment, error) {
	if err := (models.CommentInput{Email: email}).ValidateEmail(); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.OwnedBy(email) {
		return nil, errs.NewForbiddenError("you can only modify your own comments")
	}
	return existing, nil
}

func (s *CommentService) notify(project models.Project, comment models.Comment) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyComment(ctx, project, comment); err != nil {
			s.logger.Error().Err(err).
				Int64("projectId", project.ID).
				Int64("commentId", comment.ID).
				Msg("failed to send comment notification")
		}
	}()
}
