package models

import (
	"strings"

	"github.com/rpupo63/project-showcase/errs"
)

// CommentInput is the request body for comment create, update and delete.
// Email comes first so a bad address is reported before anything else.
type CommentInput struct {
	Email      string  `json:"email" validate:"required,basic_email"`
	ProjectID  int64   `json:"projectId,omitempty" validate:"required"`
	Author     *string `json:"author,omitempty"`
	AuthorName *string `json:"authorName,omitempty"`
	Content    *string `json:"content,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
}

// ValidateEmail checks only the ownership credential.
func (in CommentInput) ValidateEmail() error {
	return fieldError("email", validate.Var(in.Email, "required,basic_email"))
}

// NewComment validates a create request and builds the unsaved comment with
// a normalized email, trimmed content and a default author name.
func (in CommentInput) NewComment() (Comment, error) {
	if err := validationError(validate.Struct(in)); err != nil {
		return Comment{}, err
	}
	c := Comment{
		ProjectID:  in.ProjectID,
		Content:    trimmedContent(in.Content),
		Rating:     normalizedRating(in.Rating),
		Email:      NormalizeEmail(in.Email),
		AuthorName: in.authorName(),
	}
	if !c.HasFeedback() {
		return Comment{}, errNoFeedback()
	}
	return c, nil
}

// Columns maps the supplied mutable fields to their column names. The email
// and project are never changed by an update.
func (in CommentInput) Columns() map[string]any {
	cols := make(map[string]any)
	if in.Content != nil {
		if content := trimmedContent(in.Content); content != nil {
			cols["content"] = *content
		} else {
			cols["content"] = nil
		}
	}
	if in.Rating != nil {
		if rating := normalizedRating(in.Rating); rating != nil {
			cols["rating"] = *rating
		} else {
			cols["rating"] = nil
		}
	}
	if name := in.suppliedAuthorName(); name != nil {
		cols["author_name"] = *name
	}
	return cols
}

// IsEmpty reports whether no mutable field was supplied. Blank author names
// count as not supplied.
func (in CommentInput) IsEmpty() bool {
	return len(in.Columns()) == 0
}

// ApplyTo merges the supplied fields onto c the same way Columns does for SQL.
func (in CommentInput) ApplyTo(c *Comment) {
	if in.Content != nil {
		c.Content = trimmedContent(in.Content)
	}
	if in.Rating != nil {
		c.Rating = normalizedRating(in.Rating)
	}
	if name := in.suppliedAuthorName(); name != nil {
		c.AuthorName = *name
	}
}

// ValidateMerged checks that applying the update to existing keeps some feedback.
func (in CommentInput) ValidateMerged(existing Comment) error {
	merged := existing
	in.ApplyTo(&merged)
	if !merged.HasFeedback() {
		return errNoFeedback()
	}
	return nil
}

func (in CommentInput) authorName() string {
	if name := in.suppliedAuthorName(); name != nil {
		return *name
	}
	return DefaultAuthorName
}

// authorName wins over the legacy author field; blanks count as not supplied.
func (in CommentInput) suppliedAuthorName() *string {
	for _, candidate := range []*string{in.AuthorName, in.Author} {
		if candidate == nil {
			continue
		}
		if name := strings.TrimSpace(*candidate); name != "" {
			return &name
		}
	}
	return nil
}

func trimmedContent(content *string) *string {
	if content == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*content)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// A zero rating means "no rating".
func normalizedRating(rating *int) *int {
	if rating == nil || *rating == 0 {
		return nil
	}
	r := *rating
	return &r
}

func errNoFeedback() error {
	return errs.NewBadRequestErrorWithField("a comment needs content or a rating", "content", "")
}
