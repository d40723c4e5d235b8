package models

import (
	"sort"
	"strings"
	"time"
)

// DefaultAuthorName is shown for comments submitted without a name.
const DefaultAuthorName = "Anonymous"

// Comment is a piece of feedback on a project: free text, a rating, or both.
// The email is the only ownership credential.
type Comment struct {
	ID         int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ProjectID  int64     `json:"projectId" gorm:"column:project_id;not null;index:idx_comments_project_id"`
	Content    *string   `json:"content" gorm:"column:content;type:text"`
	Rating     *int      `json:"rating" gorm:"column:rating"`
	Email      string    `json:"email" gorm:"column:email;type:text;not null"`
	AuthorName string    `json:"authorName" gorm:"column:author_name;type:text;not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"column:created_at;not null"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"column:updated_at;not null"`
}

func (Comment) TableName() string {
	return "comments"
}

// HasFeedback reports whether the comment carries text or a rating.
func (c Comment) HasFeedback() bool {
	return (c.Content != nil && strings.TrimSpace(*c.Content) != "") || c.Rating != nil
}

// OwnedBy compares emails after normalization.
func (c Comment) OwnedBy(email string) bool {
	return NormalizeEmail(c.Email) == NormalizeEmail(email)
}

// SortCommentsNewestFirst orders by creation time, newest first, ties by id.
func SortCommentsNewestFirst(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.After(comments[j].CreatedAt)
		}
		return comments[i].ID > comments[j].ID
	})
}
