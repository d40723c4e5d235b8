package models

import (
	"sort"
	"strings"
	"time"
)

// Project represents a showcased work item with its metadata, media and links
type Project struct {
	ID            int64      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title         string     `json:"title" gorm:"column:title;type:text;not null"`
	Description   *string    `json:"description,omitempty" gorm:"column:description;type:text"`
	ImageURL      *string    `json:"imageUrl,omitempty" gorm:"column:image_url;type:text"`
	Images        StringList `json:"images,omitempty" gorm:"column:images"`
	Technologies  StringList `json:"technologies,omitempty" gorm:"column:technologies"`
	Github        *string    `json:"github,omitempty" gorm:"column:github;type:text"`
	Demo          *string    `json:"demo,omitempty" gorm:"column:demo;type:text"`
	UserID        *int64     `json:"userId,omitempty" gorm:"column:user_id;index:idx_projects_user_id"`
	StatusID      *int64     `json:"statusId,omitempty" gorm:"column:status_id"`
	LanguageID    *int64     `json:"languageId,omitempty" gorm:"column:language_id"`
	ControllerIDs IntList    `json:"controllerIds,omitempty" gorm:"column:controller_ids"`
	PlatformIDs   IntList    `json:"platformIds,omitempty" gorm:"column:platform_ids"`
	GenreIDs      IntList    `json:"genreIds,omitempty" gorm:"column:genre_ids"`
	TagIDs        IntList    `json:"tagIds,omitempty" gorm:"column:tag_ids"`
	Price         *float64   `json:"price,omitempty" gorm:"column:price"`
	AuthorStudio  *string    `json:"authorStudio,omitempty" gorm:"column:author_studio;type:text"`
	MadeWith      *string    `json:"madeWith,omitempty" gorm:"column:made_with;type:text"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"column:created_at;not null"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"column:updated_at;not null"`

	Comments []Comment `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Project) TableName() string {
	return "projects"
}

// Matches reports whether query is a case-insensitive substring of the
// title, the description or one of the technologies.
func (p Project) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	if p.Description != nil && strings.Contains(strings.ToLower(*p.Description), q) {
		return true
	}
	for _, tech := range p.Technologies {
		if strings.Contains(strings.ToLower(tech), q) {
			return true
		}
	}
	return false
}

// SortProjectsNewestFirst orders by creation time, newest first, ties by id.
func SortProjectsNewestFirst(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID > projects[j].ID
	})
}
