package models

import (
	"strings"

	"github.com/rpupo63/project-showcase/errs"
)

// ProjectInput is the request body for creating or partially updating a
// project. A nil field was not supplied and leaves the stored value alone.
type ProjectInput struct {
	Title         *string     `json:"title,omitempty"`
	Description   *string     `json:"description,omitempty"`
	ImageURL      *string     `json:"imageUrl,omitempty"`
	Images        *StringList `json:"images,omitempty"`
	Technologies  *StringList `json:"technologies,omitempty"`
	Github        *string     `json:"github,omitempty"`
	Demo          *string     `json:"demo,omitempty"`
	UserID        *int64      `json:"userId,omitempty"`
	StatusID      *int64      `json:"statusId,omitempty"`
	LanguageID    *int64      `json:"languageId,omitempty"`
	ControllerIDs *IntList    `json:"controllerIds,omitempty"`
	PlatformIDs   *IntList    `json:"platformIds,omitempty"`
	GenreIDs      *IntList    `json:"genreIds,omitempty"`
	TagIDs        *IntList    `json:"tagIds,omitempty"`
	Price         *float64    `json:"price,omitempty"`
	AuthorStudio  *string     `json:"authorStudio,omitempty"`
	MadeWith      *string     `json:"madeWith,omitempty"`
}

// NewProject validates the input and builds an unsaved project. Blank optional
// strings are dropped so they are stored as NULL.
func (in ProjectInput) NewProject() (Project, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return Project{}, errs.NewMissingRequiredFieldError("title")
	}
	p := Project{
		Title:        strings.TrimSpace(*in.Title),
		Description:  nonBlank(in.Description),
		ImageURL:     nonBlank(in.ImageURL),
		Github:       nonBlank(in.Github),
		Demo:         nonBlank(in.Demo),
		UserID:       in.UserID,
		StatusID:     in.StatusID,
		LanguageID:   in.LanguageID,
		Price:        in.Price,
		AuthorStudio: nonBlank(in.AuthorStudio),
		MadeWith:     nonBlank(in.MadeWith),
	}
	p.Images = derefStrings(in.Images)
	p.Technologies = derefStrings(in.Technologies)
	p.ControllerIDs = derefInts(in.ControllerIDs)
	p.PlatformIDs = derefInts(in.PlatformIDs)
	p.GenreIDs = derefInts(in.GenreIDs)
	p.TagIDs = derefInts(in.TagIDs)
	return p, nil
}

// ValidateUpdate rejects a patch that would blank the title.
func (in ProjectInput) ValidateUpdate() error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return errs.NewInvalidFieldError("title", "title cannot be empty")
	}
	return nil
}

// IsEmpty reports whether no field was supplied.
func (in ProjectInput) IsEmpty() bool {
	return len(in.Columns()) == 0
}

// Columns maps the supplied fields to their column names.
func (in ProjectInput) Columns() map[string]any {
	cols := make(map[string]any)
	if in.Title != nil {
		cols["title"] = strings.TrimSpace(*in.Title)
	}
	setString(cols, "description", in.Description)
	setString(cols, "image_url", in.ImageURL)
	setString(cols, "github", in.Github)
	setString(cols, "demo", in.Demo)
	setString(cols, "author_studio", in.AuthorStudio)
	setString(cols, "made_with", in.MadeWith)
	if in.Images != nil {
		cols["images"] = *in.Images
	}
	if in.Technologies != nil {
		cols["technologies"] = *in.Technologies
	}
	if in.ControllerIDs != nil {
		cols["controller_ids"] = *in.ControllerIDs
	}
	if in.PlatformIDs != nil {
		cols["platform_ids"] = *in.PlatformIDs
	}
	if in.GenreIDs != nil {
		cols["genre_ids"] = *in.GenreIDs
	}
	if in.TagIDs != nil {
		cols["tag_ids"] = *in.TagIDs
	}
	if in.UserID != nil {
		cols["user_id"] = *in.UserID
	}
	if in.StatusID != nil {
		cols["status_id"] = *in.StatusID
	}
	if in.LanguageID != nil {
		cols["language_id"] = *in.LanguageID
	}
	if in.Price != nil {
		cols["price"] = *in.Price
	}
	return cols
}

// ApplyTo merges the supplied fields onto p the same way Columns does for SQL.
func (in ProjectInput) ApplyTo(p *Project) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	applyString(&p.Description, in.Description)
	applyString(&p.ImageURL, in.ImageURL)
	applyString(&p.Github, in.Github)
	applyString(&p.Demo, in.Demo)
	applyString(&p.AuthorStudio, in.AuthorStudio)
	applyString(&p.MadeWith, in.MadeWith)
	if in.Images != nil {
		p.Images = derefStrings(in.Images)
	}
	if in.Technologies != nil {
		p.Technologies = derefStrings(in.Technologies)
	}
	if in.ControllerIDs != nil {
		p.ControllerIDs = derefInts(in.ControllerIDs)
	}
	if in.PlatformIDs != nil {
		p.PlatformIDs = derefInts(in.PlatformIDs)
	}
	if in.GenreIDs != nil {
		p.GenreIDs = derefInts(in.GenreIDs)
	}
	if in.TagIDs != nil {
		p.TagIDs = derefInts(in.TagIDs)
	}
	if in.UserID != nil {
		p.UserID = int64Ptr(*in.UserID)
	}
	if in.StatusID != nil {
		p.StatusID = int64Ptr(*in.StatusID)
	}
	if in.LanguageID != nil {
		p.LanguageID = int64Ptr(*in.LanguageID)
	}
	if in.Price != nil {
		price := *in.Price
		p.Price = &price
	}
}

// An explicitly supplied empty string clears the column.
func setString(cols map[string]any, column string, value *string) {
	if value == nil {
		return
	}
	if *value == "" {
		cols[column] = nil
		return
	}
	cols[column] = *value
}

func applyString(dst **string, value *string) {
	if value == nil {
		return
	}
	*dst = nonBlank(value)
}

func nonBlank(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func derefStrings(l *StringList) StringList {
	if l == nil || len(*l) == 0 {
		return nil
	}
	return append(StringList(nil), (*l)...)
}

func derefInts(l *IntList) IntList {
	if l == nil || len(*l) == 0 {
		return nil
	}
	return append(IntList(nil), (*l)...)
}
