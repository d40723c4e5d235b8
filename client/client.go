// Package client gives frontends one data-access contract over either the
// HTTP API or a client-local store, with an optional fallback between them.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/services"
)

// ErrUnavailable marks failures where the remote API could not be reached or
// answered with a gateway error.
var ErrUnavailable = errors.New("data service unavailable")

// DataAccess is implemented identically by Remote, Local and Fallback.
type DataAccess interface {
	Projects(ctx context.Context) ([]models.Project, error)
	Project(ctx context.Context, id int64) (*models.Project, error)
	CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	SearchProjects(ctx context.Context, query string) ([]models.Project, error)
	ProjectsByUser(ctx context.Context, userID int64) ([]models.Project, error)

	ProjectComments(ctx context.Context, projectID int64) (services.CommentSummary, error)
	CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, id int64, in models.CommentInput) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64, email string) error

	// UploadFile stores an image or video and, when projectID is positive,
	// links it to that project.
	UploadFile(ctx context.Context, name string, r io.Reader, projectID int64) (*UploadResult, error)
	// ProjectImage returns the project's main image URL, "" when it has none.
	ProjectImage(ctx context.Context, id int64) (string, error)
}

// UploadResult describes a stored upload. Message says whether it was linked
// to a project.
type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
	Message  string `json:"message"`
}

type Mode string

const (
	ModeRemote   Mode = "remote"
	ModeLocal    Mode = "local"
	ModeFallback Mode = "fallback"
)

type Options struct {
	Mode Mode
	// BaseURL of the API, e.g. http://localhost:9091/api.
	BaseURL    string
	HTTPClient *http.Client
	// StorePath is the JSON file behind the local store. Empty keeps the
	// local store in memory.
	StorePath string
	Logger    *zerolog.Logger
}

// New builds the DataAccess for opts.Mode.
func New(opts Options) (DataAccess, error) {
	logger := log.With().Str("component", "client").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	switch opts.Mode {
	case ModeRemote:
		return newRemoteFromOptions(opts)
	case ModeLocal:
		return newLocalFromOptions(opts)
	case ModeFallback, "":
		remote, err := newRemoteFromOptions(opts)
		if err != nil {
			return nil, err
		}
		local, err := newLocalFromOptions(opts)
		if err != nil {
			return nil, err
		}
		return NewFallback(remote, local, logger), nil
	default:
		return nil, fmt.Errorf("unknown client mode %q", opts.Mode)
	}
}

func newRemoteFromOptions(opts Options) (*Remote, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return NewRemote(opts.BaseURL, httpClient)
}

func newLocalFromOptions(opts Options) (*Local, error) {
	if opts.StorePath == "" {
		return NewLocal(NewMemoryKV()), nil
	}
	kv, err := NewFileKV(opts.StorePath)
	if err != nil {
		return nil, err
	}
	return NewLocal(kv), nil
}
