package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rpupo63/project-showcase/errs"
	"github.com/rpupo63/project-showcase/models"
	"github.com/rpupo63/project-showcase/services"
)

// Remote talks to the HTTP API.
type Remote struct {
	baseURL *url.URL
	client  *http.Client
}

func NewRemote(baseURL string, client *http.Client) (*Remote, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{baseURL: u, client: client}, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	Details string `json:"details"`
}

func (r *Remote) Projects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := r.do(ctx, http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, err
	}
	return nonNil(projects), nil
}

func (r *Remote) Project(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	if err := r.do(ctx, http.MethodGet, "/projects/"+itoa(id), nil, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *Remote) CreateProject(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := r.do(ctx, http.MethodPost, "/projects", nil, in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *Remote) UpdateProject(ctx context.Context, id int64, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := r.do(ctx, http.MethodPut, "/projects/"+itoa(id), nil, in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *Remote) DeleteProject(ctx context.Context, id int64) error {
	return r.do(ctx, http.MethodDelete, "/projects/"+itoa(id), nil, nil, nil)
}

func (r *Remote) SearchProjects(ctx context.Context, query string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.do(ctx, http.MethodGet, "/projects/search", url.Values{"q": {query}}, nil, &projects); err != nil {
		return nil, err
	}
	return nonNil(projects), nil
}

func (r *Remote) ProjectsByUser(ctx context.Context, userID int64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.do(ctx, http.MethodGet, "/projects/user/"+itoa(userID), nil, nil, &projects); err != nil {
		return nil, err
	}
	return nonNil(projects), nil
}

func (r *Remote) ProjectComments(ctx context.Context, projectID int64) (services.CommentSummary, error) {
	var summary services.CommentSummary
	if err := r.do(ctx, http.MethodGet, "/comments/project/"+itoa(projectID), nil, nil, &summary); err != nil {
		return services.CommentSummary{}, err
	}
	if summary.Comments == nil {
		summary.Comments = []models.Comment{}
	}
	return summary, nil
}

func (r *Remote) CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	var comment models.Comment
	if err := r.do(ctx, http.MethodPost, "/comments", nil, in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *Remote) UpdateComment(ctx context.Context, id int64, in models.CommentInput) (*models.Comment, error) {
	var comment models.Comment
	if err := r.do(ctx, http.MethodPut, "/comments/"+itoa(id), nil, in, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *Remote) DeleteComment(ctx context.Context, id int64, email string) error {
	return r.do(ctx, http.MethodDelete, "/comments/"+itoa(id), nil, map[string]string{"email": email}, nil)
}

// UploadFile posts r as the multipart "file" part of /files/upload.
func (r *Remote) UploadFile(ctx context.Context, name string, file io.Reader, projectID int64) (*UploadResult, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if projectID > 0 {
		if err := form.WriteField("projectId", itoa(projectID)); err != nil {
			return nil, fmt.Errorf("encoding upload: %w", err)
		}
	}
	part, err := form.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}

	req, err := r.newRequest(ctx, http.MethodPost, "/files/upload", nil, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var result UploadResult
	if err := r.send(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *Remote) ProjectImage(ctx context.Context, id int64) (string, error) {
	var image struct {
		FileURL *string `json:"fileUrl"`
	}
	if err := r.do(ctx, http.MethodGet, "/files/image/"+itoa(id), nil, nil, &image); err != nil {
		return "", err
	}
	if image.FileURL == nil {
		return "", nil
	}
	return *image.FileURL, nil
}

// do sends one request. Non-2xx answers become *errs.ApiErr; transport
// failures and gateway statuses also match ErrUnavailable.
func (r *Remote) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := r.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return r.send(req, out)
}

func (r *Remote) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := *r.baseURL
	u.Path = r.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (r *Remote) send(req *http.Request, out any) error {
	method, path := req.Method, strings.TrimPrefix(req.URL.Path, r.baseURL.Path)
	resp, err := r.client.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return req.Context().Err()
		}
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body = errorBody{Error: strings.TrimSpace(string(data))}
	}
	apiErr := errs.NewStatusError(resp.StatusCode, body.Error, body.Field, body.Details)

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %w", ErrUnavailable, apiErr)
	}
	return apiErr
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func nonNil(projects []models.Project) []models.Project {
	if projects == nil {
		return []models.Project{}
	}
	return projects
}
