package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/project-showcase/models"
)

const defaultResendURL = "https://api.resend.com/emails"

// Notifier is told about every new comment.
type Notifier interface {
	NotifyComment(ctx context.Context, project models.Project, comment models.Comment) error
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendNotifier emails the site owners through the Resend API.
type ResendNotifier struct {
	apiKey     string
	from       string
	recipients []string
	endpoint   string
	client     *http.Client
}

type ResendOption func(*ResendNotifier)

// WithResendEndpoint overrides the API URL.
func WithResendEndpoint(url string) ResendOption {
	return func(n *ResendNotifier) {
		n.endpoint = url
	}
}

func WithResendHTTPClient(client *http.Client) ResendOption {
	return func(n *ResendNotifier) {
		n.client = client
	}
}

func NewResendNotifier(apiKey, from string, recipients []string, opts ...ResendOption) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("resend sender address is required")
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}
	n := &ResendNotifier{
		apiKey:     apiKey,
		from:       from,
		recipients: recipients,
		endpoint:   defaultResendURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

func (n *ResendNotifier) NotifyComment(ctx context.Context, project models.Project, comment models.Comment) error {
	payload := ResendEmailRequest{
		From:    n.from,
		To:      n.recipients,
		Subject: fmt.Sprintf("New comment on %s", project.Title),
		Html:    commentEmailBody(project, comment),
	}
	return n.send(ctx, payload)
}

func (n *ResendNotifier) send(ctx context.Context, payload ResendEmailRequest) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Sent comment notification via Resend")
	}
	return nil
}

func commentEmailBody(project models.Project, comment models.Comment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>%s</strong> commented on <strong>%s</strong> (project %d).</p>",
		html.EscapeString(comment.AuthorName), html.EscapeString(project.Title), project.ID)
	if comment.Rating != nil {
		b.WriteString("<p>Rating: " + strconv.Itoa(*comment.Rating) + "</p>")
	}
	if comment.Content != nil {
		b.WriteString("<p>" + html.EscapeString(*comment.Content) + "</p>")
	}
	return b.String()
}
