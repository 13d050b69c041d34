// Package redmine implements the tracker.Client interface over the
// Redmine REST API.
package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"security_control_scheduler/internal/domain/tracker"
)

const dateLayout = "2006-01-02"

// Client talks to one Redmine instance with one API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Redmine client. timeout bounds every request so a
// slow tracker fails one schedule, never a whole batch.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type issuePayload struct {
	ProjectID    int64  `json:"project_id"`
	TrackerID    int64  `json:"tracker_id,omitempty"`
	PriorityID   int64  `json:"priority_id,omitempty"`
	StatusID     int64  `json:"status_id,omitempty"`
	AssignedToID int64  `json:"assigned_to_id,omitempty"`
	AuthorID     int64  `json:"author_id,omitempty"`
	Subject      string `json:"subject"`
	Description  string `json:"description,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
}

type issueBody struct {
	Issue struct {
		ID      int64  `json:"id"`
		Subject string `json:"subject"`
		Project struct {
			ID int64 `json:"id"`
		} `json:"project"`
		Status struct {
			ID       int64 `json:"id"`
			IsClosed bool  `json:"is_closed"`
		} `json:"status"`
	} `json:"issue"`
}

type errorsBody struct {
	Errors []string `json:"errors"`
}

// CreateIssue creates one issue. A 422 from Redmine surfaces as a
// *tracker.ValidationError so the caller can record it per schedule and
// leave the schedule untouched.
func (c *Client) CreateIssue(ctx context.Context, req tracker.IssueRequest) (*tracker.Issue, error) {
	payload := issuePayload{
		ProjectID:    req.ProjectID,
		TrackerID:    req.TrackerID,
		PriorityID:   req.PriorityID,
		StatusID:     req.StatusID,
		AssignedToID: req.AssignedToID,
		AuthorID:     req.AuthorID,
		Subject:      req.Subject,
		Description:  req.Description,
	}
	if !req.StartDate.IsZero() {
		payload.StartDate = req.StartDate.Format(dateLayout)
	}
	if !req.DueDate.IsZero() {
		payload.DueDate = req.DueDate.Format(dateLayout)
	}

	body, err := json.Marshal(map[string]issuePayload{"issue": payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/issues.json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		return decodeIssue(resp.Body)
	case http.StatusUnprocessableEntity:
		var eb errorsBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || len(eb.Errors) == 0 {
			eb.Errors = []string{"issue rejected by tracker"}
		}
		return nil, &tracker.ValidationError{Messages: eb.Errors}
	default:
		return nil, unexpectedStatus(resp)
	}
}

// GetIssue fetches one issue; a 404 maps to tracker.ErrIssueNotFound.
func (c *Client) GetIssue(ctx context.Context, id int64) (*tracker.Issue, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/issues/%d.json", id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeIssue(resp.Body)
	case http.StatusNotFound:
		return nil, tracker.ErrIssueNotFound
	default:
		return nil, unexpectedStatus(resp)
	}
}

// IssueExists reports whether the issue id still resolves.
func (c *Client) IssueExists(ctx context.Context, id int64) (bool, error) {
	_, err := c.GetIssue(ctx, id)
	if err == tracker.ErrIssueNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build tracker request: %w", err)
	}
	req.Header.Set("X-Redmine-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker request failed: %w", err)
	}
	return resp, nil
}

func decodeIssue(r io.Reader) (*tracker.Issue, error) {
	var b issueBody
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to decode tracker response: %w", err)
	}
	return &tracker.Issue{
		ID:        b.Issue.ID,
		ProjectID: b.Issue.Project.ID,
		Subject:   b.Issue.Subject,
		StatusID:  b.Issue.Status.ID,
		Closed:    b.Issue.Status.IsClosed,
	}, nil
}

func unexpectedStatus(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return fmt.Errorf("tracker returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
}
