package tracker

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrIssueNotFound is returned when an issue id does not resolve in the
// external tracker. For linked schedules this is not an error condition:
// it marks the schedule as orphaned and eligible for repair.
var ErrIssueNotFound = errors.New("tracker issue not found")

// Issue is the narrow view of an external tracker issue this engine
// consumes.
type Issue struct {
	ID        int64
	ProjectID int64
	Subject   string
	StatusID  int64
	Closed    bool
}

// IssueRequest carries everything needed to create one tracked work
// item. Zero-valued ids are omitted so the tracker applies its own
// defaults.
type IssueRequest struct {
	ProjectID    int64
	TrackerID    int64
	PriorityID   int64
	StatusID     int64
	AssignedToID int64
	AuthorID     int64
	Subject      string
	Description  string
	StartDate    time.Time
	DueDate      time.Time
}

// ValidationError reports an issue creation rejected by the tracker's
// own validation. It is recovered per schedule, never aborting a batch.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "issue validation failed: " + strings.Join(e.Messages, ", ")
}

// Client defines the operations this engine needs from the external
// issue tracker. Each call is a single bounded request; a slow or
// failing call fails one schedule, not the batch.
type Client interface {
	CreateIssue(ctx context.Context, req IssueRequest) (*Issue, error)
	GetIssue(ctx context.Context, id int64) (*Issue, error)
	IssueExists(ctx context.Context, id int64) (bool, error)
}
