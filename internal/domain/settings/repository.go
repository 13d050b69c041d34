package settings

import "context"

// Repository defines persistence for per-project settings.
type Repository interface {
	// ForProject returns the project's settings record, creating it
	// with defaults on first access. Safe under concurrent callers: at
	// most one record exists per project.
	ForProject(ctx context.Context, projectID int64) (*Settings, error)

	// Update persists the settings record.
	Update(ctx context.Context, s *Settings) error
}
