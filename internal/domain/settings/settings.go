package settings

import (
	"time"

	"security_control_scheduler/internal/domain/schedule"
)

// DefaultAdvanceDays is how many days before the scheduled date issue
// generation may fire when a scope does not configure its own window.
const DefaultAdvanceDays = 7

// DefaultSubjectTemplate is the built-in issue subject template.
const DefaultSubjectTemplate = "[{{control_id}}] {{control_name}} - {{period}} {{year}}"

// DefaultDescriptionTemplate is the built-in issue description template.
const DefaultDescriptionTemplate = `Security Control Check

Category: {{category}}
Control: {{control_id}} - {{control_name}}
Period: {{period}} {{year}}
Frequency: {{frequency}}
Scheduled Date: {{scheduled_date}}
Due Date: {{due_date}}
`

// Settings is the per-project configuration record, created lazily with
// defaults on first access. Corresponds to the 'project_settings' table.
type Settings struct {
	ID        int64
	ProjectID int64

	// Issue defaults used when a control point specifies none; zero
	// means unset.
	DefaultTrackerID  int64
	DefaultPriorityID int64
	DefaultStatusID   int64

	SubjectTemplate      string
	DescriptionTemplate  string
	AdvanceDays          int
	EnableAutoGeneration bool

	// Calendar offsets, stored raw; read through the clamping
	// accessors below.
	WeeklyStartDay       int
	MonthlyStartDay      int
	QuarterlyStartMonth  int
	SixMonthlyStartMonth int
	YearlyStartMonth     int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDefaults returns the settings record a scope starts with.
func NewDefaults(projectID int64) *Settings {
	off := schedule.DefaultOffsets()
	return &Settings{
		ProjectID:            projectID,
		SubjectTemplate:      DefaultSubjectTemplate,
		DescriptionTemplate:  DefaultDescriptionTemplate,
		AdvanceDays:          DefaultAdvanceDays,
		EnableAutoGeneration: true,
		WeeklyStartDay:       off.WeeklyStartDay,
		MonthlyStartDay:      off.MonthlyStartDay,
		QuarterlyStartMonth:  off.QuarterlyStartMonth,
		SixMonthlyStartMonth: off.SixMonthlyStartMonth,
		YearlyStartMonth:     off.YearlyStartMonth,
	}
}

// SubjectTemplateOrDefault returns the configured subject template,
// falling back to the built-in one when blank.
func (s *Settings) SubjectTemplateOrDefault() string {
	if s.SubjectTemplate == "" {
		return DefaultSubjectTemplate
	}
	return s.SubjectTemplate
}

// DescriptionTemplateOrDefault returns the configured description
// template, falling back to the built-in one when blank.
func (s *Settings) DescriptionTemplateOrDefault() string {
	if s.DescriptionTemplate == "" {
		return DefaultDescriptionTemplate
	}
	return s.DescriptionTemplate
}

// AdvanceDaysOrDefault returns the advance-notice window with a floor
// of one day; non-positive stored values mean "unset".
func (s *Settings) AdvanceDaysOrDefault() int {
	if s.AdvanceDays < 1 {
		return DefaultAdvanceDays
	}
	return s.AdvanceDays
}

// Offsets returns the calendar offsets clamped to their valid domains.
// Out-of-range stored values are treated as unset and replaced by the
// catalog default, never raised as errors.
func (s *Settings) Offsets() schedule.Offsets {
	def := schedule.DefaultOffsets()
	return schedule.Offsets{
		WeeklyStartDay:       clamp(s.WeeklyStartDay, 1, 5, def.WeeklyStartDay),
		MonthlyStartDay:      clamp(s.MonthlyStartDay, 1, 28, def.MonthlyStartDay),
		QuarterlyStartMonth:  clamp(s.QuarterlyStartMonth, 1, 12, def.QuarterlyStartMonth),
		SixMonthlyStartMonth: clamp(s.SixMonthlyStartMonth, 1, 12, def.SixMonthlyStartMonth),
		YearlyStartMonth:     clamp(s.YearlyStartMonth, 1, 12, def.YearlyStartMonth),
	}
}

func clamp(v, min, max, fallback int) int {
	if v < min || v > max {
		return fallback
	}
	return v
}
