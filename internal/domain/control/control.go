package control

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Category groups related control points under one tracker project.
// Corresponds to the 'control_categories' table.
type Category struct {
	ID          int64
	ProjectID   int64
	Name        string
	Code        string // 2-5 uppercase letters, unique per project
	Description string
	Position    int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var categoryCodePattern = regexp.MustCompile(`^[A-Z]{2,5}$`)

// Normalize upcases and trims the code before validation, so "ac " and
// "AC" collide on the uniqueness constraint.
func (c *Category) Normalize() {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
}

// Validate checks the category invariants. It normalizes first.
func (c *Category) Validate() error {
	c.Normalize()
	if c.ProjectID == 0 {
		return fmt.Errorf("category: project is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category: name is required")
	}
	if !categoryCodePattern.MatchString(c.Code) {
		return fmt.Errorf("category: code %q must be 2-5 uppercase letters", c.Code)
	}
	return nil
}

// ControlPoint is a single recurring compliance obligation with a fixed
// frequency. Corresponds to the 'control_points' table.
type ControlPoint struct {
	ID          int64
	CategoryID  int64
	ControlID   string // e.g. "AC-01", unique within its category
	Name        string
	Description string
	Frequency   Frequency
	Position    int
	Active      bool

	// Optional issue defaults; zero means unset, resolved through the
	// scope settings at issue-generation time.
	TrackerID    int64
	PriorityID   int64
	AssignedToID int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullControlID returns the canonical uppercase control identifier.
func (p *ControlPoint) FullControlID() string {
	return strings.ToUpper(p.ControlID)
}

func (p *ControlPoint) String() string {
	return fmt.Sprintf("%s - %s", p.FullControlID(), p.Name)
}

// Normalize canonicalizes the control identifier before validation.
func (p *ControlPoint) Normalize() {
	p.ControlID = strings.ToUpper(strings.TrimSpace(p.ControlID))
}

// Validate checks the control point invariants. Frequency must be a
// catalog key; this is where an unknown frequency fails fast, never at
// date-calculation time.
func (p *ControlPoint) Validate() error {
	p.Normalize()
	if p.CategoryID == 0 {
		return fmt.Errorf("control point: category is required")
	}
	if p.ControlID == "" {
		return fmt.Errorf("control point: control id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("control point: name is required")
	}
	if !p.Frequency.IsValid() {
		return fmt.Errorf("control point %s: unknown frequency %q", p.ControlID, p.Frequency)
	}
	return nil
}

// PeriodsPerYear returns the number of schedule periods one year of this
// control point materializes into.
func (p *ControlPoint) PeriodsPerYear() int {
	return p.Frequency.PeriodsPerYear()
}

// FrequencyLabel returns the human-readable cadence label.
func (p *ControlPoint) FrequencyLabel() string {
	return p.Frequency.Label()
}
