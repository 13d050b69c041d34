package control

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UpdateControlPointParams is the allow-listed update payload for a
// control point. Only the fields named here may be changed through the
// repository; nil pointers mean "leave unchanged".
type UpdateControlPointParams struct {
	CategoryID   *int64  `validate:"omitempty,gt=0"`
	ControlID    *string `validate:"omitempty,min=1,max=30"`
	Name         *string `validate:"omitempty,min=1,max=255"`
	Description  *string `validate:"omitempty,max=4000"`
	Frequency    *string `validate:"omitempty,oneof=weekly monthly quarterly six_monthly yearly"`
	Position     *int    `validate:"omitempty,gte=0"`
	Active       *bool
	TrackerID    *int64 `validate:"omitempty,gte=0"`
	PriorityID   *int64 `validate:"omitempty,gte=0"`
	AssignedToID *int64 `validate:"omitempty,gte=0"`
}

// Validate checks every present field against its constraints.
func (u *UpdateControlPointParams) Validate() error {
	return validate.Struct(u)
}

// Apply copies the present fields onto the control point and re-runs the
// entity validation. A frequency change never touches already stored
// schedules; it only affects future generation.
func (u *UpdateControlPointParams) Apply(p *ControlPoint) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.CategoryID != nil {
		p.CategoryID = *u.CategoryID
	}
	if u.ControlID != nil {
		p.ControlID = *u.ControlID
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Frequency != nil {
		p.Frequency = Frequency(*u.Frequency)
	}
	if u.Position != nil {
		p.Position = *u.Position
	}
	if u.Active != nil {
		p.Active = *u.Active
	}
	if u.TrackerID != nil {
		p.TrackerID = *u.TrackerID
	}
	if u.PriorityID != nil {
		p.PriorityID = *u.PriorityID
	}
	if u.AssignedToID != nil {
		p.AssignedToID = *u.AssignedToID
	}
	return p.Validate()
}

// UpdateCategoryParams is the allow-listed update payload for a category.
type UpdateCategoryParams struct {
	Name        *string `validate:"omitempty,min=1,max=255"`
	Code        *string `validate:"omitempty,min=2,max=5"`
	Description *string `validate:"omitempty,max=4000"`
	Position    *int    `validate:"omitempty,gte=0"`
	Active      *bool
}

// Validate checks every present field against its constraints.
func (u *UpdateCategoryParams) Validate() error {
	return validate.Struct(u)
}

// Apply copies the present fields onto the category and re-runs the
// entity validation.
func (u *UpdateCategoryParams) Apply(c *Category) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Code != nil {
		c.Code = *u.Code
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Position != nil {
		c.Position = *u.Position
	}
	if u.Active != nil {
		c.Active = *u.Active
	}
	return c.Validate()
}
