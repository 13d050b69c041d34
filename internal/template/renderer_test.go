package template

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleContext() Context {
	return Context{
		ControlID:     "AC-01",
		ControlName:   "Review user accounts",
		Category:      "Access Control",
		Period:        "March",
		Year:          2025,
		Frequency:     "Monthly",
		ScheduledDate: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	tmpl := "[{{control_id}}] {{control_name}} ({{category}}) - {{period}} {{year}}, {{frequency}}, {{scheduled_date}}..{{due_date}}"

	got := Render(tmpl, sampleContext())

	assert.Equal(t,
		"[AC-01] Review user accounts (Access Control) - March 2025, Monthly, 2025-03-01..2025-03-31",
		got)
}

func TestRenderLeavesUnknownPlaceholdersIntact(t *testing.T) {
	got := Render("{{control_id}} {{assignee}} {{year}}", sampleContext())
	assert.Equal(t, "AC-01 {{assignee}} 2025", got)
}

func TestRenderEmptyTemplate(t *testing.T) {
	assert.Equal(t, "", Render("", sampleContext()))
}

func TestRenderZeroDueDate(t *testing.T) {
	ctx := sampleContext()
	ctx.DueDate = time.Time{}
	assert.Equal(t, "due: ", Render("due: {{due_date}}", ctx))
}

func TestRenderIsSinglePass(t *testing.T) {
	ctx := sampleContext()
	ctx.ControlName = "{{control_id}}" // a value that looks like a placeholder stays literal
	got := Render("{{control_name}}", ctx)
	assert.Equal(t, "{{control_id}}", got)
}
