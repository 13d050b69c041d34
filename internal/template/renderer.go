// Package template renders issue subjects and descriptions by literal
// substitution of a fixed placeholder set. No control flow, no loops:
// a single pass, with unknown placeholders left intact.
package template

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Context carries the values available to the placeholders.
type Context struct {
	ControlID     string
	ControlName   string
	Category      string
	Period        string
	Year          int
	Frequency     string
	ScheduledDate time.Time
	DueDate       time.Time
}

// Render substitutes every known placeholder in tmpl from ctx. A zero
// due date renders as an empty string.
func Render(tmpl string, ctx Context) string {
	if tmpl == "" {
		return ""
	}
	due := ""
	if !ctx.DueDate.IsZero() {
		due = ctx.DueDate.Format(dateLayout)
	}
	r := strings.NewReplacer(
		"{{control_id}}", ctx.ControlID,
		"{{control_name}}", ctx.ControlName,
		"{{category}}", ctx.Category,
		"{{period}}", ctx.Period,
		"{{year}}", strconv.Itoa(ctx.Year),
		"{{frequency}}", ctx.Frequency,
		"{{scheduled_date}}", ctx.ScheduledDate.Format(dateLayout),
		"{{due_date}}", due,
	)
	return r.Replace(tmpl)
}
