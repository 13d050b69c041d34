package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"security_control_scheduler/internal/domain/schedule"
)

func TestNewDefaults(t *testing.T) {
	s := NewDefaults(42)

	assert.Equal(t, int64(42), s.ProjectID)
	assert.Equal(t, DefaultSubjectTemplate, s.SubjectTemplate)
	assert.Equal(t, DefaultDescriptionTemplate, s.DescriptionTemplate)
	assert.Equal(t, DefaultAdvanceDays, s.AdvanceDays)
	assert.True(t, s.EnableAutoGeneration)
	assert.Equal(t, schedule.DefaultOffsets(), s.Offsets())
}

func TestTemplateFallbacks(t *testing.T) {
	s := &Settings{}
	assert.Equal(t, DefaultSubjectTemplate, s.SubjectTemplateOrDefault())
	assert.Equal(t, DefaultDescriptionTemplate, s.DescriptionTemplateOrDefault())

	s.SubjectTemplate = "{{control_id}} check"
	s.DescriptionTemplate = "do the thing"
	assert.Equal(t, "{{control_id}} check", s.SubjectTemplateOrDefault())
	assert.Equal(t, "do the thing", s.DescriptionTemplateOrDefault())
}

func TestAdvanceDaysFloor(t *testing.T) {
	tests := []struct {
		stored   int
		expected int
	}{
		{stored: 14, expected: 14},
		{stored: 1, expected: 1},
		{stored: 0, expected: DefaultAdvanceDays},
		{stored: -3, expected: DefaultAdvanceDays},
	}
	for _, tc := range tests {
		s := &Settings{AdvanceDays: tc.stored}
		assert.Equal(t, tc.expected, s.AdvanceDaysOrDefault(), "stored %d", tc.stored)
	}
}

func TestOffsetsClampToValidDomains(t *testing.T) {
	s := &Settings{
		WeeklyStartDay:       3,
		MonthlyStartDay:      15,
		QuarterlyStartMonth:  4,
		SixMonthlyStartMonth: 7,
		YearlyStartMonth:     12,
	}
	off := s.Offsets()
	assert.Equal(t, 3, off.WeeklyStartDay)
	assert.Equal(t, 15, off.MonthlyStartDay)
	assert.Equal(t, 4, off.QuarterlyStartMonth)
	assert.Equal(t, 7, off.SixMonthlyStartMonth)
	assert.Equal(t, 12, off.YearlyStartMonth)
}

func TestOffsetsOutOfRangeFallBackToDefaults(t *testing.T) {
	def := schedule.DefaultOffsets()

	s := &Settings{
		WeeklyStartDay:       6,  // Saturday is outside the working week
		MonthlyStartDay:      31, // a day not every month has
		QuarterlyStartMonth:  0,
		SixMonthlyStartMonth: 13,
		YearlyStartMonth:     -1,
	}
	off := s.Offsets()
	require.Equal(t, def, off, "out-of-range values are treated as unset, never an error")
}
