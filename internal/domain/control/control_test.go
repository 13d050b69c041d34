package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCategory() *Category {
	return &Category{ProjectID: 1, Name: "Access Control", Code: "AC", Active: true}
}

func validControlPoint() *ControlPoint {
	return &ControlPoint{
		CategoryID: 1,
		ControlID:  "ac-01",
		Name:       "Review user accounts",
		Frequency:  FrequencyMonthly,
		Active:     true,
	}
}

func TestFrequencyCatalog(t *testing.T) {
	expected := map[Frequency]int{
		FrequencyWeekly:     52,
		FrequencyMonthly:    12,
		FrequencyQuarterly:  4,
		FrequencySixMonthly: 2,
		FrequencyYearly:     1,
	}
	require.Len(t, Frequencies, len(expected))
	for freq, periods := range expected {
		cfg, ok := freq.Config()
		require.True(t, ok, "%s must be a catalog key", freq)
		assert.Equal(t, periods, cfg.PeriodsPerYear, "%s", freq)
		assert.True(t, freq.IsValid())
	}

	assert.False(t, Frequency("fortnightly").IsValid())
	assert.Equal(t, 12, Frequency("fortnightly").PeriodsPerYear())
	assert.Equal(t, "fortnightly", Frequency("fortnightly").Label())
	assert.Equal(t, "6 Months", FrequencySixMonthly.Label())
}

func TestCategoryValidate(t *testing.T) {
	c := validCategory()
	c.Code = " ac "
	require.NoError(t, c.Validate())
	assert.Equal(t, "AC", c.Code, "code is upcased and trimmed")

	bad := validCategory()
	bad.Code = "A"
	assert.Error(t, bad.Validate(), "code shorter than 2")

	bad = validCategory()
	bad.Code = "ABCDEF"
	assert.Error(t, bad.Validate(), "code longer than 5")

	bad = validCategory()
	bad.Code = "A1"
	assert.Error(t, bad.Validate(), "code must be letters only")

	bad = validCategory()
	bad.Name = " "
	assert.Error(t, bad.Validate())

	bad = validCategory()
	bad.ProjectID = 0
	assert.Error(t, bad.Validate())
}

func TestControlPointValidate(t *testing.T) {
	p := validControlPoint()
	require.NoError(t, p.Validate())
	assert.Equal(t, "AC-01", p.ControlID, "control id is canonicalized")
	assert.Equal(t, "AC-01", p.FullControlID())
	assert.Equal(t, "AC-01 - Review user accounts", p.String())

	bad := validControlPoint()
	bad.Frequency = Frequency("fortnightly")
	err := bad.Validate()
	require.Error(t, err, "unknown frequency fails at validation time")
	assert.Contains(t, err.Error(), "fortnightly")

	bad = validControlPoint()
	bad.ControlID = "  "
	assert.Error(t, bad.Validate())

	bad = validControlPoint()
	bad.CategoryID = 0
	assert.Error(t, bad.Validate())
}

func TestUpdateControlPointParams(t *testing.T) {
	p := validControlPoint()
	require.NoError(t, p.Validate())

	freq := "quarterly"
	name := "Review privileged accounts"
	active := false
	params := UpdateControlPointParams{Frequency: &freq, Name: &name, Active: &active}
	require.NoError(t, params.Apply(p))

	assert.Equal(t, FrequencyQuarterly, p.Frequency)
	assert.Equal(t, name, p.Name)
	assert.False(t, p.Active)
	assert.Equal(t, "AC-01", p.ControlID, "untouched fields stay")
}

func TestUpdateControlPointParamsRejectsUnknownFrequency(t *testing.T) {
	p := validControlPoint()
	freq := "fortnightly"
	params := UpdateControlPointParams{Frequency: &freq}

	assert.Error(t, params.Apply(p))
	assert.Equal(t, FrequencyMonthly, p.Frequency, "entity untouched on rejected update")
}

func TestUpdateCategoryParams(t *testing.T) {
	c := validCategory()
	require.NoError(t, c.Validate())

	code := "iam"
	params := UpdateCategoryParams{Code: &code}
	require.NoError(t, params.Apply(c))
	assert.Equal(t, "IAM", c.Code)

	badCode := "toolong"
	assert.Error(t, (&UpdateCategoryParams{Code: &badCode}).Apply(c))
}
