package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, completionRate(0, 0))
	assert.Equal(t, 0.0, completionRate(0, 12))
	assert.Equal(t, 100.0, completionRate(12, 12))
	assert.Equal(t, 33.3, completionRate(1, 3))
	assert.Equal(t, 66.7, completionRate(2, 3))
	assert.Equal(t, 25.0, completionRate(1, 4))
}

func TestCompactCompletionRate(t *testing.T) {
	assert.Equal(t, 33, YearStatistics{CompletionRate: 33.3}.CompactCompletionRate())
	assert.Equal(t, 67, YearStatistics{CompletionRate: 66.7}.CompactCompletionRate())
	assert.Equal(t, 0, YearStatistics{}.CompactCompletionRate())
}

func TestFirstID(t *testing.T) {
	assert.Equal(t, int64(5), firstID(5, 3, 1))
	assert.Equal(t, int64(3), firstID(0, 3, 1))
	assert.Equal(t, int64(1), firstID(0, 0, 1))
	assert.Equal(t, int64(0), firstID(0, 0, 0))
	assert.Equal(t, int64(0), firstID())
}

func TestResolveAuthorID(t *testing.T) {
	assert.Equal(t, int64(10), resolveAuthorID(10, 42, 1))
	assert.Equal(t, int64(42), resolveAuthorID(0, 42, 1))
	assert.Equal(t, int64(1), resolveAuthorID(0, 0, 1))
}

func TestBatchResultString(t *testing.T) {
	var res BatchResult
	res.Succeeded = 3
	res.Created = 2
	res.addFailure("AC-01", errors.New("boom"))
	assert.Equal(t, "succeeded=3 created=2 failed=1", res.String())
	assert.Equal(t, "AC-01", res.Failed[0].Identity)
	assert.Equal(t, "boom", res.Failed[0].Message)
}
