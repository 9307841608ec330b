package tsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntervalContains(t *testing.T) {
	iv := Interval{Start: 2, End: 5}
	assert.True(t, iv.Contains(2))
	assert.True(t, iv.Contains(5))
	assert.True(t, iv.Contains(3.5))
	assert.False(t, iv.Contains(1.9))
	assert.False(t, iv.Contains(5.1))
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{Start: 0, End: 3}
	b := Interval{Start: 3, End: 5}
	c := Interval{Start: 4, End: 5}
	assert.True(t, a.Overlaps(b), "touching at the boundary counts as overlapping")
	assert.False(t, a.Overlaps(c))
}

func TestDefaultIntervalSpansHorizon(t *testing.T) {
	iv := DefaultInterval()
	assert.Equal(t, MinCost, iv.Start)
	assert.Equal(t, MaxCost, iv.End)
	assert.True(t, iv.Contains(0))
	assert.True(t, iv.Contains(1e12))
}
