package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNextVersion(t *testing.T) {
	assert.Equal(t, 1, NextVersion(0, nil))
	assert.Equal(t, 3, NextVersion(0, []int{1, 2}))
	assert.Equal(t, 3, NextVersion(2, []int{1}), "deleted numbers are not reused")
	assert.Equal(t, 6, NextVersion(2, []int{5, 3}))
}

func TestNextVersionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		highWater := rapid.IntRange(0, 1000).Draw(t, "highWater")
		existing := rapid.SliceOf(rapid.IntRange(1, 1000)).Draw(t, "existing")

		next := NextVersion(highWater, existing)
		assert.Greater(t, next, highWater)
		for _, n := range existing {
			assert.Greater(t, next, n)
		}
	})
}
