package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_EarlierNumberGoesStale(t *testing.T) {
	var tr Tracker

	first := tr.Next()
	second := tr.Next()

	assert.True(t, tr.Current(second))
	assert.False(t, tr.Current(first), "an earlier fetch must not be applied after a later one was issued")
	assert.Equal(t, second, tr.Latest())
}

func TestTracker_Monotonic(t *testing.T) {
	var tr Tracker
	prev := tr.Next()
	for i := 0; i < 100; i++ {
		n := tr.Next()
		assert.Greater(t, n, prev)
		prev = n
	}
}
