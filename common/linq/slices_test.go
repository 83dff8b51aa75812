package linq_test

import (
	"heroprobe/common/linq"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelectWhere(t *testing.T) {
	words := []string{"init", "error", "new_chat_message"}
	lens := linq.Select(words, func(s string) int { return len(s) })
	assert.Equal(t, []int{4, 5, 16}, lens)

	long := linq.Where(words, func(s string) bool { return len(s) > 4 })
	assert.Equal(t, []string{"error", "new_chat_message"}, long)
	assert.Equal(t, 2, linq.Count(words, func(s string) bool { return len(s) > 4 }))
}

func TestMeanMax(t *testing.T) {
	d := []time.Duration{time.Millisecond, 3 * time.Millisecond}
	assert.Equal(t, 3*time.Millisecond, linq.Max(d))
	assert.InDelta(t, 2.0, linq.Mean(d, func(x time.Duration) float64 {
		return float64(x) / float64(time.Millisecond)
	}), 1e-9)

	assert.Zero(t, linq.Max([]time.Duration{}))
	assert.Zero(t, linq.Mean([]int{}, func(int) float64 { return 1 }))
}
