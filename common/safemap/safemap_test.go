package safemap_test

import (
	"heroprobe/common/safemap"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafemapConcurrentSet(t *testing.T) {
	m := safemap.New[int, string]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Set(i, "v")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, m.Count())
	assert.Len(t, m.Values(), 50)
	assert.True(t, m.Exists(7))

	seen := 0
	m.Foreach(func(k int, v string) {
		seen++
	})
	assert.Equal(t, 50, seen)

	m.Remove(7)
	_, ok := m.Get(7)
	assert.False(t, ok)
	assert.Equal(t, 49, m.Count())
}
