package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceStartsAtOne(t *testing.T) {
	var s Sequence
	assert.Equal(t, int64(1), s.Next())
	assert.Equal(t, int64(2), s.Next())
}

func TestSequenceIsMonotonicUnderConcurrentUse(t *testing.T) {
	var s Sequence
	var wg sync.WaitGroup
	seen := make([]int64, 200)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = s.Next()
		}(i)
	}
	wg.Wait()

	unique := map[int64]bool{}
	for _, v := range seen {
		assert.False(t, unique[v], "value %d produced twice", v)
		unique[v] = true
	}
	assert.Len(t, unique, 200)
}

func TestNewTraceIDProducesDistinctValues(t *testing.T) {
	a := NewTraceID()
	b := NewTraceID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
