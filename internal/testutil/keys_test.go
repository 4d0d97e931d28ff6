package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialKeyGenerator(t *testing.T) {
	gen := NewSequentialKeyGenerator("sess")

	assert.Equal(t, "sess-0001", gen.Generate())
	assert.Equal(t, "sess-0002", gen.Generate())

	gen.Reset()
	assert.Equal(t, "sess-0001", gen.Generate())
}

func TestSequentialKeyGenerator_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "key-0001", NewSequentialKeyGenerator("").Generate())
}

func TestSequentialKeyGenerator_Concurrent(t *testing.T) {
	gen := NewSequentialKeyGenerator("k")

	const n = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool, n)
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := gen.Generate()
			mu.Lock()
			seen[key] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "keys must be unique")
	assert.True(t, seen["k-0100"])
}
