package testutil

import (
	"fmt"
	"sync"
)

// SequentialKeyGenerator produces predictable string keys for tests:
// "<prefix>-0001", "<prefix>-0002", ...
//
// It stands in for the UUIDv7 generator so that tables with generated
// string keys traverse in a known order and golden output stays stable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialKeyGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int
}

// NewSequentialKeyGenerator creates a generator. An empty prefix uses
// "key".
func NewSequentialKeyGenerator(prefix string) *SequentialKeyGenerator {
	if prefix == "" {
		prefix = "key"
	}
	return &SequentialKeyGenerator{prefix: prefix}
}

// Generate returns the next key.
func (g *SequentialKeyGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%04d", g.prefix, g.seq)
}

// Reset restarts the sequence. After Reset, Generate returns
// "<prefix>-0001" again.
func (g *SequentialKeyGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
