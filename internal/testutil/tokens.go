package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator hands out record tokens "<prefix>-1", "<prefix>-2", ...
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario with the same prefix produces byte-identical traces.
//
// Unlike engine.FixedGenerator, which panics once its list runs out,
// SequenceGenerator never runs dry, so a scenario can apply any number of
// commands without listing tokens up front.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix means "rec".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "rec"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next token.
//
// Implements engine.TokenGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Reset restarts the sequence at 1.
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
