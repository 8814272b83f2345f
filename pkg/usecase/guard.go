package usecase

import "sync"

// completedCodes remembers OAuth (code, state) pairs that have already been
// submitted for completion. Redirect handlers can fire more than once for a
// single authorization, and the backend consumes each code exactly once, so
// repeated pairs are absorbed here instead of producing a second exchange.
type completedCodes struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newCompletedCodes() *completedCodes {
	return &completedCodes{seen: map[string]struct{}{}}
}

// begin records the pair and reports whether this is its first submission.
func (c *completedCodes) begin(code, state string) bool {
	key := code + "\x00" + state
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[key]; ok {
		return false
	}
	c.seen[key] = struct{}{}
	return true
}
