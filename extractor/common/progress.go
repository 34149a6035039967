package common

import "sync"

// ProgressFunc receives coarse milestones while documents are processed.
type ProgressFunc func(message string, percent int, detail string)

// Progress forwards milestones to a ProgressFunc, holding the reported
// percentage steady or rising even when callers report out of order. A nil
// *Progress discards everything.
type Progress struct {
	mu   sync.Mutex
	fn   ProgressFunc
	last int
}

// NewProgress wraps fn. It returns nil when fn is nil.
func NewProgress(fn ProgressFunc) *Progress {
	if fn == nil {
		return nil
	}
	return &Progress{fn: fn}
}

// Report sends a milestone. Percentages are clamped to 0..100.
func (p *Progress) Report(message string, percent int, detail string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if percent > 100 {
		percent = 100
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(message, percent, detail)
}
