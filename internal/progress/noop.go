package progress

// Noop discards all progress reporting. Used by the core's tests and by
// callers that don't want a rendered bar (e.g. headless server runs that
// report progress through internal/metrics instead).
type Noop struct{}

func (Noop) SetLength(uint64)       {}
func (Noop) Inc(uint64)             {}
func (Noop) FinishWithMessage(string) {}
