package status

import "sync/atomic"

// MaxLabelLen bounds label values so the status bar stays on one row
const MaxLabelLen = 24

// Label is an atomically replaced short string; zero value is empty
type Label struct {
	ptr atomic.Pointer[string]
}

// Store sets the value, truncated to MaxLabelLen
func (l *Label) Store(val string) {
	if len(val) > MaxLabelLen {
		val = val[:MaxLabelLen]
	}
	l.ptr.Store(&val)
}

// Load returns the current value
func (l *Label) Load() string {
	if p := l.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
