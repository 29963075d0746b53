package viewstate

import (
	"context"
	"sync"
	"time"
)

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is the outcome of the most recent operation.
type Notice struct {
	Page    string
	Level   Level
	Title   string
	Message string
	// AutoDismiss is zero for notices the user must dismiss by hand.
	AutoDismiss time.Duration
	At          time.Time
}

// Manual reports whether the notice waits for the user.
func (n Notice) Manual() bool {
	return n.AutoDismiss <= 0
}

// Recorder receives every notice after it is published, e.g. for an activity log.
type Recorder interface {
	Record(ctx context.Context, n Notice)
}

// Sink keeps exactly one notice. Publishing replaces the previous one; nothing
// is queued.
type Sink struct {
	mu      sync.Mutex
	current *Notice
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Notify replaces the current notice.
func (s *Sink) Notify(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &n
}

// Peek returns the current notice without clearing it.
func (s *Sink) Peek() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Notice{}, false
	}
	return *s.current, true
}

// Take returns the current notice and clears it, so a rendered notice is shown once.
func (s *Sink) Take() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Notice{}, false
	}
	n := *s.current
	s.current = nil
	return n, true
}

// Dismiss clears the current notice.
func (s *Sink) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
