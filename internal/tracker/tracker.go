package tracker

import (
	"sync"
	"time"

	"github.com/Christopher-Hayes/active-window/internal/logging"
	"github.com/Christopher-Hayes/active-window/window"
)

// Session is one continuous stretch of focus on an application.
type Session struct {
	Start    time.Time     `json:"start_time" yaml:"start_time"`
	End      time.Time     `json:"end_time" yaml:"end_time"`
	Name     string        `json:"name" yaml:"name"`
	PID      int           `json:"pid" yaml:"pid"`
	Extents  [4]int        `json:"extents" yaml:"extents"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Active   bool          `json:"active" yaml:"active"` // true if session is currently ongoing
}

// Summary aggregates the sessions of one application.
type Summary struct {
	Name          string        `json:"name" yaml:"name"`
	TotalDuration time.Duration `json:"total_duration" yaml:"total_duration"`
	SessionCount  int           `json:"session_count" yaml:"session_count"`
	FirstSeen     time.Time     `json:"first_seen" yaml:"first_seen"`
	LastSeen      time.Time     `json:"last_seen" yaml:"last_seen"`
}

// Tracker turns a stream of active-window lookups into focus sessions.
type Tracker struct {
	mu             sync.RWMutex
	current        *Session
	sessions       []Session
	MergeThreshold time.Duration // merge same-name sessions separated by less than this
	MinDuration    time.Duration // drop sessions shorter than this
	ignored        map[string]bool
}

func New(mergeThreshold, minDuration time.Duration) *Tracker {
	return &Tracker{
		sessions:       make([]Session, 0),
		MergeThreshold: mergeThreshold,
		MinDuration:    minDuration,
		ignored:        make(map[string]bool),
	}
}

// SetIgnored replaces the set of application names that are never tracked.
func (t *Tracker) SetIgnored(names map[string]bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ignored = make(map[string]bool, len(names))
	for name, ignored := range names {
		if ignored {
			t.ignored[name] = true
		}
	}
}

// IsIgnored checks if an application should be ignored
func (t *Tracker) IsIgnored(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ignored[name]
}

// Observe feeds one lookup result. A new session starts when the name or pid
// changes; the current one ends when nothing is active or the new window is
// ignored. Geometry changes only update the recorded extents.
func (t *Tracker) Observe(summary window.Summary, ok bool, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !ok {
		t.endCurrentLocked(now)
		t.current = nil
		return
	}

	if t.ignored[summary.Name] {
		logging.Debugf("Ignoring application: %s", summary.Name)
		t.endCurrentLocked(now)
		t.current = nil
		return
	}

	if t.current != nil && t.current.Active && t.current.Name == summary.Name && t.current.PID == summary.PID {
		t.current.Extents = summary.Extents
		return
	}

	t.endCurrentLocked(now)
	t.current = &Session{
		Start:   now,
		Name:    summary.Name,
		PID:     summary.PID,
		Extents: summary.Extents,
		Active:  true,
	}
}

// Current returns a copy of the ongoing session.
func (t *Tracker) Current() (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil || !t.current.Active {
		return Session{}, false
	}
	return *t.current, true
}

// EndCurrent ends the ongoing session, if any.
func (t *Tracker) EndCurrent(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endCurrentLocked(now)
}

// endCurrentLocked ends the current session (must be called with lock held)
func (t *Tracker) endCurrentLocked(end time.Time) {
	if t.current == nil || !t.current.Active {
		return
	}

	t.current.End = end
	t.current.Duration = end.Sub(t.current.Start)
	t.current.Active = false

	if t.current.Duration < t.MinDuration {
		return
	}
	if t.shouldMergeLocked() {
		last := &t.sessions[len(t.sessions)-1]
		last.End = t.current.End
		last.Duration = last.End.Sub(last.Start)
		last.PID = t.current.PID
		last.Extents = t.current.Extents
		return
	}
	t.sessions = append(t.sessions, *t.current)
}

// shouldMergeLocked checks if the current session continues the previous one
func (t *Tracker) shouldMergeLocked() bool {
	if len(t.sessions) == 0 || t.current == nil {
		return false
	}
	last := t.sessions[len(t.sessions)-1]
	if last.Name != t.current.Name {
		return false
	}
	return t.current.Start.Sub(last.End) <= t.MergeThreshold
}

// Sessions returns a copy of the completed sessions.
func (t *Tracker) Sessions() []Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Session, len(t.sessions))
	copy(out, t.sessions)
	return out
}

// Drain returns the completed sessions and forgets them, keeping the ongoing one.
func (t *Tracker) Drain() []Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.sessions
	t.sessions = make([]Session, 0)
	return out
}

// Summaries aggregates completed sessions and the ongoing one by name.
func (t *Tracker) Summaries(now time.Time) map[string]Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summaries := make(map[string]Summary)
	add := func(name string, start, end time.Time, d time.Duration) {
		s, exists := summaries[name]
		if !exists {
			s = Summary{Name: name, FirstSeen: start, LastSeen: end}
		}
		s.TotalDuration += d
		s.SessionCount++
		if start.Before(s.FirstSeen) {
			s.FirstSeen = start
		}
		if end.After(s.LastSeen) {
			s.LastSeen = end
		}
		summaries[name] = s
	}

	for _, session := range t.sessions {
		add(session.Name, session.Start, session.End, session.Duration)
	}
	if t.current != nil && t.current.Active {
		add(t.current.Name, t.current.Start, now, now.Sub(t.current.Start))
	}
	return summaries
}
