package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/finder/internal/finder"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Health              finder.Health
	HasHealth           bool
	Objects             []finder.TrackedObject
	HasObjects          bool
	History             finder.SearchHistory
	Suggestions         []string
	CommonObjects       []finder.ObjectTemplate
	LastUpdated         time.Time
	LastError           error // first outstanding error, health first
	HealthErr           error
	ObjectsErr          error
	HistoryErr          error
	SuggestionsErr      error
	ConsecutiveFailures int // consecutive failed health checks
}

// APIStatus returns the service status to display. It reports "checking"
// until the first health check completes and "error" while checks fail.
func (s Snapshot) APIStatus() finder.HealthStatus {
	switch {
	case s.ConsecutiveFailures > 0:
		return finder.HealthError
	case !s.HasHealth:
		return finder.HealthChecking
	case s.Health.Status == "":
		return finder.HealthError
	default:
		return s.Health.Status
	}
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// UpdateHealth records a health check. A failure bumps ConsecutiveFailures
// and keeps the previous payload. It is the only update that moves the
// failure counter.
func (s *Store) UpdateHealth(health *finder.Health, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	s.snapshot.HealthErr = err
	if err != nil {
		s.snapshot.ConsecutiveFailures++
		return
	}
	if health != nil {
		s.snapshot.Health = *health
		s.snapshot.HasHealth = true
	}
	s.snapshot.ConsecutiveFailures = 0
}

// UpdateObjects replaces the tracked object list. When err is non-nil the
// previous list is kept but the error is recorded for visibility.
func (s *Store) UpdateObjects(objects []finder.TrackedObject, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ObjectsErr = err
	if err != nil {
		return
	}
	s.snapshot.Objects = cloneObjects(objects)
	s.snapshot.HasObjects = true
}

// UpdateHistory replaces the search history.
func (s *Store) UpdateHistory(history *finder.SearchHistory, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	s.snapshot.HistoryErr = err
	if err != nil {
		return
	}
	if history != nil {
		s.snapshot.History = cloneHistory(*history)
	}
}

// UpdateSuggestions replaces the query suggestions and quick-add templates.
func (s *Store) UpdateSuggestions(suggestions []string, common []finder.ObjectTemplate, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	s.snapshot.SuggestionsErr = err
	if err != nil {
		return
	}
	s.snapshot.Suggestions = slices.Clone(suggestions)
	s.snapshot.CommonObjects = slices.Clone(common)
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Objects = cloneObjects(s.snapshot.Objects)
	snap.History = cloneHistory(s.snapshot.History)
	snap.Suggestions = slices.Clone(s.snapshot.Suggestions)
	snap.CommonObjects = slices.Clone(s.snapshot.CommonObjects)
	snap.HealthErr = cloneErr(s.snapshot.HealthErr)
	snap.ObjectsErr = cloneErr(s.snapshot.ObjectsErr)
	snap.HistoryErr = cloneErr(s.snapshot.HistoryErr)
	snap.SuggestionsErr = cloneErr(s.snapshot.SuggestionsErr)
	snap.LastError = nil
	for _, err := range []error{snap.HealthErr, snap.ObjectsErr, snap.HistoryErr, snap.SuggestionsErr} {
		if err != nil {
			snap.LastError = err
			break
		}
	}
	return snap
}

func cloneErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w", err)
}

func cloneObjects(items []finder.TrackedObject) []finder.TrackedObject {
	if len(items) == 0 {
		return nil
	}
	dup := make([]finder.TrackedObject, len(items))
	for i, item := range items {
		dup[i] = cloneObject(item)
	}
	return dup
}

func cloneObject(o finder.TrackedObject) finder.TrackedObject {
	if o.LastSeen != nil {
		v := *o.LastSeen
		o.LastSeen = &v
	}
	if o.Confidence != nil {
		v := *o.Confidence
		o.Confidence = &v
	}
	return o
}

func cloneHistory(h finder.SearchHistory) finder.SearchHistory {
	h.FoundObjects = cloneObjects(h.FoundObjects)
	return h
}
