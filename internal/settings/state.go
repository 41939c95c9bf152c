package settings

import "sync/atomic"

// State provides a concurrency-safe view of the active settings.
type State struct {
	current atomic.Pointer[Settings]
}

// NewState constructs a new state seeded with settings.
func NewState(settings Settings) *State {
	st := &State{}
	st.Apply(settings)
	return st
}

// SyncEnabled reports whether translation sync is enabled globally.
func (s *State) SyncEnabled() bool {
	if s == nil {
		return false
	}
	if current := s.current.Load(); current != nil {
		return current.SyncEnabled
	}
	return false
}

// Snapshot returns the active settings.
func (s *State) Snapshot() Settings {
	if s == nil {
		return Settings{}
	}
	if current := s.current.Load(); current != nil {
		return *current
	}
	return Settings{}
}

// Apply replaces the active settings.
func (s *State) Apply(settings Settings) {
	if s == nil {
		return
	}
	copied := settings
	s.current.Store(&copied)
}

// Watch applies every change event from the repository until the context
// ends. It is meant to run on its own goroutine.
func (s *State) Watch(events <-chan ChangeEvent) {
	if s == nil {
		return
	}
	for event := range events {
		if event.Type == ChangeDeleted {
			s.Apply(Settings{})
			continue
		}
		s.Apply(event.Settings)
	}
}
