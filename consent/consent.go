package consent

import "sync"

// Settings holds the four independent permission flags. A nil field means
// "unset": merging it into the store changes nothing.
type Settings struct {
	Analytics       *bool `yaml:"analytics" mapstructure:"analytics"`
	ErrorTracking   *bool `yaml:"error_tracking" mapstructure:"error_tracking"`
	Marketing       *bool `yaml:"marketing" mapstructure:"marketing"`
	Personalization *bool `yaml:"personalization" mapstructure:"personalization"`
}

// Bool returns a pointer to v, for building Settings literals.
func Bool(v bool) *bool { return &v }

// AllowsAnalytics reports whether analytics dispatch is permitted.
// An unset flag counts as permitted; only an explicit false denies.
func (s Settings) AllowsAnalytics() bool {
	return s.Analytics == nil || *s.Analytics
}

// AllowsErrorTracking reports whether error-tracking dispatch is permitted.
func (s Settings) AllowsErrorTracking() bool {
	return s.ErrorTracking == nil || *s.ErrorTracking
}

// merge applies every set flag of delta on top of s and returns the result.
func (s Settings) merge(delta Settings) Settings {
	if delta.Analytics != nil {
		s.Analytics = delta.Analytics
	}
	if delta.ErrorTracking != nil {
		s.ErrorTracking = delta.ErrorTracking
	}
	if delta.Marketing != nil {
		s.Marketing = delta.Marketing
	}
	if delta.Personalization != nil {
		s.Personalization = delta.Personalization
	}
	return s
}

// Store holds the current effective consent state.
type Store struct {
	mu      sync.RWMutex
	current Settings
}

// NewStore creates a Store seeded with the given initial settings.
func NewStore(initial Settings) *Store {
	return &Store{current: initial}
}

// Update merges every set flag of delta into the store and returns the
// resulting effective settings.
func (s *Store) Update(delta Settings) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.current.merge(delta)
	return s.current
}

// Get returns the current effective settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
