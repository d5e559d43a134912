package ports

import "github.com/aalvaropc/roulette/internal/domain"

// PreferencesStore persists the user's preferences and session between runs.
type PreferencesStore interface {
	Load() (domain.Preferences, error)
	Save(p domain.Preferences) error
}
