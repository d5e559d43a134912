package usecase

import "github.com/aalvaropc/roulette/internal/domain"

// Preferences edits the persisted filter, blocked instances and seen list.
type Preferences struct {
	roulette *Roulette
}

func NewPreferences(r *Roulette) *Preferences {
	return &Preferences{roulette: r}
}

// SetFilter parses and stores the NSFW filter.
func (uc *Preferences) SetFilter(value string) (domain.NSFWFilter, error) {
	f, err := domain.ParseNSFWFilter(value)
	if err != nil {
		return "", err
	}
	return f, uc.roulette.UpdatePreferences(func(p *domain.Preferences) bool {
		if p.Filter == f {
			return false
		}
		p.Filter = f
		return true
	})
}

// CycleFilter advances the filter all -> none -> only.
func (uc *Preferences) CycleFilter() (domain.NSFWFilter, error) {
	var next domain.NSFWFilter
	err := uc.roulette.UpdatePreferences(func(p *domain.Preferences) bool {
		p.Filter = p.Filter.Next()
		next = p.Filter
		return true
	})
	return next, err
}

// Block hides every community served by host. It reports whether anything changed.
func (uc *Preferences) Block(host string) (bool, error) {
	var changed bool
	err := uc.roulette.UpdatePreferences(func(p *domain.Preferences) bool {
		changed = p.Block(host)
		return changed
	})
	return changed, err
}

func (uc *Preferences) Unblock(host string) (bool, error) {
	var changed bool
	err := uc.roulette.UpdatePreferences(func(p *domain.Preferences) bool {
		changed = p.Unblock(host)
		return changed
	})
	return changed, err
}

func (uc *Preferences) ResetSeen() error {
	return uc.roulette.ResetSeen()
}

// Show returns the preferences with the token masked.
func (uc *Preferences) Show() domain.Preferences {
	return uc.roulette.Preferences().Masked()
}
