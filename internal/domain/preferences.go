package domain

import (
	"strings"

	"github.com/samber/lo"
)

// Storage keys. They match the names the browser version used in localStorage
// so an exported storage object can be imported unchanged.
const (
	KeyBlockedInstances   = "blockedInstances"
	KeyCheckedCommunities = "checkedCommunities"
	KeyNSFWFilter         = "nsfwFilter"
	KeyJWT                = "jwt"
	KeyUserInstance       = "userInstance"
)

// Session is the credential against the user's home instance.
type Session struct {
	JWT      string
	Instance string
}

// LoggedIn reports whether both a token and a home instance are known.
func (s Session) LoggedIn() bool {
	return strings.TrimSpace(s.JWT) != "" && strings.TrimSpace(s.Instance) != ""
}

// Preferences is everything persisted between runs.
type Preferences struct {
	Filter             NSFWFilter
	BlockedInstances   []string
	CheckedCommunities []string
	Session            Session
}

// DefaultPreferences is what a fresh install starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		Filter:             DefaultFilter,
		BlockedInstances:   []string{},
		CheckedCommunities: []string{},
	}
}

func normalizeHost(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}

// IsBlocked compares case-insensitively.
func (p Preferences) IsBlocked(host string) bool {
	return lo.Contains(p.BlockedInstances, normalizeHost(host))
}

// Block adds host to the blocked instances. Returns false if it was already there.
func (p *Preferences) Block(host string) bool {
	h := normalizeHost(host)
	if h == "" || p.IsBlocked(h) {
		return false
	}
	p.BlockedInstances = append(p.BlockedInstances, h)
	return true
}

// Unblock removes host. Returns false if it was not blocked.
func (p *Preferences) Unblock(host string) bool {
	h := normalizeHost(host)
	if !p.IsBlocked(h) {
		return false
	}
	p.BlockedInstances = lo.Without(p.BlockedInstances, h)
	return true
}

func (p Preferences) IsChecked(key string) bool {
	return lo.Contains(p.CheckedCommunities, key)
}

// MarkChecked records a community as seen. Returns false on duplicates.
func (p *Preferences) MarkChecked(key string) bool {
	if key == "" || p.IsChecked(key) {
		return false
	}
	p.CheckedCommunities = append(p.CheckedCommunities, key)
	return true
}

// Masked returns a copy safe to print.
func (p Preferences) Masked() Preferences {
	out := p
	out.BlockedInstances = append([]string(nil), p.BlockedInstances...)
	out.CheckedCommunities = append([]string(nil), p.CheckedCommunities...)
	if out.Session.JWT != "" {
		out.Session.JWT = MaskValue
	}
	return out
}

// MaskValue replaces secrets in printed output.
const MaskValue = "********"
