package domain

import "strings"

// NSFWFilter controls which communities are eligible depending on their NSFW flag.
// The string values are the ones persisted under the "nsfwFilter" key.
type NSFWFilter string

const (
	FilterAll  NSFWFilter = "all"
	FilterNone NSFWFilter = "none"
	FilterOnly NSFWFilter = "only"
)

// DefaultFilter hides NSFW communities.
const DefaultFilter = FilterNone

// ParseNSFWFilter accepts stored values and a few human aliases.
func ParseNSFWFilter(s string) (NSFWFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "show-all", "show":
		return FilterAll, nil
	case "none", "hide", "hide-nsfw", "sfw":
		return FilterNone, nil
	case "only", "nsfw-only", "nsfw":
		return FilterOnly, nil
	}
	return "", &OpError{Op: "domain.parse_filter", Kind: KindInvalidConfig, Err: ErrInvalidFilter}
}

// Allows reports whether a community with the given NSFW flag passes the filter.
func (f NSFWFilter) Allows(nsfw bool) bool {
	switch f {
	case FilterAll:
		return true
	case FilterOnly:
		return nsfw
	default:
		return !nsfw
	}
}

// Next cycles all -> none -> only -> all.
func (f NSFWFilter) Next() NSFWFilter {
	switch f {
	case FilterAll:
		return FilterNone
	case FilterNone:
		return FilterOnly
	default:
		return FilterAll
	}
}

// Label is the human readable form shown in the UI.
func (f NSFWFilter) Label() string {
	switch f {
	case FilterAll:
		return "show all"
	case FilterOnly:
		return "nsfw only"
	default:
		return "hide nsfw"
	}
}
