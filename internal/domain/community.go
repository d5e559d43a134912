package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// Counts are the aggregate numbers shipped with each catalog entry.
type Counts struct {
	Posts       int64
	Subscribers int64
	Comments    int64
}

// Community is a single entry of the community catalog.
type Community struct {
	ID          int64
	InstanceID  int64
	Name        string
	Title       string
	Description string
	Icon        string
	ActorID     string
	NSFW        bool

	Counts Counts

	// URL is the host of the instance that serves this community,
	// e.g. "lemmy.ml". Posts are fetched from https://<URL>.
	URL string
}

// Host returns the hostname the community lives on. ActorID is authoritative;
// URL is used when ActorID cannot be parsed.
func (c Community) Host() string {
	if u, err := url.Parse(c.ActorID); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	return strings.ToLower(strings.TrimSpace(c.URL))
}

// SeenKey identifies the community in the list of already seen communities.
func (c Community) SeenKey() string {
	return strconv.FormatInt(c.InstanceID, 10) + "@" + strconv.FormatInt(c.ID, 10)
}

// FollowKey identifies the community the way subscriptions are listed: name@host.
func (c Community) FollowKey() string {
	return FollowKey(c.Name, c.ActorID)
}

// BaseURL is the API root of the instance hosting the community.
func (c Community) BaseURL() string {
	return InstanceURL(c.URL)
}

// FollowKey builds "name@host" from a community name and its actor id.
func FollowKey(name, actorID string) string {
	host := actorID
	if u, err := url.Parse(actorID); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return name + "@" + strings.ToLower(host)
}

// InstanceURL turns a bare instance host into an https base URL. Values that
// already carry a scheme are returned unchanged (minus a trailing slash).
func InstanceURL(instance string) string {
	s := strings.TrimSpace(instance)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return strings.TrimRight(s, "/")
	}
	return "https://" + strings.TrimRight(s, "/")
}

// Post is one entry of a community's post listing.
type Post struct {
	ID               int64
	Name             string
	Body             string
	URL              string
	ThumbnailURL     string
	EmbedTitle       string
	EmbedDescription string
	EmbedVideoURL    string
	APID             string
	Score            int64
}

// HasMP4Embed reports whether the embedded video can be played inline.
func (p Post) HasMP4Embed() bool {
	return p.EmbedVideoURL != "" && strings.HasSuffix(strings.ToLower(p.EmbedVideoURL), ".mp4")
}
