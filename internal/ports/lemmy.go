package ports

import (
	"context"

	"github.com/aalvaropc/roulette/internal/domain"
)

// PostsQuery selects the listing shown for a community.
type PostsQuery struct {
	CommunityID   int64
	CommunityName string
	Sort          string
	Limit         int
}

// InstanceAPI is the subset of the Lemmy HTTP API roulette needs.
// An implementation is bound to a single instance.
type InstanceAPI interface {
	Login(ctx context.Context, username, password string) (jwt string, err error)
	GetPosts(ctx context.Context, q PostsQuery) ([]domain.Post, error)
	// GetCommunity resolves "name@host" through this instance and returns its local id.
	GetCommunity(ctx context.Context, jwt, name string) (domain.Community, error)
	FollowCommunity(ctx context.Context, jwt string, communityID int64, follow bool) error
	// ListSubscribed returns one page (starting at 1) of subscribed communities.
	ListSubscribed(ctx context.Context, jwt string, page, limit int) ([]domain.Community, error)
	// BlockedInstances returns the domains this instance defederated from.
	BlockedInstances(ctx context.Context) ([]string, error)
}

// InstanceDialer builds an InstanceAPI for a given instance host or base URL.
type InstanceDialer interface {
	Dial(instance string) InstanceAPI
}
