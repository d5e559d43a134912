package ports

import (
	"context"

	"github.com/aalvaropc/roulette/internal/domain"
)

// CatalogSource loads the static list of communities (file or URL).
type CatalogSource interface {
	LoadCommunities(ctx context.Context) ([]domain.Community, error)
}
