package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

// Roulette holds the candidate list and the current selection.
// All methods are safe for concurrent use.
type Roulette struct {
	catalog ports.CatalogSource
	store   ports.PreferencesStore
	dialer  ports.InstanceDialer
	log     *slog.Logger
	intn    func(n int) int

	minPosts  int64
	postSort  string
	postLimit int

	mu          sync.Mutex
	prefs       domain.Preferences
	candidates  []domain.Community
	defederated []string
	followed    []string
	current     *domain.Community
	ticket      uint64
}

type RouletteOption func(*Roulette)

// WithRand makes selection deterministic in tests.
func WithRand(r *rand.Rand) RouletteOption {
	return func(uc *Roulette) { uc.intn = r.IntN }
}

func WithLogger(l *slog.Logger) RouletteOption {
	return func(uc *Roulette) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithSelection overrides the catalog and post listing parameters.
func WithSelection(cfg domain.Config) RouletteOption {
	return func(uc *Roulette) {
		uc.minPosts = cfg.Catalog.MinPosts
		uc.postSort = cfg.Posts.Sort
		uc.postLimit = cfg.Posts.Limit
	}
}

func NewRoulette(catalog ports.CatalogSource, store ports.PreferencesStore, dialer ports.InstanceDialer, opts ...RouletteOption) *Roulette {
	def := domain.DefaultConfig()
	uc := &Roulette{
		catalog:   catalog,
		store:     store,
		dialer:    dialer,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		intn:      rand.IntN,
		minPosts:  def.Catalog.MinPosts,
		postSort:  def.Posts.Sort,
		postLimit: def.Posts.Limit,
		prefs:     domain.DefaultPreferences(),
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// Load reads the stored preferences and the catalog, keeping communities with
// more than MinPosts posts that were not seen yet.
func (uc *Roulette) Load(ctx context.Context) error {
	if err := uc.LoadPreferences(); err != nil {
		return err
	}
	uc.mu.Lock()
	prefs := clonePrefs(uc.prefs)
	uc.mu.Unlock()

	all, err := uc.catalog.LoadCommunities(ctx)
	if err != nil {
		return err
	}

	candidates := lo.Filter(all, func(c domain.Community, _ int) bool {
		return c.Counts.Posts > uc.minPosts && !prefs.IsChecked(c.SeenKey())
	})

	uc.mu.Lock()
	uc.candidates = candidates
	uc.current = nil
	uc.ticket++
	uc.mu.Unlock()

	uc.log.Info("roulette.loaded", "catalog", len(all), "candidates", len(candidates))
	return nil
}

// LoadPreferences reads the stored preferences without touching the catalog.
func (uc *Roulette) LoadPreferences() error {
	prefs, err := uc.store.Load()
	if err != nil {
		return err
	}
	uc.mu.Lock()
	uc.prefs = prefs
	uc.mu.Unlock()
	return nil
}

// Pick selects a new random community and returns it with its ticket.
func (uc *Roulette) Pick() (domain.Community, uint64, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.pickLocked()
}

// Select makes the candidate identified by key current. key is either a seen
// key ("instance_id@id") or a follow key ("name@host"). Exclusion rules do not
// apply: the caller named the community explicitly.
func (uc *Roulette) Select(key string) (domain.Community, uint64, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	key = strings.TrimSpace(key)
	c, ok := lo.Find(uc.candidates, func(c domain.Community) bool {
		return c.SeenKey() == key || strings.EqualFold(c.FollowKey(), key)
	})
	if !ok {
		return domain.Community{}, uc.ticket, &domain.OpError{
			Op:   "roulette.select",
			Kind: domain.KindNotFound,
			Path: key,
			Err:  domain.ErrNotFound,
		}
	}
	uc.ticket++
	uc.current = &c
	return c, uc.ticket, nil
}

// Current returns the current selection, if any.
func (uc *Roulette) Current() (domain.Community, uint64, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.current == nil {
		return domain.Community{}, uc.ticket, false
	}
	return *uc.current, uc.ticket, true
}

// Posts fetches the listing of the community selected under ticket from its
// own instance. A response arriving after the selection moved on yields ErrStale.
func (uc *Roulette) Posts(ctx context.Context, ticket uint64) ([]domain.Post, error) {
	uc.mu.Lock()
	if uc.current == nil || uc.ticket != ticket {
		uc.mu.Unlock()
		return nil, staleError()
	}
	c := *uc.current
	uc.mu.Unlock()

	posts, err := uc.dialer.Dial(c.URL).GetPosts(ctx, ports.PostsQuery{
		CommunityID:   c.ID,
		CommunityName: c.Name,
		Sort:          uc.postSort,
		Limit:         uc.postLimit,
	})

	uc.mu.Lock()
	stale := uc.ticket != ticket
	uc.mu.Unlock()
	if stale {
		uc.log.Debug("roulette.posts_stale", "community", c.ActorID)
		return nil, staleError()
	}
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Skip marks the current community as seen, drops it and picks again.
func (uc *Roulette) Skip() (domain.Community, uint64, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.current != nil {
		if err := uc.retireLocked(*uc.current); err != nil {
			return domain.Community{}, uc.ticket, err
		}
	}
	return uc.pickLocked()
}

// Reroll picks again without marking the current community as seen.
func (uc *Roulette) Reroll() (domain.Community, uint64, error) {
	return uc.Pick()
}

// Follow subscribes the logged in user to the current community through their
// home instance, then behaves like Skip.
func (uc *Roulette) Follow(ctx context.Context) (domain.Community, uint64, error) {
	uc.mu.Lock()
	sess := uc.prefs.Session
	cur := uc.current
	uc.mu.Unlock()

	if !sess.LoggedIn() {
		return domain.Community{}, 0, &domain.OpError{Op: "roulette.follow", Kind: domain.KindUnauthorized, Err: domain.ErrNotLoggedIn}
	}
	if cur == nil {
		return domain.Community{}, 0, &domain.OpError{Op: "roulette.follow", Kind: domain.KindNoCandidates, Err: domain.ErrNoCandidates}
	}
	c := *cur

	api := uc.dialer.Dial(sess.Instance)
	local, err := api.GetCommunity(ctx, sess.JWT, c.FollowKey())
	if err != nil {
		return domain.Community{}, 0, err
	}
	if err := api.FollowCommunity(ctx, sess.JWT, local.ID, true); err != nil {
		return domain.Community{}, 0, err
	}
	uc.log.Info("roulette.followed", "community", c.FollowKey(), "instance", sess.Instance)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !lo.Contains(uc.followed, c.FollowKey()) {
		uc.followed = append(uc.followed, c.FollowKey())
	}
	if err := uc.retireLocked(c); err != nil {
		return domain.Community{}, uc.ticket, err
	}
	// The user may have moved on while the follow was in flight.
	if uc.current != nil && uc.current.SeenKey() != c.SeenKey() {
		return *uc.current, uc.ticket, nil
	}
	return uc.pickLocked()
}

// SetDefederated replaces the list of hosts the home instance blocks.
func (uc *Roulette) SetDefederated(hosts []string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.defederated = lo.Uniq(lo.Map(hosts, func(h string, _ int) string { return normalize(h) }))
}

// SetFollowed replaces the list of name@host keys the user is subscribed to.
func (uc *Roulette) SetFollowed(keys []string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.followed = lo.Uniq(keys)
}

// Remaining is the number of candidates left, before exclusion rules.
func (uc *Roulette) Remaining() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.candidates)
}

// Preferences returns a copy of the in-memory preferences.
func (uc *Roulette) Preferences() domain.Preferences {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return clonePrefs(uc.prefs)
}

// UpdatePreferences applies fn and persists the result when fn reports a change.
func (uc *Roulette) UpdatePreferences(fn func(p *domain.Preferences) bool) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	next := clonePrefs(uc.prefs)
	if !fn(&next) {
		return nil
	}
	if err := uc.store.Save(next); err != nil {
		return err
	}
	uc.prefs = next
	return nil
}

// ResetSeen forgets every seen community. Candidates come back on the next Load.
func (uc *Roulette) ResetSeen() error {
	return uc.UpdatePreferences(func(p *domain.Preferences) bool {
		if len(p.CheckedCommunities) == 0 {
			return false
		}
		p.CheckedCommunities = []string{}
		return true
	})
}

func (uc *Roulette) retireLocked(c domain.Community) error {
	next := clonePrefs(uc.prefs)
	if next.MarkChecked(c.SeenKey()) {
		if err := uc.store.Save(next); err != nil {
			return err
		}
		uc.prefs = next
	}
	key := c.SeenKey()
	uc.candidates = lo.Reject(uc.candidates, func(x domain.Community, _ int) bool {
		return x.SeenKey() == key
	})
	return nil
}

func (uc *Roulette) pickLocked() (domain.Community, uint64, error) {
	uc.ticket++
	uc.current = nil

	n := len(uc.candidates)
	for attempt := 0; attempt < 4*n; attempt++ {
		c := uc.candidates[uc.intn(n)]
		if uc.eligibleLocked(c) {
			uc.current = &c
			return c, uc.ticket, nil
		}
	}

	// Rejection sampling gave up: either the list is exhausted or most of it
	// is excluded. Draw uniformly from what is actually left.
	left := lo.Filter(uc.candidates, func(c domain.Community, _ int) bool {
		return uc.eligibleLocked(c)
	})
	if len(left) == 0 {
		return domain.Community{}, uc.ticket, &domain.OpError{
			Op:   "roulette.pick",
			Kind: domain.KindNoCandidates,
			Err:  domain.ErrNoCandidates,
		}
	}
	c := left[uc.intn(len(left))]
	uc.current = &c
	return c, uc.ticket, nil
}

// Exclusion order: defederated host, already followed, blocked instance, NSFW filter.
func (uc *Roulette) eligibleLocked(c domain.Community) bool {
	if lo.Contains(uc.defederated, c.Host()) {
		uc.log.Debug("roulette.skip_defederated", "community", c.ActorID)
		return false
	}
	if lo.Contains(uc.followed, c.FollowKey()) {
		uc.log.Debug("roulette.skip_followed", "community", c.ActorID)
		return false
	}
	if uc.prefs.IsBlocked(c.URL) {
		return false
	}
	return uc.prefs.Filter.Allows(c.NSFW)
}

func staleError() error {
	return &domain.OpError{Op: "roulette.posts", Kind: domain.KindStale, Err: domain.ErrStale}
}

// IsStale reports whether err only means the selection moved on.
func IsStale(err error) bool {
	return errors.Is(err, domain.ErrStale)
}

func clonePrefs(p domain.Preferences) domain.Preferences {
	out := p
	out.BlockedInstances = append([]string{}, p.BlockedInstances...)
	out.CheckedCommunities = append([]string{}, p.CheckedCommunities...)
	return out
}
