package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

// --- fakes shared by the usecase tests ---

type fakeCatalog struct {
	communities []domain.Community
	err         error
}

func (f fakeCatalog) LoadCommunities(_ context.Context) ([]domain.Community, error) {
	return f.communities, f.err
}

type memStore struct {
	mu    sync.Mutex
	prefs domain.Preferences
	saves int
	err   error
}

func newMemStore() *memStore {
	return &memStore{prefs: domain.DefaultPreferences()}
}

func (s *memStore) Load() (domain.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePrefs(s.prefs), nil
}

func (s *memStore) Save(p domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.prefs = clonePrefs(p)
	return nil
}

// fakeAPI records calls and returns canned answers. Hooks let tests block or fail.
type fakeAPI struct {
	mu sync.Mutex

	jwt      string
	loginErr error

	posts    []domain.Post
	postsErr error
	// postsHook runs inside GetPosts before it returns.
	postsHook func()

	community    domain.Community
	communityErr error
	followErr    error
	// followHook runs inside FollowCommunity before it records the follow.
	followHook func()
	followed     []int64
	lookups      []string

	subscribed []domain.Community
	subErr     error
	pages      []int
	blocked    []string
	blockedErr error
}

func (f *fakeAPI) Login(_ context.Context, _, _ string) (string, error) {
	return f.jwt, f.loginErr
}

func (f *fakeAPI) GetPosts(_ context.Context, _ ports.PostsQuery) ([]domain.Post, error) {
	if f.postsHook != nil {
		f.postsHook()
	}
	return f.posts, f.postsErr
}

func (f *fakeAPI) GetCommunity(_ context.Context, _, name string) (domain.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, name)
	return f.community, f.communityErr
}

func (f *fakeAPI) FollowCommunity(_ context.Context, _ string, id int64, _ bool) error {
	if f.followHook != nil {
		f.followHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.followErr != nil {
		return f.followErr
	}
	f.followed = append(f.followed, id)
	return nil
}

func (f *fakeAPI) ListSubscribed(_ context.Context, _ string, page, limit int) ([]domain.Community, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	if f.subErr != nil {
		return nil, f.subErr
	}
	start := (page - 1) * limit
	if start >= len(f.subscribed) {
		return nil, nil
	}
	end := min(start+limit, len(f.subscribed))
	return f.subscribed[start:end], nil
}

func (f *fakeAPI) BlockedInstances(_ context.Context) ([]string, error) {
	return f.blocked, f.blockedErr
}

type fakeDialer struct {
	mu     sync.Mutex
	apis   map[string]*fakeAPI
	dialed []string
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{apis: map[string]*fakeAPI{}}
}

func (d *fakeDialer) api(instance string) *fakeAPI {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.apis[instance]
	if !ok {
		a = &fakeAPI{}
		d.apis[instance] = a
	}
	return a
}

func (d *fakeDialer) Dial(instance string) ports.InstanceAPI {
	d.mu.Lock()
	d.dialed = append(d.dialed, instance)
	d.mu.Unlock()
	return d.api(instance)
}

func community(id int64, host string, nsfw bool) domain.Community {
	return domain.Community{
		ID:         id,
		InstanceID: 1,
		Name:       fmt.Sprintf("c%d", id),
		Title:      fmt.Sprintf("Community %d", id),
		ActorID:    fmt.Sprintf("https://%s/c/c%d", host, id),
		NSFW:       nsfw,
		Counts:     domain.Counts{Posts: 100, Subscribers: 10, Comments: 5},
		URL:        host,
	}
}
