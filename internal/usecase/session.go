package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

// Session logs the user into their home instance and keeps the followed and
// defederated lists of the Roulette in sync with it.
type Session struct {
	roulette *Roulette
	dialer   ports.InstanceDialer
	pageSize int
	log      *slog.Logger
}

func NewSession(r *Roulette, dialer ports.InstanceDialer, pageSize int, log *slog.Logger) *Session {
	if pageSize <= 0 {
		pageSize = domain.DefaultConfig().Session.PageSize
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{roulette: r, dialer: dialer, pageSize: pageSize, log: log}
}

// Login validates the form, obtains a JWT, persists it and refreshes the lists.
// When the refresh fails the new session is kept and the error wraps
// domain.ErrRefreshFailed; any other error leaves the stored session untouched.
func (s *Session) Login(ctx context.Context, req domain.LoginRequest) error {
	if err := req.Validate(); err != nil {
		return &domain.OpError{Op: "session.login", Kind: domain.KindInvalidConfig, Err: err}
	}
	instance := req.NormalizedInstance()

	jwt, err := s.dialer.Dial(instance).Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return err
	}
	if jwt == "" {
		return &domain.OpError{Op: "session.login", Kind: domain.KindUnauthorized, Path: instance, Err: domain.ErrNoToken}
	}

	err = s.roulette.UpdatePreferences(func(p *domain.Preferences) bool {
		p.Session = domain.Session{JWT: jwt, Instance: instance}
		return true
	})
	if err != nil {
		return err
	}
	s.log.Info("session.login", "instance", instance)

	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRefreshFailed, err)
	}
	return nil
}

// Logout forgets the token. Followed and defederated lists stay until restart.
func (s *Session) Logout() error {
	err := s.roulette.UpdatePreferences(func(p *domain.Preferences) bool {
		if p.Session == (domain.Session{}) {
			return false
		}
		p.Session = domain.Session{}
		return true
	})
	if err != nil {
		return err
	}
	s.log.Info("session.logout")
	return nil
}

// LoggedIn reports whether a session is stored.
func (s *Session) LoggedIn() bool {
	return s.roulette.Preferences().Session.LoggedIn()
}

// Current returns the stored session.
func (s *Session) Current() domain.Session {
	return s.roulette.Preferences().Session
}

// Refresh fetches the defederated instances and the subscribed communities of
// the home instance concurrently. A failing federated call is only logged.
func (s *Session) Refresh(ctx context.Context) error {
	sess := s.roulette.Preferences().Session
	if !sess.LoggedIn() {
		return &domain.OpError{Op: "session.refresh", Kind: domain.KindUnauthorized, Err: domain.ErrNotLoggedIn}
	}
	api := s.dialer.Dial(sess.Instance)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		blocked, err := api.BlockedInstances(gctx)
		if err != nil {
			s.log.Warn("session.federated_failed", "instance", sess.Instance, "err", err)
			return nil
		}
		s.roulette.SetDefederated(blocked)
		s.log.Debug("session.federated", "blocked", len(blocked))
		return nil
	})

	g.Go(func() error {
		keys, err := s.subscribed(gctx, api, sess.JWT)
		if err != nil {
			return err
		}
		s.roulette.SetFollowed(keys)
		s.log.Debug("session.subscribed", "count", len(keys))
		return nil
	})

	return g.Wait()
}

// Restore refreshes a session stored by a previous run. It is a no-op when
// nobody is logged in.
func (s *Session) Restore(ctx context.Context) error {
	if !s.LoggedIn() {
		return nil
	}
	return s.Refresh(ctx)
}

// subscribed pages through the subscription list until a short page.
func (s *Session) subscribed(ctx context.Context, api ports.InstanceAPI, jwt string) ([]string, error) {
	var keys []string
	for page := 1; ; page++ {
		batch, err := api.ListSubscribed(ctx, jwt, page, s.pageSize)
		if err != nil {
			return nil, err
		}
		for _, c := range batch {
			keys = append(keys, c.FollowKey())
		}
		if len(batch) < s.pageSize {
			return keys, nil
		}
	}
}

func normalize(host string) string {
	return strings.ToLower(strings.TrimSpace(host))
}
