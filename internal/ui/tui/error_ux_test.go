package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aalvaropc/roulette/internal/domain"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not logged in", &domain.OpError{Op: "roulette.follow", Kind: domain.KindUnauthorized, Err: domain.ErrNotLoggedIn}, "You need to login first"},
		{"no token", &domain.OpError{Op: "session.login", Kind: domain.KindUnauthorized, Err: domain.ErrNoToken}, "No JWT token received"},
		{"rejected session", &domain.OpError{Op: "lemmy.follow_community", Kind: domain.KindUnauthorized, Err: errors.New("not_logged_in")}, "Your session was rejected, please login again"},
		{"yaml line", &domain.OpError{Op: "settings.loadconfig", Kind: domain.KindInvalidConfig, Path: "/x/roulette.yaml", Err: errors.New("yaml: line 4: did not find expected key")}, "Invalid YAML at roulette.yaml line 4"},
		{"execution", &domain.OpError{Op: "lemmy.get_posts", Kind: domain.KindExecution, Err: errors.New("connection refused")}, "connection refused"},
		{"refresh failed", fmt.Errorf("%w: %w", domain.ErrRefreshFailed, errors.New("timeout")), "Logged in, but could not refresh your subscriptions"},
		{"plain", errors.New("something"), "something"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, userMessage(tc.err))
		})
	}
}
