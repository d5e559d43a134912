package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/usecase"
)

const requestTimeout = 30 * time.Second

func cmdLoad(deps Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loadedMsg{err: deps.Roulette.Load(ctx)}
	}
}

func cmdRestore(deps Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return restoredMsg{err: deps.Session.Restore(ctx)}
	}
}

const (
	actionPick   = "pick"
	actionSkip   = "skip"
	actionReroll = "reroll"
	actionFollow = "follow"
)

func cmdPick(deps Deps, action string) tea.Cmd {
	return func() tea.Msg {
		var (
			c      domain.Community
			ticket uint64
			err    error
		)
		switch action {
		case actionSkip:
			c, ticket, err = deps.Roulette.Skip()
		case actionReroll:
			c, ticket, err = deps.Roulette.Reroll()
		case actionFollow:
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			c, ticket, err = deps.Roulette.Follow(ctx)
		default:
			c, ticket, err = deps.Roulette.Pick()
		}
		return pickedMsg{action: action, community: c, ticket: ticket, err: err}
	}
}

// cmdPosts loads the posts of the selection identified by ticket. Responses for
// an older ticket are dropped by Update.
func cmdPosts(deps Deps, ticket uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		posts, err := deps.Roulette.Posts(ctx, ticket)
		return postsMsg{ticket: ticket, posts: posts, err: err}
	}
}

func cmdLogin(deps Deps, req domain.LoginRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loginDoneMsg{instance: req.NormalizedInstance(), err: deps.Session.Login(ctx, req)}
	}
}

func cmdLogout(deps Deps) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: deps.Session.Logout()}
	}
}

func cmdCycleFilter(deps Deps) tea.Cmd {
	return func() tea.Msg {
		f, err := deps.Prefs.CycleFilter()
		return filterChangedMsg{filter: f, err: err}
	}
}

func cmdBlock(deps Deps, host string) tea.Cmd {
	return func() tea.Msg {
		if host == "" {
			return blockedMsg{err: errors.New("community has no instance to block")}
		}
		_, err := deps.Prefs.Block(host)
		return blockedMsg{host: host, err: err}
	}
}

func isStale(err error) bool {
	return usecase.IsStale(err)
}
