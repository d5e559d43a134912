package tui

import (
	"context"
	"log/slog"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/infra/markdown"
)

// Picker is the part of usecase.Roulette the TUI drives.
type Picker interface {
	Load(ctx context.Context) error
	Pick() (domain.Community, uint64, error)
	Skip() (domain.Community, uint64, error)
	Reroll() (domain.Community, uint64, error)
	Follow(ctx context.Context) (domain.Community, uint64, error)
	Posts(ctx context.Context, ticket uint64) ([]domain.Post, error)
	Remaining() int
}

type SessionManager interface {
	Login(ctx context.Context, req domain.LoginRequest) error
	Logout() error
	Restore(ctx context.Context) error
	Current() domain.Session
}

type PreferenceEditor interface {
	CycleFilter() (domain.NSFWFilter, error)
	Block(host string) (bool, error)
	Show() domain.Preferences
}

type Deps struct {
	Roulette Picker
	Session  SessionManager
	Prefs    PreferenceEditor
	Markdown *markdown.TerminalRenderer

	Logger *slog.Logger
	Debug  bool

	// LogPath and RunID are shown in the status line in debug mode.
	LogPath string
	RunID   string
}
