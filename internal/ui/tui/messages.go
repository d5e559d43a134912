package tui

import "github.com/aalvaropc/roulette/internal/domain"

type loadedMsg struct {
	err error
}

type restoredMsg struct {
	err error
}

// pickedMsg carries a new selection, whatever produced it.
type pickedMsg struct {
	action    string
	community domain.Community
	ticket    uint64
	err       error
}

type postsMsg struct {
	ticket uint64
	posts  []domain.Post
	err    error
}

type loginDoneMsg struct {
	instance string
	err      error
}

type logoutDoneMsg struct {
	err error
}

type filterChangedMsg struct {
	filter domain.NSFWFilter
	err    error
}

type blockedMsg struct {
	host string
	err  error
}
