package tui

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/roulette/internal/domain"
)

type model struct {
	theme Theme
	deps  Deps
	log   *slog.Logger

	width  int
	height int

	spin spinner.Model
	vp   viewport.Model

	loading bool // catalog
	busy    bool // skip/follow/pick in flight

	community    *domain.Community
	ticket       uint64
	posts        []domain.Post
	postsLoading bool
	postsErr     string

	errText string
	status  string

	loggedIn bool
	instance string
	filter   domain.NSFWFilter

	form loginForm
}

func Run(deps Deps) error {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	p := tea.NewProgram(wrapSafe(newModel(deps), log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		theme:   DefaultTheme(),
		deps:    deps,
		log:     log,
		spin:    sp,
		vp:      viewport.New(80, 20),
		loading: true,
		filter:  domain.DefaultFilter,
		form:    newLoginForm(),
	}
	if deps.Session != nil {
		s := deps.Session.Current()
		m.loggedIn = s.LoggedIn()
		m.instance = s.Instance
	}
	if deps.Prefs != nil {
		m.filter = deps.Prefs.Show().Filter
	}
	if deps.Debug && deps.LogPath != "" {
		m.status = "Debug log: " + deps.LogPath + " (run " + deps.RunID + ")"
	}
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, cmdLoad(m.deps)}
	if m.loggedIn {
		cmds = append(cmds, cmdRestore(m.deps))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.vp.Width = max(msg.Width-4, 20)
		m.vp.Height = max(msg.Height-6, 5)
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.postsLoading && !m.form.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refreshContent()
		return m, cmd

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Error("tui.load_failed", "err", msg.err)
			m.errText = userMessage(msg.err)
			m.refreshContent()
			return m, nil
		}
		m.busy = true
		return m, cmdPick(m.deps, actionPick)

	case restoredMsg:
		if msg.err != nil {
			m.log.Warn("tui.restore_failed", "err", msg.err)
			m.errText = userMessage(msg.err)
			m.refreshContent()
		}
		return m, nil

	case pickedMsg:
		return m.onPicked(msg)

	case postsMsg:
		// Drop responses for a selection the user already moved past.
		if msg.ticket != m.ticket || isStale(msg.err) {
			m.log.Debug("tui.posts_dropped", "ticket", msg.ticket, "current", m.ticket)
			return m, nil
		}
		m.postsLoading = false
		if msg.err != nil {
			m.log.Warn("tui.posts_failed", "err", msg.err)
			m.postsErr = msg.err.Error()
		} else {
			m.posts = msg.posts
		}
		m.refreshContent()
		return m, nil

	case loginDoneMsg:
		m.form.submitting = false
		if msg.err != nil && !errors.Is(msg.err, domain.ErrRefreshFailed) {
			m.log.Warn("tui.login_failed", "err", msg.err)
			m.form.err = userMessage(msg.err)
			return m, nil
		}
		m.form = newLoginForm()
		m.loggedIn = true
		m.instance = msg.instance
		m.status = "Logged in to " + msg.instance
		if msg.err != nil {
			m.errText = userMessage(msg.err)
		}
		m.refreshContent()
		return m, nil

	case logoutDoneMsg:
		if msg.err != nil {
			m.errText = userMessage(msg.err)
		} else {
			m.loggedIn = false
			m.instance = ""
			m.status = "Logged out"
		}
		m.refreshContent()
		return m, nil

	case filterChangedMsg:
		if msg.err != nil {
			m.errText = userMessage(msg.err)
			m.refreshContent()
			return m, nil
		}
		m.filter = msg.filter
		m.status = "Filter: " + msg.filter.Label()
		excluded := m.community != nil && !msg.filter.Allows(m.community.NSFW)
		// An empty card may have candidates again under the new filter.
		empty := m.community == nil && !m.loading && m.deps.Roulette.Remaining() > 0
		if excluded || empty {
			m.busy = true
			return m, cmdPick(m.deps, actionReroll)
		}
		m.refreshContent()
		return m, nil

	case blockedMsg:
		if msg.err != nil {
			m.errText = userMessage(msg.err)
			m.refreshContent()
			return m, nil
		}
		m.status = "Blocked " + msg.host
		m.busy = true
		return m, cmdPick(m.deps, actionReroll)

	case tea.KeyMsg:
		if m.form.open {
			return m.updateForm(msg)
		}
		return m.onKey(msg)
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "s":
		if m.busy || m.community == nil {
			return m, nil
		}
		m.errText = ""
		m.busy = true
		return m, cmdPick(m.deps, actionSkip)

	case "f":
		if m.busy || m.community == nil {
			return m, nil
		}
		m.errText = ""
		if !m.loggedIn {
			m.errText = domain.ErrNotLoggedIn.Error()
			m.refreshContent()
			return m, nil
		}
		m.busy = true
		m.status = "Following " + m.community.FollowKey() + "..."
		return m, cmdPick(m.deps, actionFollow)

	case "r":
		if m.busy || m.loading {
			return m, nil
		}
		m.errText = ""
		m.busy = true
		return m, cmdPick(m.deps, actionReroll)

	case "l":
		if m.loggedIn {
			return m, cmdLogout(m.deps)
		}
		m.form.open = true
		return m, m.form.focus(0)

	case "n":
		return m, cmdCycleFilter(m.deps)

	case "b":
		if m.busy || m.community == nil {
			return m, nil
		}
		return m, cmdBlock(m.deps, strings.ToLower(m.community.URL))

	case "o":
		if m.community != nil {
			m.status = m.community.ActorID
			m.refreshContent()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m model) onPicked(msg pickedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.log.Warn("tui.pick_failed", "action", msg.action, "err", msg.err)
		m.errText = userMessage(msg.err)
		if msg.action == actionFollow {
			m.status = ""
		} else if domain.IsKind(msg.err, domain.KindNoCandidates) {
			m.community = nil
			m.posts = nil
			m.postsLoading = false
		}
		m.refreshContent()
		return m, nil
	}

	if msg.action == actionFollow && m.community != nil {
		m.status = "Followed " + m.community.FollowKey()
	}

	c := msg.community
	m.community = &c
	m.ticket = msg.ticket
	m.posts = nil
	m.postsErr = ""
	m.postsLoading = true
	m.vp.GotoTop()
	m.refreshContent()
	return m, tea.Batch(cmdPosts(m.deps, msg.ticket), m.spin.Tick)
}

func (m *model) refreshContent() {
	m.vp.SetContent(m.renderBody())
}
