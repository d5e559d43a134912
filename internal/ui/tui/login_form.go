package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/roulette/internal/domain"
)

const (
	fieldInstance = iota
	fieldUsername
	fieldPassword
)

type loginForm struct {
	open       bool
	submitting bool
	err        string
	focused    int
	inputs     []textinput.Model
}

func newLoginForm() loginForm {
	inst := textinput.New()
	inst.Placeholder = "lemmy.ml"
	inst.Prompt = "Instance: "

	user := textinput.New()
	user.Placeholder = "username or email"
	user.Prompt = "Username: "

	pass := textinput.New()
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	return loginForm{inputs: []textinput.Model{inst, user, pass}}
}

func (f *loginForm) focus(i int) tea.Cmd {
	f.focused = (i + len(f.inputs)) % len(f.inputs)
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focused {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

func (f loginForm) request() domain.LoginRequest {
	return domain.LoginRequest{
		Instance: strings.TrimSpace(f.inputs[fieldInstance].Value()),
		Username: strings.TrimSpace(f.inputs[fieldUsername].Value()),
		Password: f.inputs[fieldPassword].Value(),
	}
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.submitting {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		// Cancel clears every field.
		m.form = newLoginForm()
		return m, nil

	case "tab", "down":
		return m, m.form.focus(m.form.focused + 1)

	case "shift+tab", "up":
		return m, m.form.focus(m.form.focused - 1)

	case "enter":
		if m.form.focused < fieldPassword {
			return m, m.form.focus(m.form.focused + 1)
		}
		req := m.form.request()
		if err := req.Validate(); err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		m.form.submitting = true
		return m, tea.Batch(cmdLogin(m.deps, req), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focused], cmd = m.form.inputs[m.form.focused].Update(msg)
	return m, cmd
}
