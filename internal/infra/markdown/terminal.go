package markdown

import (
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	reMailtoLink     = regexp.MustCompile(`\[([^\]]*)\]\(\s*<?mailto:[^)]*\)`)
	reMailtoAutolink = regexp.MustCompile(`<mailto:([^>]+)>`)
)

// StripMailto rewrites markdown so mailto links show as plain text.
func StripMailto(md string) string {
	md = reMailtoLink.ReplaceAllString(md, "$1")
	return reMailtoAutolink.ReplaceAllString(md, "$1")
}

// TerminalRenderer renders markdown for the TUI, one glamour renderer per width.
type TerminalRenderer struct {
	style string

	mu    sync.Mutex
	cache map[int]*glamour.TermRenderer
}

// NewTerminalRenderer uses glamour's auto style when style is empty.
func NewTerminalRenderer(style string) *TerminalRenderer {
	return &TerminalRenderer{style: style, cache: map[int]*glamour.TermRenderer{}}
}

// Render falls back to the raw (mailto-stripped) text when glamour fails.
func (t *TerminalRenderer) Render(md string, width int) string {
	md = StripMailto(strings.TrimSpace(md))
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	r, err := t.renderer(width)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (t *TerminalRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if r, ok := t.cache[width]; ok {
		return r, nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if t.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(t.style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	t.cache[width] = r
	return r, nil
}
