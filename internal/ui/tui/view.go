package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/infra/htmlcard"
	"github.com/aalvaropc/roulette/internal/infra/markdown"
)

const helpLine = "s skip • f follow • r reroll • b block instance • n nsfw filter • o link • l login/logout • q quit"

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(0, 1)

	if m.form.open {
		return wrap.Render(m.header() + "\n\n" + m.renderForm())
	}

	footer := m.theme.Help.Render(helpLine)
	if m.status != "" {
		footer = m.theme.Status.Render(clampString(m.status, max(m.width-4, 20))) + "\n" + footer
	}
	return wrap.Render(m.header() + "\n" + m.vp.View() + "\n" + footer)
}

func (m model) header() string {
	var parts []string
	parts = append(parts, m.theme.Title.Render("Community Roulette"))
	parts = append(parts, m.theme.Subtitle.Render("filter: "+m.filter.Label()))
	if m.loggedIn {
		parts = append(parts, m.theme.Subtitle.Render("logged in: "+m.instance))
	} else {
		parts = append(parts, m.theme.Subtitle.Render("not logged in"))
	}
	if m.deps.Roulette != nil && !m.loading {
		parts = append(parts, m.theme.Subtitle.Render(fmt.Sprintf("%d left", m.deps.Roulette.Remaining())))
	}
	return strings.Join(parts, "  ·  ")
}

// renderBody is the scrollable part: error box, card and posts.
func (m model) renderBody() string {
	var b strings.Builder

	if m.errText != "" {
		b.WriteString(m.theme.Error.Render(m.errText))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(m.spin.View() + " Loading communities...")
		return b.String()
	}
	if m.community == nil {
		return b.String()
	}

	b.WriteString(m.renderCard(*m.community))
	b.WriteString("\n")
	b.WriteString(m.renderPosts())
	return b.String()
}

func (m model) contentWidth() int {
	if m.vp.Width > 0 {
		return m.vp.Width
	}
	return 80
}

func (m model) renderCard(c domain.Community) string {
	var b strings.Builder

	icon := c.Icon
	if icon == "" {
		icon = htmlcard.FallbackIcon
	}

	title := m.theme.Title.Render(c.Title)
	if c.NSFW {
		title += " " + m.theme.Tag.Render("NSFW")
	}
	b.WriteString(title + "\n")
	b.WriteString(m.theme.Subtitle.Render(c.ActorID) + "\n")
	b.WriteString(m.theme.Subtitle.Render("icon: "+icon) + "\n")
	b.WriteString(c.Host() + "\n\n")
	b.WriteString(fmt.Sprintf("Posts %d   Subscribers %d   Comments %d\n",
		c.Counts.Posts, c.Counts.Subscribers, c.Counts.Comments))

	if strings.TrimSpace(c.Description) != "" {
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(c.Description, m.contentWidth()-6))
	}

	return m.theme.Card.Width(max(m.contentWidth()-2, 20)).Render(strings.TrimRight(b.String(), "\n"))
}

func (m model) renderPosts() string {
	if m.postsLoading {
		return m.spin.View() + " Loading posts..."
	}
	if m.postsErr != "" {
		return m.theme.Error.Render("Error\n" + m.postsErr)
	}
	if len(m.posts) == 0 {
		return m.theme.Help.Render("No posts.")
	}

	var b strings.Builder
	for _, p := range m.posts {
		b.WriteString(m.theme.Score.Render(fmt.Sprintf("▲ %d", p.Score)))
		b.WriteString("  ")
		b.WriteString(m.theme.Title.Render(p.Name))
		b.WriteString("\n")
		if p.APID != "" {
			b.WriteString(m.theme.Subtitle.Render(p.APID) + "\n")
		}
		if p.Body != "" {
			b.WriteString(m.renderMarkdown(p.Body, m.contentWidth()-2))
		}
		if p.EmbedTitle != "" {
			b.WriteString(renderEmbed(p))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderEmbed(p domain.Post) string {
	var b strings.Builder
	b.WriteString("┃ " + p.EmbedTitle + "\n")
	if p.EmbedDescription != "" {
		b.WriteString("┃ " + clampString(p.EmbedDescription, 200) + "\n")
	}
	if p.HasMP4Embed() {
		b.WriteString("┃ video: " + p.EmbedVideoURL + "\n")
	}
	if p.URL != "" {
		b.WriteString("┃ " + p.URL + "\n")
	}
	return b.String()
}

func (m model) renderMarkdown(md string, width int) string {
	if m.deps.Markdown == nil {
		return markdown.StripMailto(md) + "\n"
	}
	return m.deps.Markdown.Render(md, width) + "\n"
}

func (m model) renderForm() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Login") + "\n\n")
	for _, in := range m.form.inputs {
		b.WriteString(in.View() + "\n")
	}
	if m.form.submitting {
		b.WriteString("\n" + m.spin.View() + " Logging in...")
	}
	if m.form.err != "" {
		b.WriteString("\n" + m.theme.Error.Render(m.form.err))
	}
	b.WriteString("\n\n" + m.theme.Help.Render("tab next field • enter submit • esc cancel"))
	return m.theme.Card.Render(b.String())
}

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}
