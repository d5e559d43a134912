package tui

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aalvaropc/roulette/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

// userMessage turns an error into the short text shown in the error box.
func userMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, domain.ErrRefreshFailed):
		return "Logged in, but could not refresh your subscriptions"
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "You need to login first"
	case errors.Is(err, domain.ErrNoToken):
		return "No JWT token received"
	case errors.Is(err, domain.ErrNoCandidates):
		return "No community left that matches your filters"
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case domain.KindNotFound:
			if strings.Contains(oe.Op, "catalog") {
				return "Community list not found"
			}
			if strings.Contains(oe.Op, "lemmy.get_community") {
				return "Community not found on your instance"
			}
			return "Not found"

		case domain.KindUnauthorized:
			if strings.Contains(oe.Op, "login") {
				return "Login failed: " + innerMessage(oe)
			}
			return "Your session was rejected, please login again"

		case domain.KindInvalidConfig:
			base := "config"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}
			if line := extractLine(err.Error()); line != "" {
				return "Invalid YAML at " + base + " line " + line
			}
			if looksLikeYAMLProblem(err.Error()) {
				return "Invalid YAML at " + base
			}
			if oe.Err != nil {
				return oe.Err.Error()
			}
			return "Invalid config"

		case domain.KindExecution:
			return innerMessage(oe)

		default:
			return "Unexpected error (see logs)"
		}
	}

	if looksLikeYAMLProblem(err.Error()) {
		if line := extractLine(err.Error()); line != "" {
			return "Invalid YAML line " + line
		}
		return "Invalid YAML"
	}

	return err.Error()
}

func innerMessage(oe *domain.OpError) string {
	if oe.Err == nil {
		return string(oe.Kind)
	}
	return oe.Err.Error()
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	return strings.Contains(ls, "yaml:") || strings.Contains(ls, "did not find expected") || strings.Contains(ls, "cannot unmarshal")
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}
