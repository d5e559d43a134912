// Package template expands {{field}} placeholders in user supplied output
// templates, e.g. `roulette pick --template '{{title}} {{actor_id}}'`.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aalvaropc/roulette/internal/domain"
)

// CommunityVars exposes the fields a template may reference.
func CommunityVars(c domain.Community) map[string]string {
	return map[string]string{
		"key":         c.SeenKey(),
		"follow_key":  c.FollowKey(),
		"id":          strconv.FormatInt(c.ID, 10),
		"instance_id": strconv.FormatInt(c.InstanceID, 10),
		"name":        c.Name,
		"title":       c.Title,
		"actor_id":    c.ActorID,
		"instance":    c.Host(),
		"icon":        c.Icon,
		"nsfw":        strconv.FormatBool(c.NSFW),
		"posts":       strconv.FormatInt(c.Counts.Posts, 10),
		"subscribers": strconv.FormatInt(c.Counts.Subscribers, 10),
		"comments":    strconv.FormatInt(c.Counts.Comments, 10),
	}
}

// RenderString replaces {{VAR}} placeholders with vars values.
// It returns an error if a variable is unknown or a placeholder is malformed.
// The escapes \n and \t are expanded so templates can be passed on a command line.
func RenderString(input string, vars map[string]string) (string, error) {
	if input == "" {
		return "", nil
	}
	input = strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(input)

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", invalid(fmt.Errorf("unclosed template expression"))
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", invalid(fmt.Errorf("empty template expression"))
		}

		value, ok := vars[key]
		if !ok {
			return "", invalid(fmt.Errorf("unknown field %q", key))
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}

func invalid(err error) error {
	return &domain.OpError{Op: "template.render", Kind: domain.KindInvalidConfig, Err: err}
}
