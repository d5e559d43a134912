package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apptemplate "github.com/aalvaropc/roulette/internal/app/template"
	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/infra/htmlcard"
	"github.com/aalvaropc/roulette/internal/infra/markdown"
)

func pickCmd(opts *globalOpts) *cobra.Command {
	var format string
	var noPosts bool
	var markSeen bool
	var tpl string

	c := &cobra.Command{
		Use:   "pick",
		Short: "Pick a random unseen community and print it with its top posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}

			h, err := loadHome(opts)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx := cmd.Context()
			if err := h.session.Restore(ctx); err != nil {
				// Exclusion lists are best effort outside the TUI.
				h.log.Warn("cli.restore_failed", "err", err)
			}
			if err := h.roulette.Load(ctx); err != nil {
				return err
			}

			community, ticket, err := h.roulette.Pick()
			if err != nil {
				return err
			}

			var posts []domain.Post
			var postsErr string
			if !noPosts {
				posts, err = h.roulette.Posts(ctx, ticket)
				if err != nil {
					postsErr = err.Error()
				}
			}

			if tpl != "" {
				out, err := apptemplate.RenderString(tpl, apptemplate.CommunityVars(community))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			} else if err := printCommunity(cmd.OutOrStdout(), format, community, posts, postsErr); err != nil {
				return err
			}

			if markSeen {
				if _, _, err := h.roulette.Skip(); err != nil && !errors.Is(err, domain.ErrNoCandidates) {
					return err
				}
			}
			return nil
		},
	}

	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json|html")
	c.Flags().BoolVar(&noPosts, "no-posts", false, "Do not fetch the community's posts")
	c.Flags().BoolVar(&markSeen, "mark-seen", false, "Mark the picked community as seen")
	c.Flags().StringVar(&tpl, "template", "", "Print only this template, e.g. '{{title}} {{actor_id}}\\n' (overrides --format)")
	return c
}

func validateFormat(format string) error {
	switch format {
	case "pretty", "", "json", "html":
		return nil
	}
	return fmt.Errorf("unsupported format %q (expected pretty|json|html)", format)
}

type communityJSON struct {
	Key         string        `json:"key"`
	FollowKey   string        `json:"follow_key"`
	ID          int64         `json:"id"`
	InstanceID  int64         `json:"instance_id"`
	Name        string        `json:"name"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	ActorID     string        `json:"actor_id"`
	Instance    string        `json:"instance"`
	NSFW        bool          `json:"nsfw"`
	Counts      domain.Counts `json:"counts"`
}

type postJSON struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Body         string `json:"body,omitempty"`
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	EmbedTitle   string `json:"embed_title,omitempty"`
	APID         string `json:"ap_id"`
	Score        int64  `json:"score"`
}

func printCommunity(w io.Writer, format string, c domain.Community, posts []domain.Post, postsErr string) error {
	switch format {
	case "json":
		out := struct {
			Community  communityJSON `json:"community"`
			Posts      []postJSON    `json:"posts"`
			PostsError string        `json:"posts_error,omitempty"`
		}{
			Community: communityJSON{
				Key:         c.SeenKey(),
				FollowKey:   c.FollowKey(),
				ID:          c.ID,
				InstanceID:  c.InstanceID,
				Name:        c.Name,
				Title:       c.Title,
				Description: c.Description,
				Icon:        c.Icon,
				ActorID:     c.ActorID,
				Instance:    c.Host(),
				NSFW:        c.NSFW,
				Counts:      c.Counts,
			},
			Posts:      make([]postJSON, 0, len(posts)),
			PostsError: postsErr,
		}
		for _, p := range posts {
			out.Posts = append(out.Posts, postJSON{
				ID:           p.ID,
				Name:         p.Name,
				Body:         p.Body,
				URL:          p.URL,
				ThumbnailURL: p.ThumbnailURL,
				EmbedTitle:   p.EmbedTitle,
				APID:         p.APID,
				Score:        p.Score,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)

	case "html":
		return htmlcard.New(markdown.NewHTMLRenderer()).Render(w, c, posts, postsErr)

	default:
		printPrettyCommunity(w, c, posts, postsErr)
		return nil
	}
}

func printPrettyCommunity(w io.Writer, c domain.Community, posts []domain.Post, postsErr string) {
	md := markdown.NewTerminalRenderer("notty")

	title := c.Title
	if c.NSFW {
		title += " [NSFW]"
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%s\n", c.ActorID)
	fmt.Fprintf(w, "Instance:    %s\n", c.Host())
	fmt.Fprintf(w, "Key:         %s  (follow: %s)\n", c.SeenKey(), c.FollowKey())
	fmt.Fprintf(w, "Posts %d  Subscribers %d  Comments %d\n", c.Counts.Posts, c.Counts.Subscribers, c.Counts.Comments)

	if desc := strings.TrimSpace(c.Description); desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, md.Render(desc, 80))
	}

	if postsErr != "" {
		fmt.Fprintf(w, "\nError loading posts: %s\n", postsErr)
		return
	}
	if len(posts) == 0 {
		return
	}

	fmt.Fprintln(w, "\nTop posts:")
	for _, p := range posts {
		fmt.Fprintf(w, "  ▲ %-5d %s\n", p.Score, p.Name)
		if p.APID != "" {
			fmt.Fprintf(w, "          %s\n", p.APID)
		}
	}
}
