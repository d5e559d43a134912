// Package htmlcard renders a community and its posts as a standalone HTML fragment.
package htmlcard

import (
	"html/template"
	"io"
	"strings"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/infra/markdown"
)

// FallbackIcon is shown for communities without an icon.
const FallbackIcon = "lemmy-logo.png"

type Renderer struct {
	md   *markdown.HTMLRenderer
	tmpl *template.Template
}

func New(md *markdown.HTMLRenderer) *Renderer {
	if md == nil {
		md = markdown.NewHTMLRenderer()
	}
	return &Renderer{
		md:   md,
		tmpl: template.Must(template.New("card").Parse(cardTemplate)),
	}
}

type postData struct {
	domain.Post
	BodyHTML template.HTML
	MP4      bool
}

type cardData struct {
	Community       domain.Community
	Host            string
	Icon            string
	DescriptionHTML template.HTML
	Posts           []postData
	PostsErr        string
}

// Render writes the card. postsErr, when non-empty, replaces the post list
// with an error message.
func (r *Renderer) Render(w io.Writer, c domain.Community, posts []domain.Post, postsErr string) error {
	desc, err := r.md.Render(c.Description)
	if err != nil {
		return err
	}

	data := cardData{
		Community:       c,
		Host:            c.Host(),
		Icon:            c.Icon,
		DescriptionHTML: template.HTML(desc), // sanitized by bluemonday
		PostsErr:        strings.TrimSpace(postsErr),
	}
	if data.Icon == "" {
		data.Icon = FallbackIcon
	}

	for _, p := range posts {
		body, err := r.md.Render(p.Body)
		if err != nil {
			return err
		}
		data.Posts = append(data.Posts, postData{
			Post:     p,
			BodyHTML: template.HTML(body), // sanitized by bluemonday
			MP4:      p.HasMP4Embed(),
		})
	}

	return r.tmpl.Execute(w, data)
}

const cardTemplate = `<div class="card community">
  <div class="card-content">
    <div class="media">
      <div class="media-left"><figure class="image is-64x64"><img id="community-icon" src="{{.Icon}}"></figure></div>
      <div class="media-content">
        <p class="title is-4"><a id="community-name" href="{{.Community.ActorID}}">{{.Community.Title}}</a>{{if .Community.NSFW}} <span id="nsfw-tag" class="tag is-danger">NSFW</span>{{end}}</p>
        <p id="community-instance" class="subtitle is-6">{{.Host}}</p>
      </div>
    </div>
    <nav class="level">
      <div class="level-item"><p class="heading">Posts</p><p id="post-count">{{.Community.Counts.Posts}}</p></div>
      <div class="level-item"><p class="heading">Subscribers</p><p id="sub-count">{{.Community.Counts.Subscribers}}</p></div>
      <div class="level-item"><p class="heading">Comments</p><p id="comment-count">{{.Community.Counts.Comments}}</p></div>
    </nav>
    {{if .DescriptionHTML}}<div id="community-description" class="content">{{.DescriptionHTML}}</div>{{end}}
  </div>
</div>
<div id="posts">
{{- if .PostsErr}}
  <article class="message is-danger">
    <div class="message-header"><p>Error</p></div>
    <div class="message-body">{{.PostsErr}}</div>
  </article>
{{- else}}{{range .Posts}}
  <article class="media">
    {{- if .ThumbnailURL}}
    <figure class="media-left"><p class="image is-64x64"><a href="{{.URL}}" target="_blank"><img src="{{.ThumbnailURL}}" class="post-img contained-img"></a></p></figure>
    {{- end}}
    <div class="media-content">
      <div class="content">
        <p>
          <a href="{{.APID}}" target="_blank"><strong>{{.Name}}</strong></a>
          <br>
          {{if .BodyHTML}}{{.BodyHTML}}<br>{{end}}
          {{- if .EmbedTitle}}
          <a href="{{.URL}}" target="_blank"><div class="box">
            <strong>{{.EmbedTitle}}</strong>
            {{if .EmbedDescription}}<p>{{.EmbedDescription}}</p>{{end}}
            {{if .MP4}}<video controls src="{{.EmbedVideoURL}}"></video>{{end}}
            <p><small>{{.URL}}</small></p>
          </div></a>
          {{- end}}
          <small>Score: {{.Score}}</small>
        </p>
      </div>
    </div>
  </article>
{{- end}}{{end}}
</div>
`
