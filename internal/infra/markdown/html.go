// Package markdown renders community descriptions and post bodies, either as
// sanitized HTML or as styled terminal text. Links to mailto: targets are
// reduced to their text in both outputs.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// HTMLRenderer converts untrusted markdown into safe HTML. It is stateless
// after construction and safe for concurrent use.
type HTMLRenderer struct {
	engine goldmark.Markdown
	policy *bluemonday.Policy
}

func NewHTMLRenderer() *HTMLRenderer {
	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(mailtoStripper{}, 100)),
		),
	)

	return &HTMLRenderer{
		engine: engine,
		policy: bluemonday.UGCPolicy(),
	}
}

// Render returns sanitized HTML for md. Empty input renders to "".
func (r *HTMLRenderer) Render(md string) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// mailtoStripper replaces links to mailto: targets with their label.
type mailtoStripper struct{}

func (mailtoStripper) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var targets []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch l := n.(type) {
		case *ast.Link:
			if isMailto(string(l.Destination)) {
				targets = append(targets, n)
			}
		case *ast.AutoLink:
			if l.AutoLinkType == ast.AutoLinkEmail || isMailto(string(l.URL(source))) {
				targets = append(targets, n)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, n := range targets {
		parent := n.Parent()
		if parent == nil {
			continue
		}
		switch l := n.(type) {
		case *ast.Link:
			for c := l.FirstChild(); c != nil; {
				next := c.NextSibling()
				parent.InsertBefore(parent, n, c)
				c = next
			}
		case *ast.AutoLink:
			label := strings.TrimPrefix(string(l.Label(source)), "mailto:")
			parent.InsertBefore(parent, n, ast.NewString([]byte(label)))
		}
		parent.RemoveChild(parent, n)
	}
}

func isMailto(dest string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(dest)), "mailto:")
}
