// Package catalog loads the static community list roulette picks from.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/spf13/afero"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/infra/httpclient"
	"github.com/aalvaropc/roulette/internal/infra/lemmy"
	"github.com/aalvaropc/roulette/internal/ports"
)

// Source reads communities.json from disk or over HTTP.
type Source struct {
	location string
	root     string
	selector string

	fs   afero.Fs
	exec *httpclient.Executor
	log  *slog.Logger
}

type Option func(*Source)

// WithSelector sets a JSONPath expression that locates the community array
// inside a larger document, e.g. "$.communities".
func WithSelector(expr string) Option {
	return func(s *Source) { s.selector = strings.TrimSpace(expr) }
}

// WithRoot resolves relative file locations against root.
func WithRoot(root string) Option {
	return func(s *Source) { s.root = root }
}

func WithFs(fs afero.Fs) Option {
	return func(s *Source) { s.fs = fs }
}

func WithExecutor(e *httpclient.Executor) Option {
	return func(s *Source) { s.exec = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Source) { s.log = l }
}

// NewSource builds a Source for location, a file path or an http(s) URL.
func NewSource(location string, opts ...Option) *Source {
	s := &Source{
		location: strings.TrimSpace(location),
		fs:       afero.NewOsFs(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exec == nil && isURL(s.location) {
		s.exec = httpclient.NewExecutor(httpclient.WithMaxBodyBytes(domain.DefaultConfig().Catalog.MaxBytes))
	}
	return s
}

var _ ports.CatalogSource = (*Source)(nil)

// Location is the resolved file path or URL.
func (s *Source) Location() string {
	if isURL(s.location) || filepath.IsAbs(s.location) || s.root == "" {
		return s.location
	}
	return filepath.Join(s.root, s.location)
}

func (s *Source) LoadCommunities(ctx context.Context) ([]domain.Community, error) {
	loc := s.Location()

	raw, err := s.read(ctx, loc)
	if err != nil {
		return nil, err
	}

	views, err := decode(raw, s.selector)
	if err != nil {
		return nil, &domain.OpError{Op: "catalog.decode", Kind: domain.KindInvalidConfig, Path: loc, Err: err}
	}

	out := make([]domain.Community, 0, len(views))
	for _, v := range views {
		c := v.ToDomain()
		if c.URL == "" {
			c.URL = c.Host()
		}
		if c.URL == "" {
			s.log.Debug("catalog.entry.skipped", "name", c.Name, "reason", "no instance")
			continue
		}
		out = append(out, c)
	}

	s.log.Info("catalog.loaded", "location", loc, "communities", len(out))
	return out, nil
}

func (s *Source) read(ctx context.Context, loc string) ([]byte, error) {
	if !isURL(loc) {
		b, err := afero.ReadFile(s.fs, loc)
		if err != nil {
			return nil, &domain.OpError{Op: "catalog.read", Kind: domain.KindNotFound, Path: loc, Err: err}
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, &domain.OpError{Op: "catalog.fetch", Kind: domain.KindInvalidConfig, Path: loc, Err: err}
	}
	resp, err := s.exec.Do(ctx, req)
	if err != nil {
		return nil, &domain.OpError{Op: "catalog.fetch", Kind: domain.KindExecution, Path: loc, Err: err}
	}
	if resp.Status == http.StatusNotFound {
		return nil, &domain.OpError{Op: "catalog.fetch", Kind: domain.KindNotFound, Path: loc, Err: domain.ErrNotFound}
	}
	if !resp.OK() {
		return nil, &domain.OpError{Op: "catalog.fetch", Kind: domain.KindExecution, Path: loc, Err: fmt.Errorf("status %d", resp.Status)}
	}
	if resp.Truncated {
		return nil, &domain.OpError{Op: "catalog.fetch", Kind: domain.KindExecution, Path: loc, Err: fmt.Errorf("catalog larger than %d bytes", len(resp.BodyBytes))}
	}
	return resp.BodyBytes, nil
}

// decode accepts a bare array, or any document plus a selector.
func decode(raw []byte, selector string) ([]lemmy.CommunityView, error) {
	if selector == "" {
		var views []lemmy.CommunityView
		if err := json.Unmarshal(raw, &views); err != nil {
			return nil, fmt.Errorf("expected a JSON array of communities (set catalog.selector for wrapped documents): %w", err)
		}
		return views, nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	val, err := jsonpath.Get(selector, doc)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", selector, err)
	}

	// Wildcard expressions yield a list of matches, each being the array we want.
	if arr, ok := val.([]any); ok && len(arr) == 1 {
		if inner, ok := arr[0].([]any); ok {
			val = inner
		}
	}
	if _, ok := val.([]any); !ok {
		return nil, fmt.Errorf("selector %q does not point to an array", selector)
	}

	b, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	var views []lemmy.CommunityView
	if err := json.Unmarshal(b, &views); err != nil {
		return nil, fmt.Errorf("selector %q: %w", selector, err)
	}
	return views, nil
}

func isURL(s string) bool {
	ls := strings.ToLower(s)
	return strings.HasPrefix(ls, "http://") || strings.HasPrefix(ls, "https://")
}
