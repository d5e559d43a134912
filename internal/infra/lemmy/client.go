// Package lemmy is a thin client for the Lemmy v3 HTTP API.
package lemmy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/infra/httpclient"
	"github.com/aalvaropc/roulette/internal/ports"
)

const apiPrefix = "/api/v3"

// Client talks to a single instance.
type Client struct {
	base    string
	exec    *httpclient.Executor
	limiter *rate.Limiter
	log     *slog.Logger
}

type Option func(*Client)

func WithExecutor(e *httpclient.Executor) Option {
	return func(c *Client) { c.exec = e }
}

// WithLimiter throttles outgoing requests. A nil limiter disables throttling.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New binds a client to instance, which is a host ("lemmy.ml") or a base URL.
func New(instance string, opts ...Option) *Client {
	c := &Client{
		base: domain.InstanceURL(instance),
		exec: httpclient.NewExecutor(),
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.InstanceAPI = (*Client)(nil)

// BaseURL is the instance root the client is bound to.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := c.call(ctx, "lemmy.login", http.MethodPost, "/user/login", "", nil,
		loginRequest{UsernameOrEmail: username, Password: password}, &out)
	if err != nil {
		return "", err
	}
	if out.JWT == nil || *out.JWT == "" {
		return "", &domain.OpError{Op: "lemmy.login", Kind: domain.KindUnauthorized, Path: c.base, Err: domain.ErrNoToken}
	}
	return *out.JWT, nil
}

func (c *Client) GetPosts(ctx context.Context, q ports.PostsQuery) ([]domain.Post, error) {
	params := url.Values{}
	if q.CommunityID != 0 {
		params.Set("community_id", strconv.FormatInt(q.CommunityID, 10))
	}
	if q.CommunityName != "" {
		params.Set("community_name", q.CommunityName)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var out getPostsResponse
	if err := c.call(ctx, "lemmy.get_posts", http.MethodGet, "/post/list", "", params, nil, &out); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, 0, len(out.Posts))
	for _, p := range out.Posts {
		posts = append(posts, p.toDomain())
	}
	return posts, nil
}

func (c *Client) GetCommunity(ctx context.Context, jwt, name string) (domain.Community, error) {
	params := url.Values{"name": {name}}
	if jwt != "" {
		params.Set("auth", jwt)
	}

	var out getCommunityResponse
	if err := c.call(ctx, "lemmy.get_community", http.MethodGet, "/community", jwt, params, nil, &out); err != nil {
		return domain.Community{}, err
	}
	return out.CommunityView.ToDomain(), nil
}

func (c *Client) FollowCommunity(ctx context.Context, jwt string, communityID int64, follow bool) error {
	body := followRequest{CommunityID: communityID, Follow: follow, Auth: jwt}
	return c.call(ctx, "lemmy.follow_community", http.MethodPost, "/community/follow", jwt, nil, body, nil)
}

func (c *Client) ListSubscribed(ctx context.Context, jwt string, page, limit int) ([]domain.Community, error) {
	params := url.Values{
		"type_": {"Subscribed"},
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	if jwt != "" {
		params.Set("auth", jwt)
	}

	var out listCommunitiesResponse
	if err := c.call(ctx, "lemmy.list_communities", http.MethodGet, "/community/list", jwt, params, nil, &out); err != nil {
		return nil, err
	}

	cs := make([]domain.Community, 0, len(out.Communities))
	for _, v := range out.Communities {
		cs = append(cs, v.ToDomain())
	}
	return cs, nil
}

func (c *Client) BlockedInstances(ctx context.Context) ([]string, error) {
	var out federatedInstancesResponse
	if err := c.call(ctx, "lemmy.federated_instances", http.MethodGet, "/federated_instances", "", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.FederatedInstances == nil {
		return []string{}, nil
	}

	domains := make([]string, 0, len(out.FederatedInstances.Blocked))
	for _, r := range out.FederatedInstances.Blocked {
		if d := strings.ToLower(strings.TrimSpace(r.Domain)); d != "" {
			domains = append(domains, d)
		}
	}
	return domains, nil
}

func (c *Client) call(ctx context.Context, op, method, path, jwt string, params url.Values, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: c.base + apiPrefix + path, Err: err}
		}
	}

	req, err := httpclient.BuildJSONRequest(ctx, method, c.base, apiPrefix+path, params, body)
	if err != nil {
		return err
	}
	if jwt != "" {
		req.Header.Set("Authorization", "Bearer "+jwt)
	}

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		c.log.Warn("lemmy.request.failed", "op", op, "url", c.base+apiPrefix+path, "err", err)
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: c.base + apiPrefix + path, Err: err}
	}
	c.log.Debug("lemmy.request", "op", op, "status", resp.Status, "duration_ms", resp.Duration.Milliseconds())

	if !resp.OK() {
		return statusError(op, c.base+apiPrefix+path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.BodyBytes, out); err != nil {
		return &domain.OpError{Op: op, Kind: domain.KindExecution, Path: c.base + apiPrefix + path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func statusError(op, path string, resp httpclient.ResponseData) error {
	msg := http.StatusText(resp.Status)
	var ae apiError
	if json.Unmarshal(resp.BodyBytes, &ae) == nil {
		switch {
		case ae.Error != "" && ae.Message != "":
			msg = ae.Error + ": " + ae.Message
		case ae.Error != "":
			msg = ae.Error
		case ae.Message != "":
			msg = ae.Message
		}
	}

	kind := domain.KindExecution
	switch resp.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = domain.KindUnauthorized
	case http.StatusNotFound:
		kind = domain.KindNotFound
	}
	if strings.Contains(msg, "incorrect_login") || strings.Contains(msg, "not_logged_in") {
		kind = domain.KindUnauthorized
	}

	return &domain.OpError{
		Op:   op,
		Kind: kind,
		Path: path,
		Err:  fmt.Errorf("status %d: %w", resp.Status, errors.New(msg)),
	}
}

// Dialer hands out clients that share one executor and one rate limiter.
type Dialer struct {
	exec    *httpclient.Executor
	limiter *rate.Limiter
	log     *slog.Logger
}

// NewDialer builds a Dialer. A non-positive rps disables throttling.
func NewDialer(exec *httpclient.Executor, rps float64, log *slog.Logger) *Dialer {
	if exec == nil {
		exec = httpclient.NewExecutor()
	}
	d := &Dialer{exec: exec, log: log}
	if rps > 0 {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	return d
}

var _ ports.InstanceDialer = (*Dialer)(nil)

func (d *Dialer) Dial(instance string) ports.InstanceAPI {
	return New(instance, WithExecutor(d.exec), WithLimiter(d.limiter), WithLogger(d.log))
}
