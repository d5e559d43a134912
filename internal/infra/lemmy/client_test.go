package lemmy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestLogin(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/user/login", r.URL.Path)

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username_or_email"])
		assert.Equal(t, "hunter2", body["password"])

		_, _ = io.WriteString(w, `{"jwt":"token-123","registration_created":false}`)
	})

	jwt, err := c.Login(context.Background(), "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "token-123", jwt)
}

func TestLoginWithoutToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"jwt":null,"verify_email_sent":true}`)
	})

	_, err := c.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, domain.ErrNoToken)
}

func TestLoginIncorrect(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"incorrect_login"}`)
	})

	_, err := c.Login(context.Background(), "alice", "bad")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	assert.Contains(t, err.Error(), "incorrect_login")
}

func TestGetPosts(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v3/post/list", r.URL.Path)
		assert.Equal(t, "12", q.Get("community_id"))
		assert.Equal(t, "golang", q.Get("community_name"))
		assert.Equal(t, "TopAll", q.Get("sort"))
		assert.Equal(t, "10", q.Get("limit"))

		_, _ = io.WriteString(w, `{"posts":[
			{"post":{"id":1,"name":"Hello","body":"**hi**","ap_id":"https://x/post/1","embed_video_url":"https://v/a.mp4"},"counts":{"score":99}},
			{"post":{"id":2,"name":"Second"},"counts":{"score":3}}
		]}`)
	})

	posts, err := c.GetPosts(context.Background(), ports.PostsQuery{
		CommunityID: 12, CommunityName: "golang", Sort: "TopAll", Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Hello", posts[0].Name)
	assert.Equal(t, int64(99), posts[0].Score)
	assert.True(t, posts[0].HasMP4Embed())
	assert.Equal(t, "https://x/post/1", posts[0].APID)
}

func TestGetCommunityAndFollow(t *testing.T) {
	var followed followRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v3/community":
			assert.Equal(t, "golang@programming.dev", r.URL.Query().Get("name"))
			_, _ = io.WriteString(w, `{"community_view":{"community":{"id":555,"name":"golang","actor_id":"https://programming.dev/c/golang"},"counts":{"posts":1}}}`)
		case "/api/v3/community/follow":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&followed))
			_, _ = io.WriteString(w, `{}`)
		default:
			http.NotFound(w, r)
		}
	})

	comm, err := c.GetCommunity(context.Background(), "jwt-1", "golang@programming.dev")
	require.NoError(t, err)
	assert.Equal(t, int64(555), comm.ID)

	require.NoError(t, c.FollowCommunity(context.Background(), "jwt-1", comm.ID, true))
	assert.Equal(t, followRequest{CommunityID: 555, Follow: true, Auth: "jwt-1"}, followed)
}

func TestGetCommunityNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"couldnt_find_community"}`)
	})

	_, err := c.GetCommunity(context.Background(), "", "nope@nowhere")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestListSubscribed(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Subscribed", q.Get("type_"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "jwt-1", q.Get("auth"))
		_, _ = io.WriteString(w, `{"communities":[{"community":{"id":1,"name":"rust","actor_id":"https://lemmy.ml/c/rust"}}]}`)
	})

	cs, err := c.ListSubscribed(context.Background(), "jwt-1", 2, 50)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "rust@lemmy.ml", cs[0].FollowKey())
}

func TestBlockedInstancesAcceptsBothShapes(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/federated_instances", r.URL.Path)
		_, _ = io.WriteString(w, `{"federated_instances":{"linked":[],"blocked":[{"id":1,"domain":"Bad.Example"},"worse.example"]}}`)
	})

	got, err := c.BlockedInstances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"bad.example", "worse.example"}, got)
}

func TestBlockedInstancesWithoutFederation(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"federated_instances":null}`)
	})

	got, err := c.BlockedInstances(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<html>not json</html>`)
	})

	_, err := c.GetPosts(context.Background(), ports.PostsQuery{CommunityID: 1})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindExecution))
}

func TestDialerSharesExecutor(t *testing.T) {
	d := NewDialer(nil, 0, nil)
	api := d.Dial("lemmy.ml")

	c, ok := api.(*Client)
	require.True(t, ok)
	assert.Equal(t, "https://lemmy.ml", c.BaseURL())
	assert.Nil(t, c.limiter)

	throttled := NewDialer(nil, 2, nil).Dial("lemmy.ml").(*Client)
	assert.NotNil(t, throttled.limiter)
}
