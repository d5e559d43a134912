package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/roulette/internal/domain"
)

func TestExecutorTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exec := NewExecutor(WithTimeout(20 * time.Millisecond))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := exec.Do(context.Background(), req)
	require.Error(t, err)
	assert.Positive(t, resp.Duration)
}

func TestExecutorTruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	exec := NewExecutor(WithMaxBodyBytes(10))
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	resp, err := exec.Do(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.True(t, resp.Truncated)
	assert.Len(t, resp.BodyBytes, 10)
}

func TestClientSetsUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "roulette-test"
	exec := NewExecutor(WithClient(New(cfg)))

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	_, err = exec.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "roulette-test", got)
}

func TestBuildJSONRequest(t *testing.T) {
	req, err := BuildJSONRequest(context.Background(), http.MethodPost, "https://lemmy.ml/", "/api/v3/user/login",
		url.Values{"a": {"1"}}, map[string]string{"username_or_email": "me"})
	require.NoError(t, err)

	assert.Equal(t, "https://lemmy.ml/api/v3/user/login?a=1", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username_or_email":"me"}`, string(body))
}

func TestBuildJSONRequestWithoutBase(t *testing.T) {
	_, err := BuildJSONRequest(context.Background(), http.MethodGet, " ", "/x", nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
}
