package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aalvaropc/roulette/internal/domain"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func catalogEntry(id int64, name, instance string, nsfw bool) string {
	return fmt.Sprintf(`{"community":{"id":%d,"name":%q,"title":%q,"actor_id":"https://%s/c/%s","instance_id":1,"nsfw":%t},
"counts":{"posts":50,"subscribers":10,"comments":3},"url":%q}`,
		id, name, strings.ToUpper(name[:1])+name[1:], "lemmy.example", name, nsfw, instance)
}

func writeHome(t *testing.T, entries ...string) string {
	t.Helper()
	root := t.TempDir()
	doc := "[" + strings.Join(entries, ",") + "]"
	require.NoError(t, os.WriteFile(filepath.Join(root, "communities.json"), []byte(doc), 0o644))
	return root
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "roulette "))
}

func TestInit(t *testing.T) {
	root := t.TempDir()

	out, err := runCLI(t, "", "init", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized roulette home")

	b, err := os.ReadFile(filepath.Join(root, "roulette.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "roulette:")
}

func TestPickJSONWithoutPosts(t *testing.T) {
	root := writeHome(t, catalogEntry(1, "golang", "lemmy.example", false))

	out, err := runCLI(t, "", "pick", "--home", root, "--format", "json", "--no-posts")
	require.NoError(t, err)

	var got struct {
		Community struct {
			Key       string `json:"key"`
			FollowKey string `json:"follow_key"`
			Title     string `json:"title"`
		} `json:"community"`
		Posts []any `json:"posts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1@1", got.Community.Key)
	assert.Equal(t, "golang@lemmy.example", got.Community.FollowKey)
	assert.Equal(t, "Golang", got.Community.Title)
	assert.Empty(t, got.Posts)
}

func TestPickFetchesPosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/post/list", r.URL.Path)
		assert.Equal(t, "TopAll", r.URL.Query().Get("sort"))
		assert.Equal(t, "golang", r.URL.Query().Get("community_name"))
		_, _ = w.Write([]byte(`{"posts":[{"post":{"id":3,"name":"Generics are here","ap_id":"https://lemmy.example/post/3"},"counts":{"score":42}}]}`))
	}))
	defer srv.Close()

	root := writeHome(t, catalogEntry(1, "golang", srv.URL, false))

	out, err := runCLI(t, "", "pick", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Golang")
	assert.Contains(t, out, "Generics are here")
	assert.Contains(t, out, "42")
}

func TestPickPostsErrorIsPrinted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	root := writeHome(t, catalogEntry(1, "golang", srv.URL, false))

	out, err := runCLI(t, "", "pick", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Error loading posts")
}

func TestPickHTML(t *testing.T) {
	root := writeHome(t, catalogEntry(1, "golang", "lemmy.example", true))

	_, err := runCLI(t, "", "prefs", "filter", "all", "--home", root)
	require.NoError(t, err)

	out, err := runCLI(t, "", "pick", "--home", root, "--format", "html", "--no-posts")
	require.NoError(t, err)
	assert.Contains(t, out, "Golang")
	assert.Contains(t, out, "NSFW")
}

func TestPickUnsupportedFormat(t *testing.T) {
	_, err := runCLI(t, "", "pick", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestPickMarkSeenExhaustsCatalog(t *testing.T) {
	root := writeHome(t, catalogEntry(1, "golang", "lemmy.example", false))

	_, err := runCLI(t, "", "pick", "--home", root, "--no-posts", "--mark-seen")
	require.NoError(t, err)

	_, err = runCLI(t, "", "pick", "--home", root, "--no-posts")
	assert.ErrorIs(t, err, domain.ErrNoCandidates)
}

func TestSkipByKey(t *testing.T) {
	root := writeHome(t,
		catalogEntry(1, "golang", "lemmy.example", false),
		catalogEntry(2, "rust", "lemmy.example", false),
	)

	out, err := runCLI(t, "", "skip", "1@1", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped golang@lemmy.example")

	out, err = runCLI(t, "", "pick", "--home", root, "--format", "json", "--no-posts")
	require.NoError(t, err)
	assert.Contains(t, out, `"key": "1@2"`)

	_, err = runCLI(t, "", "skip", "1@1", "--home", root)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestFollowRequiresLogin(t *testing.T) {
	root := writeHome(t, catalogEntry(1, "golang", "lemmy.example", false))

	_, err := runCLI(t, "", "follow", "golang@lemmy.example", "--home", root)
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestPrefsFilterAndShow(t *testing.T) {
	root := t.TempDir()

	out, err := runCLI(t, "", "prefs", "filter", "nsfw-only", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "only")

	_, err = runCLI(t, "", "prefs", "filter", "maybe", "--home", root)
	assert.ErrorIs(t, err, domain.ErrInvalidFilter)

	out, err = runCLI(t, "", "prefs", "show", "--home", root, "--format", "json")
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "only", v["nsfwFilter"])
}

func TestBlockUnblock(t *testing.T) {
	root := t.TempDir()

	out, err := runCLI(t, "", "block", "Lemmy.Example", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Blocked")

	out, err = runCLI(t, "", "block", "lemmy.example", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "already blocked")

	out, err = runCLI(t, "", "prefs", "show", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "- lemmy.example")

	out, err = runCLI(t, "", "unblock", "lemmy.example", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Unblocked")
}

func TestPrefsResetSeen(t *testing.T) {
	root := writeHome(t, catalogEntry(1, "golang", "lemmy.example", false))

	_, err := runCLI(t, "", "skip", "1@1", "--home", root)
	require.NoError(t, err)

	_, err = runCLI(t, "", "prefs", "reset-seen", "--home", root)
	require.NoError(t, err)

	_, err = runCLI(t, "", "pick", "--home", root, "--no-posts")
	assert.NoError(t, err)
}

func TestLoginValidatesInput(t *testing.T) {
	root := t.TempDir()

	_, err := runCLI(t, "secret\n", "login", "--home", root, "--instance", "lemmy.example/path", "--username", "alice", "--password-stdin")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
}

func TestLoginFailureKeepsStoredSession(t *testing.T) {
	root := t.TempDir()
	storage := filepath.Join(root, ".roulette", "storage.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(storage), 0o755))
	require.NoError(t, os.WriteFile(storage, []byte(`{"jwt":"old-token","userInstance":"old.example"}`), 0o600))

	out, err := runCLI(t, "pw\n", "login", "--home", root, "--instance", "127.0.0.1:1", "--username", "bob", "--password-stdin")
	require.Error(t, err)
	assert.NotContains(t, out, "Logged in")
	assert.NotContains(t, out, "warning")

	b, err := os.ReadFile(storage)
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, json.Unmarshal(b, &stored))
	assert.Equal(t, "old-token", stored["jwt"])
	assert.Equal(t, "old.example", stored["userInstance"])
}

func TestLoadHomeExposesLogFile(t *testing.T) {
	root := writeHome(t)

	h, err := loadHome(&globalOpts{home: root, debug: true})
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, filepath.Join(root, ".roulette", "logs", "roulette.log"), h.logPath)
	assert.NotEmpty(t, h.runID)
}

func TestLogout(t *testing.T) {
	root := t.TempDir()
	out, err := runCLI(t, "", "logout", "--home", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
}

func TestReadPasswordFromReader(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader("hunter2\r\n"))
	pw, err := readPassword(cmd, false)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestPickTemplate(t *testing.T) {
	root := writeHome(t, catalogEntry(1, "golang", "lemmy.example", false))

	out, err := runCLI(t, "", "pick", "--home", root, "--no-posts", "--template", `{{title}} {{actor_id}}\n`)
	require.NoError(t, err)
	assert.Equal(t, "Golang https://lemmy.example/c/golang\n", out)

	_, err = runCLI(t, "", "pick", "--home", root, "--no-posts", "--template", "{{nope}}")
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
}
