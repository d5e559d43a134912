package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aalvaropc/roulette/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg != domain.DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	root := writeConfig(t, "roulette:\n  storage:\n    driver: SQLite\n    path: data/prefs.db\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Storage.Driver != domain.StorageSQLite {
		t.Fatalf("expected sqlite driver, got=%s", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "data/prefs.db" {
		t.Fatalf("expected storage path, got=%s", cfg.Storage.Path)
	}
	if cfg.Catalog.Source != "communities.json" {
		t.Fatalf("expected default catalog source, got=%s", cfg.Catalog.Source)
	}
	if cfg.Posts.Limit != 10 || cfg.Posts.Sort != "TopAll" {
		t.Fatalf("expected default posts config, got=%+v", cfg.Posts)
	}
	if cfg.Session.PageSize != 50 {
		t.Fatalf("expected page size 50, got=%d", cfg.Session.PageSize)
	}
	if cfg.Catalog.MaxBytes != 256<<20 {
		t.Fatalf("expected default catalog cap, got=%d", cfg.Catalog.MaxBytes)
	}
}

func TestLoadConfig_AllFields(t *testing.T) {
	root := writeConfig(t, `roulette:
  catalog:
    source: https://example.org/communities.json
    selector: $.communities
    min_posts: 0
    max_bytes: 0
  posts:
    limit: 20
    sort: Hot
  http:
    timeout: 5s
    user_agent: test-agent
    rate_limit: 0
  session:
    page_size: 25
`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Catalog.Source != "https://example.org/communities.json" || cfg.Catalog.Selector != "$.communities" {
		t.Fatalf("unexpected catalog: %+v", cfg.Catalog)
	}
	if cfg.Catalog.MinPosts != 0 {
		t.Fatalf("expected explicit min_posts 0, got %d", cfg.Catalog.MinPosts)
	}
	if cfg.Catalog.MaxBytes != 0 {
		t.Fatalf("expected explicit max_bytes 0, got %d", cfg.Catalog.MaxBytes)
	}
	if cfg.Posts.Limit != 20 || cfg.Posts.Sort != "Hot" {
		t.Fatalf("unexpected posts: %+v", cfg.Posts)
	}
	if cfg.HTTP.Timeout != 5*time.Second || cfg.HTTP.UserAgent != "test-agent" || cfg.HTTP.RateLimit != 0 {
		t.Fatalf("unexpected http: %+v", cfg.HTTP)
	}
	if cfg.Session.PageSize != 25 {
		t.Fatalf("unexpected page size: %d", cfg.Session.PageSize)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	root := writeConfig(t, "roulette:\n  posts: [\n")

	_, err := LoadConfig(root)
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got: %v", err)
	}
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	root := writeConfig(t, "roulette:\n  http:\n    timeout: soon\n")

	_, err := LoadConfig(root)
	if err == nil || !strings.Contains(err.Error(), "http.timeout") {
		t.Fatalf("expected http.timeout error, got: %v", err)
	}
}

func TestLoadConfig_ValidationFails(t *testing.T) {
	root := writeConfig(t, "roulette:\n  storage:\n    driver: redis\n")

	_, err := LoadConfig(root)
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got: %v", err)
	}
	if !strings.Contains(err.Error(), "storage") {
		t.Fatalf("expected storage in error, got: %v", err)
	}
}
