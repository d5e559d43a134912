package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/roulette/internal/domain"
)

// LoadConfig loads roulette.yaml from root and applies defaults. A missing file
// is not an error: the defaults are returned.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "settings.loadconfig",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "settings.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if err := apply(&cfg, y); err != nil {
		return cfg, &domain.OpError{
			Op:   "settings.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, &domain.OpError{
			Op:   "settings.validate",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return cfg, nil
}

// Apply parsed values on top of defaults.
func apply(cfg *domain.Config, y yamlConfig) error {
	r := y.Roulette

	if s := strings.TrimSpace(r.Catalog.Source); s != "" {
		cfg.Catalog.Source = s
	}
	if s := strings.TrimSpace(r.Catalog.Selector); s != "" {
		cfg.Catalog.Selector = s
	}
	if r.Catalog.MinPosts != nil {
		cfg.Catalog.MinPosts = *r.Catalog.MinPosts
	}
	if r.Catalog.MaxBytes != nil {
		cfg.Catalog.MaxBytes = *r.Catalog.MaxBytes
	}

	if r.Posts.Limit != nil {
		cfg.Posts.Limit = *r.Posts.Limit
	}
	if r.Posts.Sort != "" {
		cfg.Posts.Sort = r.Posts.Sort
	}

	if r.Storage.Driver != "" {
		cfg.Storage.Driver = strings.ToLower(r.Storage.Driver)
	}
	if r.Storage.Path != "" {
		cfg.Storage.Path = r.Storage.Path
	}

	if r.HTTP.Timeout != "" {
		d, err := time.ParseDuration(r.HTTP.Timeout)
		if err != nil {
			return fmt.Errorf("http.timeout: %w", err)
		}
		cfg.HTTP.Timeout = d
	}
	if r.HTTP.UserAgent != "" {
		cfg.HTTP.UserAgent = r.HTTP.UserAgent
	}
	if r.HTTP.RateLimit != nil {
		cfg.HTTP.RateLimit = *r.HTTP.RateLimit
	}

	if r.Session.PageSize != nil {
		cfg.Session.PageSize = *r.Session.PageSize
	}
	return nil
}

type yamlConfig struct {
	Roulette struct {
		Catalog struct {
			Source   string `yaml:"source"`
			Selector string `yaml:"selector"`
			MinPosts *int64 `yaml:"min_posts"`
			MaxBytes *int64 `yaml:"max_bytes"`
		} `yaml:"catalog"`

		Posts struct {
			Limit *int   `yaml:"limit"`
			Sort  string `yaml:"sort"`
		} `yaml:"posts"`

		Storage struct {
			Driver string `yaml:"driver"`
			Path   string `yaml:"path"`
		} `yaml:"storage"`

		HTTP struct {
			Timeout   string   `yaml:"timeout"`
			UserAgent string   `yaml:"user_agent"`
			RateLimit *float64 `yaml:"rate_limit"`
		} `yaml:"http"`

		Session struct {
			PageSize *int `yaml:"page_size"`
		} `yaml:"session"`
	} `yaml:"roulette"`
}
