package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the roulette configuration loaded from roulette.yaml.
type Config struct {
	Catalog CatalogConfig
	Posts   PostsConfig
	Storage StorageConfig
	HTTP    HTTPConfig
	Session SessionConfig
}

type CatalogConfig struct {
	// Source is a file path (relative to the config root) or an http(s) URL.
	Source string
	// Selector is an optional JSONPath expression locating the community array.
	Selector string
	// MinPosts excludes communities with this many posts or fewer.
	MinPosts int64
	// MaxBytes caps a remote catalog download; 0 means no cap.
	MaxBytes int64
}

type PostsConfig struct {
	Limit int
	Sort  string
}

// Storage drivers.
const (
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

type StorageConfig struct {
	Driver string
	Path   string
}

type HTTPConfig struct {
	Timeout   time.Duration
	UserAgent string
	// RateLimit is the maximum number of API requests per second (0 disables).
	RateLimit float64
}

type SessionConfig struct {
	PageSize int
}

// DefaultConfig provides sane defaults if roulette.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			Source:   "communities.json",
			MinPosts: 10,
			MaxBytes: 256 << 20,
		},
		Posts: PostsConfig{
			Limit: 10,
			Sort:  "TopAll",
		},
		Storage: StorageConfig{
			Driver: StorageJSON,
			Path:   ".roulette/storage.json",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "roulette (+https://github.com/aalvaropc/roulette)",
			RateLimit: 5,
		},
		Session: SessionConfig{
			PageSize: 50,
		},
	}
}

// Validate reports the first invalid field of each section.
func (c Config) Validate() error {
	return validation.Errors{
		"catalog": validation.ValidateStruct(&c.Catalog,
			validation.Field(&c.Catalog.Source, validation.Required),
			validation.Field(&c.Catalog.MinPosts, validation.Min(int64(0))),
			validation.Field(&c.Catalog.MaxBytes, validation.Min(int64(0))),
		),
		"posts": validation.ValidateStruct(&c.Posts,
			validation.Field(&c.Posts.Limit, validation.Required, validation.Min(1), validation.Max(50)),
			validation.Field(&c.Posts.Sort, validation.Required),
		),
		"storage": validation.ValidateStruct(&c.Storage,
			validation.Field(&c.Storage.Driver, validation.Required, validation.In(StorageJSON, StorageSQLite)),
			validation.Field(&c.Storage.Path, validation.Required),
		),
		"http": validation.ValidateStruct(&c.HTTP,
			validation.Field(&c.HTTP.Timeout, validation.Required),
			validation.Field(&c.HTTP.RateLimit, validation.Min(float64(0))),
		),
		"session": validation.ValidateStruct(&c.Session,
			validation.Field(&c.Session.PageSize, validation.Required, validation.Min(1), validation.Max(50)),
		),
	}.Filter()
}
