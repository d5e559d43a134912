package prefstore

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the store selected by cfg. Relative paths resolve against root.
// The returned closer must be called when the store is no longer used.
func Open(root string, cfg domain.StorageConfig) (ports.PreferencesStore, io.Closer, error) {
	path := cfg.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	switch cfg.Driver {
	case domain.StorageJSON, "":
		return NewJSONStore(path), nopCloser{}, nil
	case domain.StorageSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, &domain.OpError{
			Op:   "prefstore.open",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unknown storage driver %q (expected json|sqlite)", cfg.Driver),
		}
	}
}
