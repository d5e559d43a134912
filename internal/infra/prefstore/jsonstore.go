package prefstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

// JSONStore keeps the key/value map in a single JSON object on disk.
type JSONStore struct {
	fs   afero.Fs
	path string
}

type Option func(*JSONStore)

// WithFs is useful for tests.
func WithFs(fs afero.Fs) Option {
	return func(s *JSONStore) { s.fs = fs }
}

func NewJSONStore(path string, opts ...Option) *JSONStore {
	s := &JSONStore{
		fs:   afero.NewOsFs(),
		path: filepath.Clean(path),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.PreferencesStore = (*JSONStore)(nil)

func (s *JSONStore) Path() string { return s.path }

func (s *JSONStore) Load() (domain.Preferences, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
		return domain.DefaultPreferences(), nil
	}
	if err != nil {
		return domain.DefaultPreferences(), &domain.OpError{
			Op:   "prefstore.read",
			Kind: domain.KindExecution,
			Path: s.path,
			Err:  err,
		}
	}

	kv := map[string]string{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &kv); err != nil {
			return domain.DefaultPreferences(), &domain.OpError{
				Op:   "prefstore.decode",
				Kind: domain.KindInvalidConfig,
				Path: s.path,
				Err:  err,
			}
		}
	}

	return decode("prefstore.decode", s.path, kv)
}

func (s *JSONStore) Save(p domain.Preferences) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return &domain.OpError{
			Op:   "prefstore.mkdir",
			Kind: domain.KindExecution,
			Path: dir,
			Err:  err,
		}
	}

	kv, err := encode(p)
	if err != nil {
		return &domain.OpError{Op: "prefstore.encode", Kind: domain.KindExecution, Path: s.path, Err: err}
	}

	b, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return &domain.OpError{Op: "prefstore.marshal", Kind: domain.KindExecution, Path: s.path, Err: err}
	}

	// Atomic-ish write: tmp then rename.
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, b, 0o600); err != nil {
		return &domain.OpError{
			Op:   "prefstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return &domain.OpError{
			Op:   "prefstore.rename",
			Kind: domain.KindExecution,
			Path: s.path,
			Err:  err,
		}
	}
	return nil
}
