package settings

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

// ConfigFile is the name of the configuration file marking a roulette home.
const ConfigFile = "roulette.yaml"

// Finder locates a roulette home by searching for roulette.yaml upward.
type Finder struct {
	ConfigFile string // defaults to "roulette.yaml"
}

func NewFinder() *Finder {
	return &Finder{ConfigFile: ConfigFile}
}

var _ ports.HomeLocator = (*Finder)(nil)

func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "settings.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{
			Op:   "settings.findroot",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	// If user passes a file path, use its directory.
	info, statErr := os.Stat(abs)
	if statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	cur := filepath.Clean(abs)
	for {
		cfgPath := filepath.Join(cur, f.ConfigFile)
		if _, err := os.Stat(cfgPath); err == nil {
			return cur, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root.
			return "", &domain.OpError{
				Op:   "settings.findroot",
				Kind: domain.KindNotFound,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}

// DefaultRoot is the per-user config directory used when no roulette.yaml is
// found above the working directory.
func DefaultRoot() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", &domain.OpError{Op: "settings.default_root", Kind: domain.KindExecution, Err: err}
	}
	return filepath.Join(dir, "roulette"), nil
}

// ResolveRoot picks the home: an explicit flag wins, then a roulette.yaml found
// from startDir upward, then DefaultRoot.
func ResolveRoot(flag, startDir string, locator ports.HomeLocator) (string, error) {
	if flag != "" {
		abs, err := filepath.Abs(flag)
		if err != nil {
			return "", &domain.OpError{Op: "settings.resolve_root", Kind: domain.KindInvalidConfig, Path: flag, Err: err}
		}
		return abs, nil
	}
	if locator != nil && startDir != "" {
		if root, err := locator.FindRoot(startDir); err == nil && root != "" {
			return root, nil
		}
	}
	return DefaultRoot()
}
