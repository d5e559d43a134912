package home

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/ports"
)

//go:embed templates/*
var templatesFS embed.FS

type Initializer struct {
	fs afero.Fs
}

type Option func(*Initializer)

// WithFs swaps the filesystem (tests use afero.NewMemMapFs).
func WithFs(fsys afero.Fs) Option {
	return func(i *Initializer) { i.fs = fsys }
}

func NewInitializer(opts ...Option) *Initializer {
	i := &Initializer{fs: afero.NewOsFs()}
	for _, o := range opts {
		o(i)
	}
	return i
}

var _ ports.HomeInitializer = (*Initializer)(nil)

func (i *Initializer) Init(root string, force bool) error {
	root = filepath.Clean(root)

	if err := i.fs.MkdirAll(filepath.Join(root, ".roulette", "logs"), 0o755); err != nil {
		return wrap(root, err)
	}

	if err := i.ensureGitignore(root); err != nil {
		return wrap(root, err)
	}

	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		dst := filepath.Join(root, strings.TrimPrefix(p, "templates/"))
		if !force {
			if _, statErr := i.fs.Stat(dst); statErr == nil {
				return nil
			}
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}
		return afero.WriteFile(i.fs, dst, b, 0o644)
	})
	if err != nil {
		return wrap(root, err)
	}
	return nil
}

func wrap(root string, err error) error {
	return &domain.OpError{Op: "home.init", Kind: domain.KindExecution, Path: root, Err: err}
}

func (i *Initializer) ensureGitignore(root string) error {
	const header = "# roulette"
	entries := []string{".roulette/"}

	path := filepath.Join(root, ".gitignore")
	b, err := afero.ReadFile(i.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return afero.WriteFile(i.fs, path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			present[trimmed] = true
		}
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return afero.WriteFile(i.fs, path, []byte(out.String()), 0o644)
}
