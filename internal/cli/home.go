package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/roulette/internal/domain"
	"github.com/aalvaropc/roulette/internal/infra/catalog"
	"github.com/aalvaropc/roulette/internal/infra/httpclient"
	"github.com/aalvaropc/roulette/internal/infra/lemmy"
	"github.com/aalvaropc/roulette/internal/infra/logger"
	"github.com/aalvaropc/roulette/internal/infra/prefstore"
	"github.com/aalvaropc/roulette/internal/infra/settings"
	"github.com/aalvaropc/roulette/internal/usecase"
)

// globalOpts are the persistent flags shared by every command.
type globalOpts struct {
	home  string
	debug bool
}

// homeCtx wires every component for one command invocation.
type homeCtx struct {
	root string
	cfg  domain.Config
	log  *slog.Logger

	// logPath and runID are empty when the log file could not be opened.
	logPath string
	runID   string

	roulette *usecase.Roulette
	session  *usecase.Session
	prefs    *usecase.Preferences

	closers []func() error
}

func loadHome(opts *globalOpts) (*homeCtx, error) {
	root, err := resolveHomeRoot(opts.home)
	if err != nil {
		return nil, err
	}

	h := &homeCtx{root: root}

	cleanup, logErr := logger.Setup(logger.Config{Root: root, Debug: opts.debug})
	if cleanup != nil {
		h.closers = append(h.closers, cleanup)
	}
	h.log = logger.L()
	if logErr != nil {
		h.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if logger.IsReady() == nil {
		h.logPath = logger.Path()
		h.runID = logger.RunID()
	}

	cfg, err := settings.LoadConfig(root)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.cfg = cfg

	store, closer, err := prefstore.Open(root, cfg.Storage)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.closers = append(h.closers, closer.Close)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTP.Timeout
	if cfg.HTTP.UserAgent != "" {
		httpCfg.UserAgent = cfg.HTTP.UserAgent
	}
	exec := httpclient.NewExecutor(
		httpclient.WithClient(httpclient.New(httpCfg)),
		httpclient.WithTimeout(cfg.HTTP.Timeout),
	)

	// Community dumps are far larger than API responses.
	catalogExec := httpclient.NewExecutor(
		httpclient.WithClient(httpclient.New(httpCfg)),
		httpclient.WithTimeout(cfg.HTTP.Timeout),
		httpclient.WithMaxBodyBytes(cfg.Catalog.MaxBytes),
	)

	source := catalog.NewSource(cfg.Catalog.Source,
		catalog.WithRoot(root),
		catalog.WithSelector(cfg.Catalog.Selector),
		catalog.WithExecutor(catalogExec),
		catalog.WithLogger(h.log),
	)
	dialer := lemmy.NewDialer(exec, cfg.HTTP.RateLimit, h.log)

	h.roulette = usecase.NewRoulette(source, store, dialer,
		usecase.WithSelection(cfg),
		usecase.WithLogger(h.log),
	)
	h.session = usecase.NewSession(h.roulette, dialer, cfg.Session.PageSize, h.log)
	h.prefs = usecase.NewPreferences(h.roulette)

	if err := h.roulette.LoadPreferences(); err != nil {
		h.Close()
		return nil, err
	}

	h.log.Debug("cli.home_loaded", "root", root, "storage", cfg.Storage.Driver)
	return h, nil
}

// Close releases the store and the log file, newest first.
func (h *homeCtx) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		_ = h.closers[i]()
	}
	h.closers = nil
}

// resolveHomeRoot picks --home, then a roulette.yaml found upward from the
// working directory, then the per-user config directory.
func resolveHomeRoot(homeFlag string) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	root, err := settings.ResolveRoot(strings.TrimSpace(homeFlag), wd, settings.NewFinder())
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Clean(root), nil
}
