package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/stylekit/internal/browser"
	"github.com/five82/stylekit/internal/config"
	"github.com/five82/stylekit/internal/library"
	"github.com/five82/stylekit/internal/prefs"
	"github.com/five82/stylekit/internal/state"
	"github.com/five82/stylekit/internal/ui"
)

// Options configure the stylekit application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/stylekit/prefs.toml
	Verbose    bool
}

// Env is the wired object graph shared by the TUI and the CLI commands.
type Env struct {
	Config     config.Config
	Prefs      *PrefsStore
	Logger     *zap.Logger
	Client     *library.Client
	Favorites  *state.Favorites
	Controller *browser.Controller
}

// Setup loads configuration and preferences and wires the controller.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := NewLogger(cfg.LogFile, cfg.LogLevel, opts.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("preferences unreadable, using defaults", zap.String("path", prefsPath), zap.Error(err))
	}
	store := NewPrefsStore(prefsPath, userPrefs)

	clientOpts := []library.Option{
		library.WithTimeout(cfg.Timeout),
		library.WithLogger(logger.Named("library")),
	}
	if cfg.HasCredentials() {
		clientOpts = append(clientOpts, library.WithCredentials(cfg.Username, cfg.AppPassword))
	}
	client, err := library.NewClient(cfg.SiteURL, clientOpts...)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init library client: %w", err)
	}

	// The mark_favorite endpoint requires an authenticated user; without
	// credentials favorites stay local to the prefs file.
	var remote state.Marker
	if cfg.HasCredentials() {
		remote = client
	}
	ids := make([]library.TemplateID, 0, len(userPrefs.Favorites))
	for _, id := range userPrefs.Favorites {
		ids = append(ids, library.TemplateID(id))
	}
	favorites := state.NewFavorites(ids, remote)
	favorites.OnChange(func(ids []library.TemplateID) error {
		return store.Update(func(p *prefs.Prefs) {
			p.Favorites = make([]string, 0, len(ids))
			for _, id := range ids {
				p.Favorites = append(p.Favorites, id.String())
			}
		})
	})

	ctrl := browser.New(client, favorites,
		browser.WithLogger(logger.Named("browser")),
		browser.WithFavoriteMarker(favorites),
	)

	logger.Debug("environment ready",
		zap.String("site", cfg.SiteURL),
		zap.Bool("authenticated", cfg.HasCredentials()),
		zap.Int("favorites", favorites.Len()),
	)

	return &Env{
		Config:     cfg,
		Prefs:      store,
		Logger:     logger,
		Client:     client,
		Favorites:  favorites,
		Controller: ctrl,
	}, nil
}

// Close flushes the logger.
func (e *Env) Close() {
	if e == nil || e.Logger == nil {
		return
	}
	_ = e.Logger.Sync()
}

// Run boots the stylekit TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	p := env.Prefs.Get()
	env.Logger.Info("starting browser", zap.String("site", env.Config.SiteURL))
	return ui.Run(ui.Options{
		Context:    ctx,
		Controller: env.Controller,
		Favorites:  env.Favorites,
		Prefs:      env.Prefs,
		Logger:     env.Logger.Named("ui"),
		ThemeName:  p.Theme,
		Sort:       browser.SortKey(p.Sort),
		SiteURL:    env.Config.SiteURL,
		LogFile:    env.Config.LogFile,
	})
}
