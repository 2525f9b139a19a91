package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/finder/internal/config"
	"github.com/five82/finder/internal/finder"
	"github.com/five82/finder/internal/prefs"
	"github.com/five82/finder/internal/state"
	"github.com/five82/finder/internal/ui"
)

// Options configure the finder application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/finder/prefs.toml
	APIURL     string        // overrides config and environment when set
	PollEvery  time.Duration // zero uses the configured interval
}

// Env bundles what every entry point needs: settings, a logger writing to the
// log file, and a client.
type Env struct {
	Config config.Config
	Prefs  prefs.Prefs
	Logger *slog.Logger
	Client *finder.Client

	closeLog func() error
}

// Close releases the log file.
func (e *Env) Close() error {
	if e == nil || e.closeLog == nil {
		return nil
	}
	return e.closeLog()
}

// Setup loads config and prefs, opens the log file and builds the client.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logger, closeLog, err := OpenLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client, err := finder.NewClient(finder.Options{
		BaseURL:       cfg.APIURL,
		Timeout:       cfg.Timeout,
		UploadTimeout: cfg.UploadTimeout,
		Logger:        logger,
	})
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init finder client: %w", err)
	}

	return &Env{
		Config:   cfg,
		Prefs:    userPrefs,
		Logger:   logger,
		Client:   client,
		closeLog: closeLog,
	}, nil
}

// Run boots the finder TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &state.Store{}
	logger := env.Logger.With("component", "app")
	logger.Info("starting finder", "api_url", env.Client.BaseURL(), "poll_interval", env.Config.PollInterval)

	done := StartPoller(ctx, store, env.Client, env.Logger, env.Config.PollInterval)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Client:    env.Client,
		Store:     store,
		Refresh:   func(ctx context.Context) error { return Refresh(ctx, store, env.Client, env.Logger) },
		LogPath:   env.Config.LogFile,
		PollTick:  env.Config.PollInterval,
		Prefs:     env.Prefs,
		PrefsPath: opts.PrefsPath,
		APIURL:    env.Client.BaseURL(),
	})
	cancel()
	<-done
	logger.Info("finder stopped")
	return err
}
