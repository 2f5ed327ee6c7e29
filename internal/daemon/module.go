// Package daemon composes the sync daemon: profile lock, store, client
// factory and runner, wired through fx. The daemon is one-shot: it runs
// every enabled sync job to completion and shuts the app down.
package daemon

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/nkarpov/telesync/internal/bus"
	"github.com/nkarpov/telesync/internal/config"
	"github.com/nkarpov/telesync/internal/lock"
	"github.com/nkarpov/telesync/internal/logging"
	"github.com/nkarpov/telesync/internal/profile"
	"github.com/nkarpov/telesync/internal/store"
	intsync "github.com/nkarpov/telesync/internal/sync"
	"github.com/nkarpov/telesync/internal/tg"
	"github.com/nkarpov/telesync/internal/tgclient"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile string
}

// Module returns the fx module for the daemon, composing all providers and
// lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideFactory,
			provideRunner,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig() (*config.Config, error) {
	return config.LoadOrDefault(profile.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideFactory(p Params, cfg *config.Config, logger *zap.Logger) tg.Factory {
	return tgclient.NewFactory(cfg.APIID, cfg.APIHash, p.Profile, logger)
}

func provideRunner(db *store.DB, factory tg.Factory, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *intsync.Runner {
	return intsync.NewRunner(db, factory, b, cfg.Pacing, logger)
}

func registerLifecycle(lc fx.Lifecycle, sh fx.Shutdowner, runner *intsync.Runner, lk *lock.Lock, db *store.DB, b *bus.Bus, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Mirror job lifecycle events into the log so a headless run
			// leaves a usable trace.
			events, unsub := b.Subscribe("job.", 64)
			done := make(chan struct{})
			go func() {
				for {
					select {
					case evt := <-events:
						if snap, ok := evt.Payload.(intsync.Snapshot); ok {
							logger.Info("job event",
								zap.String("kind", snap.Kind.String()),
								zap.String("status", snap.Status.String()),
								zap.Int("current", snap.Current),
								zap.Int("total", snap.Total),
							)
						}
					case <-done:
						return
					}
				}
			}()

			go func() {
				defer close(done)
				defer unsub()
				summary, err := runner.Run(context.Background())
				if err != nil {
					logger.Error("run aborted", zap.Error(err))
					_ = sh.Shutdown(fx.ExitCode(1))
					return
				}
				if summary.Failed() {
					_ = sh.Shutdown(fx.ExitCode(1))
					return
				}
				_ = sh.Shutdown()
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
