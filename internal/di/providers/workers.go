package providers

import (
	"context"
	"errors"
	"time"

	"github.com/samber/do/v2"

	"github.com/promptstashapp/promptstash-server/internal/config"
	"github.com/promptstashapp/promptstash-server/internal/logger"
)

// SessionCleanupJob runs periodic session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup
		if count, err := storeHandle.DeleteExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := storeHandle.DeleteExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// LevelWatcherHandle wraps the log level watcher with shutdown capability.
type LevelWatcherHandle struct {
	watcher *config.LevelWatcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *LevelWatcherHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	return nil
}

// ProvideLevelWatcher provides the runtime log level watcher. When no watch
// path is configured the handle is inert.
func ProvideLevelWatcher(i do.Injector) (*LevelWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Logger.WatchPath == "" {
		return &LevelWatcherHandle{}, nil
	}

	lw, err := config.NewLevelWatcher(cfg.Logger.WatchPath, log)
	if err != nil {
		// Non-fatal: the server runs fine without live level changes.
		log.Warn("Log level watcher unavailable", "path", cfg.Logger.WatchPath, "error", err)
		return &LevelWatcherHandle{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := lw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("Log level watcher stopped", "error", err)
		}
	}()

	log.Info("Watching log level", "path", cfg.Logger.WatchPath)

	return &LevelWatcherHandle{watcher: lw, cancel: cancel}, nil
}
