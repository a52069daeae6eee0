package config

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/promptstashapp/promptstash-server/internal/logger"
)

// LevelWatcher applies LOG_LEVEL changes from a config file to a running
// logger, so switching a server into debug mode doesn't need a restart.
type LevelWatcher struct {
	path    string
	log     *logger.Logger
	watcher *fsnotify.Watcher
}

// NewLevelWatcher creates a watcher for the LOG_LEVEL line of the file at
// path. The file's directory must exist; the file itself may appear later.
func NewLevelWatcher(path string, log *logger.Logger) (*LevelWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a direct file watch.
	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &LevelWatcher{path: path, log: log, watcher: w}, nil
}

// Run blocks until the context is cancelled, applying level changes as the
// file is rewritten.
func (lw *LevelWatcher) Run(ctx context.Context) error {
	defer lw.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != lw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			lw.apply()
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return nil
			}
			lw.log.Warn("log level watcher error", "error", err)
		}
	}
}

// apply re-reads the file and sets the logger level if a LOG_LEVEL line is
// present and differs from the current level.
func (lw *LevelWatcher) apply() {
	value, err := readLogLevel(lw.path)
	if err != nil {
		lw.log.Warn("failed to re-read log level", "path", lw.path, "error", err)
		return
	}
	if value == "" {
		return
	}

	level := logger.ParseLevel(value)
	if level == lw.log.Level() {
		return
	}
	lw.log.SetLevel(level)
	lw.log.Info("log level changed", "level", value)
}

// readLogLevel extracts the LOG_LEVEL value from an env-style file.
func readLogLevel(path string) (string, error) {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found || strings.TrimSpace(key) != "LOG_LEVEL" {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`), nil
	}
	return "", scanner.Err()
}
