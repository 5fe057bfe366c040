package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vinayprograms/scriptconsole/internal/logging"
)

// Run evaluates the file, then again in a fresh realm after every change,
// until interrupted.
func (c *WatchCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	cfg.Console.Origin = filepath.Base(c.File)

	a, err := newApp(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.watch(ctx, c.File, c.Debounce)
}

func (a *app) watch(ctx context.Context, path string, debounce time.Duration) error {
	sess, async, err := a.startAsyncSession(filepath.Base(path))
	if err != nil {
		return err
	}
	defer async.Close()

	evaluate := func() {
		source, err := os.ReadFile(path)
		if err != nil {
			a.logger.Warn("failed to read script", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			return
		}
		sess.Evaluate(ctx, string(source))
	}

	evaluate()
	return watchFile(ctx, path, debounce, a.logger, func() {
		if err := sess.Reset(); err != nil {
			a.logger.Error("failed to reset session", map[string]interface{}{"error": err.Error()})
			return
		}
		evaluate()
	})
}

// watchFile calls onChange after path is written or recreated, once the
// writes have settled for debounce. The parent directory is watched so
// editors that replace the file are followed.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *logging.Logger, onChange func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch file: %w", err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", map[string]interface{}{"error": err.Error()})
		case <-timer.C:
			onChange()
		}
	}
}
