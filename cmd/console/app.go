package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vinayprograms/scriptconsole/internal/config"
	"github.com/vinayprograms/scriptconsole/internal/console"
	"github.com/vinayprograms/scriptconsole/internal/display"
	"github.com/vinayprograms/scriptconsole/internal/logging"
	"github.com/vinayprograms/scriptconsole/internal/script"
	"github.com/vinayprograms/scriptconsole/internal/session"
	"github.com/vinayprograms/scriptconsole/internal/telemetry"
)

// app holds what every command needs: config, logger and a session
// manager whose sessions print to out.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	sessions *session.Manager
	out      io.Writer

	logFile  *os.File
	shutdown telemetry.Shutdown
}

// loadConfig reads the config file, then applies the environment and the
// global flags on top.
func loadConfig(cli *CLI) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cli.Config != "" {
		cfg, err = config.LoadFile(cli.Config)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Raw {
		cfg.Display.Mode = config.DisplayRaw
	}
	if cli.Width != 0 {
		cfg.Display.Width = cli.Width
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	a := &app{cfg: cfg, out: out}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	opts := logging.Options{Level: level, Format: cfg.Logging.Format}
	if cfg.Logging.Output != "" {
		f, err := os.OpenFile(cfg.Logging.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		opts.Output = f
	}
	a.logger = logging.NewWithOptions(opts)

	a.shutdown, err = telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		a.closeLog()
		return nil, err
	}

	a.sessions = session.NewManager(session.Options{
		Console: console.Options{
			Origin:   cfg.Console.Origin,
			MaxBatch: cfg.Console.MaxBatch,
		},
		Script: script.Options{
			Packages: cfg.Script.Packages,
			Prelude:  cfg.Script.Prelude,
		},
		Logger: a.logger,
	})
	return a, nil
}

// terminal creates the display surface for a session.
func (a *app) terminal() *display.Terminal {
	return display.NewTerminal(a.out, display.Options{
		Mode:   a.cfg.Display.Mode,
		Color:  a.cfg.Display.Color,
		Width:  a.cfg.Display.Width,
		Logger: a.logger,
	})
}

// startSession creates a session shown on a terminal. The terminal is
// driven synchronously so output is complete when an evaluation returns.
func (a *app) startSession(name string) (*session.Session, *display.Terminal, error) {
	term := a.terminal()
	sess, err := a.sessions.Create(name, term)
	if err != nil {
		return nil, nil, err
	}
	term.Attach(sess.Engine())
	return sess, term, nil
}

// startAsyncSession is startSession for callers evaluating off the main
// goroutine. The returned Async must be closed after the session ends.
func (a *app) startAsyncSession(name string) (*session.Session, *display.Async, error) {
	term := a.terminal()
	async := display.NewAsync(term, a.cfg.Display.Buffer)
	sess, err := a.sessions.Create(name, async)
	if err != nil {
		async.Close()
		return nil, nil, err
	}
	term.Attach(sess.Engine())
	return sess, async, nil
}

// Close ends all sessions and flushes telemetry and logs.
func (a *app) Close() {
	a.sessions.Close()
	if a.shutdown != nil {
		if err := a.shutdown(context.Background()); err != nil {
			a.logger.Warn("telemetry shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.logger.Sync()
	a.closeLog()
}

func (a *app) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
