// Package main defines the CLI structure using kong.
package main

import (
	"time"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Config   string `short:"c" help:"Config file path (.toml, .yaml)"`
	LogLevel string `help:"Log level: debug, info, warn, error (overrides config)"`
	Raw      bool   `help:"Print entries raw: index, kind and markup"`
	Width    int    `help:"Wrap output at this width (overrides config)"`

	Repl    ReplCmd    `cmd:"" default:"1" help:"Start an interactive console"`
	Run     RunCmd     `cmd:"" help:"Evaluate a script file"`
	Watch   WatchCmd   `cmd:"" help:"Evaluate a script file again whenever it changes"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// ReplCmd starts an interactive console.
type ReplCmd struct {
	Name string `default:"repl" help:"Session name"`
}

// RunCmd evaluates a script file once.
type RunCmd struct {
	File string `arg:"" type:"existingfile" help:"Script file"`
}

// WatchCmd evaluates a script file on every change.
type WatchCmd struct {
	File     string        `arg:"" type:"existingfile" help:"Script file"`
	Debounce time.Duration `default:"100ms" help:"Wait for writes to settle"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
