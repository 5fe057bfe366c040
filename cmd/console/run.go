package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Run evaluates the file once in a fresh session.
func (c *RunCmd) Run(cli *CLI) error {
	ctx := context.Background()
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

	return a.runFile(ctx, c.File)
}

func (a *app) runFile(ctx context.Context, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	sess, _, err := a.startSession(filepath.Base(path))
	if err != nil {
		return err
	}
	sess.Evaluate(ctx, string(source))
	return nil
}
