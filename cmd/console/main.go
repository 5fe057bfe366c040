// Package main is the entry point for the script console CLI.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var (
	stdin  = os.Stdin
	stdout io.Writer = os.Stdout
)

func init() {
	// Load .env for environment overrides
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("scriptconsole"),
		kong.Description("Evaluate Go scripts in a console with structured, grouped output."),
		kong.UsageOnError(),
		kongVars(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli))
}
