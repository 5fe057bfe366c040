package main

import "fmt"

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Run prints version information.
func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "scriptconsole version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
