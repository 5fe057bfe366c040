package console

import (
	"fmt"
	"reflect"

	"github.com/vinayprograms/scriptconsole/internal/script"
)

// NewRealm creates a script realm wired to the engine and attaches it.
// The console API is importable as "console" and script output becomes
// log entries.
func (e *Engine) NewRealm(opts script.Options) (*script.Realm, error) {
	modules := make(map[string]map[string]reflect.Value, len(opts.Modules)+1)
	for path, symbols := range opts.Modules {
		modules[path] = symbols
	}
	modules[PackageName] = e.binding.Symbols()
	opts.Modules = modules
	opts.Stdout = e.stdout
	opts.Stderr = e.stderr

	realm, err := script.NewRealm(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create realm: %w", err)
	}
	// Prelude output belongs before any evaluation.
	e.stdout.Flush()
	e.Attach(realm)
	e.logger.Debug("realm attached", map[string]interface{}{
		"packages": len(opts.Packages),
		"modules":  len(modules),
	})
	return realm, nil
}
