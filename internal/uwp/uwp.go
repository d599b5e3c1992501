// Package uwp resolves user-facing launch paths for packaged (store)
// applications. Full AUMID resolution is owned by an external component; the
// dock core only needs to know whether an executable is packaged and what
// path to hand the shell when launching it.
package uwp

import "strings"

// packagedRoot is the protected directory packaged applications install
// under. Executables below it cannot be launched by raw path.
const packagedRoot = `C:\Program Files\WindowsApps`

// Resolver maps a packaged executable onto its shell launch path.
type Resolver interface {
	// LaunchPath returns the launch path for exePath and whether a mapping
	// was found. Callers use the raw executable path when none is found.
	LaunchPath(exePath string) (string, bool)
}

// IsPackaged reports whether the executable installs under the packaged-app
// root.
func IsPackaged(exePath string) bool {
	return strings.HasPrefix(strings.ToLower(exePath), strings.ToLower(packagedRoot))
}

// TableResolver resolves launch paths from a pre-built table keyed by
// lowercased executable path, populated by the external package indexer.
type TableResolver struct {
	paths map[string]string
}

// NewTableResolver builds a resolver over the given exe→launch-path table.
func NewTableResolver(paths map[string]string) *TableResolver {
	normalized := make(map[string]string, len(paths))
	for exe, launch := range paths {
		normalized[strings.ToLower(exe)] = launch
	}
	return &TableResolver{paths: normalized}
}

func (r *TableResolver) LaunchPath(exePath string) (string, bool) {
	launch, ok := r.paths[strings.ToLower(exePath)]
	return launch, ok
}
