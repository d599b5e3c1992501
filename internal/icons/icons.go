// Package icons resolves application icon files for tracked windows. Icon
// bitmap extraction is performed by an external component that fills the
// cache directory; this package only maps executables onto cached files and
// supplies the missing-icon fallback.
package icons

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps an executable path to an icon file path.
type Resolver interface {
	// Resolve returns the icon file for exePath, or an error when no icon
	// is available. Callers fall back to MissingIconPath on error.
	Resolve(exePath string) (string, error)
	// MissingIconPath is the documented fallback icon.
	MissingIconPath() string
}

// CacheResolver resolves icons from a directory of pre-extracted PNGs keyed
// by a digest of the lowercased executable path.
type CacheResolver struct {
	cacheDir    string
	missingIcon string
}

// NewCacheResolver returns a resolver over cacheDir. The missing-icon file
// lives at cacheDir/missing.png.
func NewCacheResolver(cacheDir string) *CacheResolver {
	return &CacheResolver{
		cacheDir:    cacheDir,
		missingIcon: filepath.Join(cacheDir, "missing.png"),
	}
}

// CacheKey returns the cache file basename for an executable path.
func CacheKey(exePath string) string {
	sum := sha1.Sum([]byte(strings.ToLower(exePath)))
	return hex.EncodeToString(sum[:]) + ".png"
}

func (r *CacheResolver) Resolve(exePath string) (string, error) {
	path := filepath.Join(r.cacheDir, CacheKey(exePath))
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func (r *CacheResolver) MissingIconPath() string {
	return r.missingIcon
}
