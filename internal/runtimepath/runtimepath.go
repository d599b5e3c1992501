// Package runtimepath resolves the per-user runtime and cache locations used
// by the daemon: the IPC socket and the icon cache.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) LEDGE_RUNTIME_DIR (if set)
// 2) os.UserCacheDir()/ledge
// 3) os.TempDir()/ledge-runtime (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("LEDGE_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if cacheDir, err := os.UserCacheDir(); err == nil {
		dir := filepath.Join(cacheDir, "ledge")
		if err := os.MkdirAll(dir, 0700); err == nil {
			return dir, nil
		}
	}

	tmpDir := filepath.Join(os.TempDir(), "ledge-runtime")
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "ledge.sock"), nil
}

// IconCacheDir returns the directory holding extracted application icons.
func IconCacheDir() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(runtimeDir, "icons")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create icon cache dir: %w", err)
	}
	return dir, nil
}
