package dock

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/ledge/internal/icons"
	"github.com/1broseidon/ledge/internal/platform"
	"github.com/1broseidon/ledge/internal/uwp"
)

// Registry is the exclusive-access store of tracked windows. The mutex is
// held only across in-memory mutation; attribute resolution happens before
// it is taken.
type Registry struct {
	mu   sync.Mutex
	apps []App

	backend  platform.Backend
	icons    icons.Resolver
	launcher uwp.Resolver
	notifier Notifier
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. launcher may be nil when no
// packaged-app resolver is available.
func NewRegistry(backend platform.Backend, iconResolver icons.Resolver, launcher uwp.Resolver, notifier Notifier, logger *slog.Logger) *Registry {
	return &Registry{
		backend:  backend,
		icons:    iconResolver,
		launcher: launcher,
		notifier: notifier,
		logger:   logger,
	}
}

// Contains reports whether id is already tracked, either directly or as the
// recorded frame creator of an existing entry.
func (r *Registry) Contains(id platform.WindowID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.containsLocked(id)
}

func (r *Registry) containsLocked(id platform.WindowID) bool {
	for _, app := range r.apps {
		if app.Handle == id || app.CreatorHandle == id {
			return true
		}
	}
	return false
}

// Add tracks a new window. It is idempotent: a window already tracked by
// handle or by creator handle is left untouched. A host frame that
// explicitly reports no creator is not added at all.
func (r *Registry) Add(id platform.WindowID) {
	if r.Contains(id) {
		return
	}

	creator := id
	if resolved, ok, err := r.backend.FrameCreator(id); err == nil {
		if !ok {
			return
		}
		creator = resolved
	}

	app := App{
		Handle:        id,
		Title:         r.backend.Title(id),
		CreatorHandle: creator,
	}

	if exe, err := r.backend.ExecutablePath(creator); err == nil {
		app.Exe = exe
		app.Icon = r.resolveIcon(exe)
		app.ExecutionPath = r.resolveExecutionPath(exe)
	} else {
		app.Icon = r.icons.MissingIconPath()
	}

	r.mu.Lock()
	// Another caller may have added the window while attributes resolved.
	if r.containsLocked(id) {
		r.mu.Unlock()
		return
	}
	r.apps = append(r.apps, app)
	r.mu.Unlock()

	if err := r.notifier.Emit(EventAddOpenApp, app); err != nil {
		r.logger.Warn("failed to emit add-open-app", "hwnd", app.Handle, "error", err)
	}
}

func (r *Registry) resolveIcon(exe string) string {
	icon, err := r.icons.Resolve(exe)
	if err != nil {
		return r.icons.MissingIconPath()
	}
	return icon
}

func (r *Registry) resolveExecutionPath(exe string) string {
	if r.launcher != nil && uwp.IsPackaged(exe) {
		if launch, ok := r.launcher.LaunchPath(exe); ok {
			return launch
		}
	}
	return exe
}

// Update re-reads the live title for a tracked window and notifies the UI
// layer. No-op when the window is not tracked.
func (r *Registry) Update(id platform.WindowID) {
	title := r.backend.Title(id)

	r.mu.Lock()
	var updated *App
	for i := range r.apps {
		if r.apps[i].Handle == id {
			r.apps[i].Title = title
			patched := r.apps[i]
			updated = &patched
			break
		}
	}
	r.mu.Unlock()

	if updated == nil {
		return
	}
	if err := r.notifier.Emit(EventUpdateOpenAppInfo, *updated); err != nil {
		r.logger.Warn("failed to emit update-open-app-info", "hwnd", id, "error", err)
	}
}

// Remove deletes the tracked window with the given handle. No-op when
// absent.
func (r *Registry) Remove(id platform.WindowID) {
	r.mu.Lock()
	kept := r.apps[:0]
	removed := false
	for _, app := range r.apps {
		if app.Handle == id {
			removed = true
			continue
		}
		kept = append(kept, app)
	}
	r.apps = kept
	r.mu.Unlock()

	if !removed {
		return
	}
	if err := r.notifier.Emit(EventRemoveOpenApp, id); err != nil {
		r.logger.Warn("failed to emit remove-open-app", "hwnd", id, "error", err)
	}
}

// Snapshot returns all tracked windows in insertion order.
func (r *Registry) Snapshot() []App {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]App, len(r.apps))
	copy(out, r.apps)
	return out
}

// Len returns the number of tracked windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.apps)
}
