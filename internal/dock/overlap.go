package dock

import (
	"log/slog"
	"strings"

	"github.com/1broseidon/ledge/internal/config"
	"github.com/1broseidon/ledge/internal/geometry"
	"github.com/1broseidon/ledge/internal/platform"
)

// Default foreground windows that never drive auto-hide: transient shell
// surfaces that briefly take focus while floating over everything.
var (
	defaultOverlapExcludedTitles = []string{"", "Task Switching", "Task View"}
	defaultOverlapExcludedExes   = []string{"searchhost.exe", "startmenuexperiencehost.exe"}
)

// OverlapTracker compares the foreground window's rectangle against the
// dock's reserved rectangle and emits edge-triggered auto-hide toggles.
type OverlapTracker struct {
	backend       platform.Backend
	notifier      Notifier
	isDockSurface func(platform.WindowID) bool
	logger        *slog.Logger

	excludedTitles map[string]struct{}
	excludedExes   map[string]struct{}

	overlapped bool
	reserved   geometry.Rect
}

// NewOverlapTracker builds a tracker. Extra exclusions from configuration
// are merged with the defaults.
func NewOverlapTracker(backend platform.Backend, notifier Notifier, isDockSurface func(platform.WindowID) bool, cfg *config.Config, logger *slog.Logger) *OverlapTracker {
	if isDockSurface == nil {
		isDockSurface = func(platform.WindowID) bool { return false }
	}

	titles := make(map[string]struct{})
	for _, t := range defaultOverlapExcludedTitles {
		titles[t] = struct{}{}
	}
	exes := make(map[string]struct{})
	for _, e := range defaultOverlapExcludedExes {
		exes[strings.ToLower(e)] = struct{}{}
	}
	if cfg != nil {
		for _, t := range cfg.OverlapExcludedTitles {
			titles[t] = struct{}{}
		}
		for _, e := range cfg.OverlapExcludedExes {
			exes[strings.ToLower(e)] = struct{}{}
		}
	}

	return &OverlapTracker{
		backend:        backend,
		notifier:       notifier,
		isDockSurface:  isDockSurface,
		logger:         logger,
		excludedTitles: titles,
		excludedExes:   exes,
	}
}

// SetReservedRect installs the rectangle overlap is evaluated against.
func (t *OverlapTracker) SetReservedRect(r geometry.Rect) {
	t.reserved = r
}

// ReservedRect returns the rectangle currently in effect.
func (t *OverlapTracker) ReservedRect() geometry.Rect {
	return t.reserved
}

// Overlapped reports the current overlap state.
func (t *OverlapTracker) Overlapped() bool {
	return t.overlapped
}

// Evaluate recomputes the overlap state against the foreground window.
// Excluded and invisible windows retain the prior state. A notification is
// emitted only on state change; downstream consumers treat each one as an
// edge trigger, so suppressing no-op emissions is a correctness requirement.
func (t *OverlapTracker) Evaluate(fg platform.WindowID) {
	if t.isDockSurface(fg) || !t.backend.IsVisible(fg) {
		return
	}
	if _, excluded := t.excludedTitles[t.backend.Title(fg)]; excluded {
		return
	}
	if exe, err := t.backend.ExecutablePath(fg); err == nil {
		base := strings.ToLower(config.ExeBaseName(exe))
		if _, excluded := t.excludedExes[base]; excluded {
			return
		}
	}

	rect, err := t.backend.FrameRect(fg)
	if err != nil {
		t.logger.Debug("failed to read foreground rect", "hwnd", fg, "error", err)
		return
	}

	overlapped := rect.Intersects(t.reserved)
	if overlapped == t.overlapped {
		return
	}
	t.overlapped = overlapped
	if err := t.notifier.Emit(EventSetAutoHide, overlapped); err != nil {
		t.logger.Warn("failed to emit set-auto-hide", "error", err)
	}
}
