package dock

import (
	"strings"

	"github.com/1broseidon/ledge/internal/platform"
)

// titleBlacklist lists window titles that are never tracked.
var titleBlacklist = map[string]struct{}{
	"":                        {},
	"Task Switching":          {},
	"DesktopWindowXamlSource": {},
	"Program Manager":         {},
}

// systemAppsRoot is the protected system-package directory; windows backed
// by executables under it are shell internals, not applications.
const systemAppsRoot = `C:\Windows\SystemApps`

// AdmissionPolicy decides whether a window should be tracked by the dock.
// It is a pure predicate over queryable window attributes.
type AdmissionPolicy struct {
	backend       platform.Backend
	rules         AppRules
	isDockSurface func(platform.WindowID) bool
}

// AppRules exposes the per-application configuration consumed by admission.
type AppRules interface {
	IsAppHidden(exePath string) bool
}

// NewAdmissionPolicy builds a policy. isDockSurface reports whether a window
// is the dock's own surface; it may be nil when no surface exists.
func NewAdmissionPolicy(backend platform.Backend, rules AppRules, isDockSurface func(platform.WindowID) bool) *AdmissionPolicy {
	if isDockSurface == nil {
		isDockSurface = func(platform.WindowID) bool { return false }
	}
	return &AdmissionPolicy{
		backend:       backend,
		rules:         rules,
		isDockSurface: isDockSurface,
	}
}

// ShouldTrack evaluates the admission chain, short-circuiting on the first
// failing condition.
func (p *AdmissionPolicy) ShouldTrack(id platform.WindowID) bool {
	if !p.backend.IsVisible(id) {
		return false
	}
	if _, owned := p.backend.Owner(id); owned {
		return false
	}
	if p.isDockSurface(id) {
		return false
	}

	style := p.backend.ExtendedStyle(id)
	if (style.Has(platform.ExToolWindow) || style.Has(platform.ExNoActivate)) && !style.Has(platform.ExAppWindow) {
		return false
	}

	// A host frame that explicitly reports no creator is an empty shell; a
	// failed resolution falls back to treating the window as its own creator.
	if _, ok, err := p.backend.FrameCreator(id); err == nil && !ok {
		return false
	}

	if suspended, err := p.backend.IsPackagedSuspended(id); err == nil && suspended {
		return false
	}

	if exe, err := p.backend.ExecutablePath(id); err == nil {
		if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(systemAppsRoot)) {
			return false
		}
		if p.rules != nil && p.rules.IsAppHidden(exe) {
			return false
		}
	}

	_, blacklisted := titleBlacklist[p.backend.Title(id)]
	return !blacklisted
}
