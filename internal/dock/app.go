// Package dock implements the taskbar-replacement core: it tracks open
// application windows, computes and enforces the screen-edge region the dock
// reserves from the shell, drives auto-hide when the foreground window
// overlaps that region, and suppresses the native taskbar while the dock is
// active.
package dock

import "github.com/1broseidon/ledge/internal/platform"

// Event names delivered to the UI layer.
const (
	EventAddOpenApp           = "add-open-app"
	EventUpdateOpenAppInfo    = "update-open-app-info"
	EventRemoveOpenApp        = "remove-open-app"
	EventAddMultipleOpenApps  = "add-multiple-open-apps"
	EventSetFocusedHandle     = "set-focused-handle"
	EventSetFocusedExecutable = "set-focused-executable"
	EventSetAutoHide          = "set-auto-hide"
)

// App is a tracked top-level application window as surfaced to the UI layer.
type App struct {
	Handle platform.WindowID `json:"hwnd"`
	Exe    string            `json:"exe"`
	Title  string            `json:"title"`
	Icon   string            `json:"icon_path"`
	// ExecutionPath is the path handed to the shell when launching the app:
	// the packaged-app launch path when the executable is packaged, the raw
	// executable path otherwise.
	ExecutionPath string `json:"execution_path"`
	// CreatorHandle is the genuine top-level owner when Handle is a
	// lightweight host frame.
	CreatorHandle platform.WindowID `json:"creator_hwnd"`
}

// Notifier delivers events to the UI layer. Emit returns delivery errors so
// each call site can choose to propagate or log.
type Notifier interface {
	Emit(event string, payload any) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(event string, payload any) error

func (f NotifierFunc) Emit(event string, payload any) error {
	return f(event, payload)
}
