// Package platform abstracts the window-system operations the dock core
// consumes: window attribute queries, monitor geometry, and window mutation
// primitives. The real implementation lives in backend_windows.go; tests use
// in-memory fakes.
package platform

import "github.com/1broseidon/ledge/internal/geometry"

// WindowID is a top-level window handle.
type WindowID uintptr

// MonitorID identifies a physical monitor.
type MonitorID uintptr

// ExStyle is a window's extended style bit set.
type ExStyle uint32

// Extended style flags relevant to dock admission.
const (
	ExToolWindow ExStyle = 0x00000080
	ExAppWindow  ExStyle = 0x00040000
	ExNoActivate ExStyle = 0x08000000
)

// Has reports whether all bits of flag are set.
func (s ExStyle) Has(flag ExStyle) bool {
	return s&flag == flag
}

// ShowCmd selects the show state passed to ShowWindow.
type ShowCmd int32

const (
	ShowHide       ShowCmd = 0
	ShowNormal     ShowCmd = 1
	ShowNoActivate ShowCmd = 4
)

// Backend abstracts window-system operations.
//
// FrameCreator resolves the genuine top-level owner behind a lightweight
// host frame (packaged-app hosts). It returns ok=false with a nil error when
// the host frame explicitly has no creator; callers treat a non-nil error as
// "treat the window as its own creator".
type Backend interface {
	// Queries.
	Exists(id WindowID) bool
	IsVisible(id WindowID) bool
	Owner(id WindowID) (WindowID, bool)
	Title(id WindowID) string
	ClassName(id WindowID) (string, error)
	ExecutablePath(id WindowID) (string, error)
	ExtendedStyle(id WindowID) ExStyle
	FrameCreator(id WindowID) (WindowID, bool, error)
	IsPackagedSuspended(id WindowID) (bool, error)
	// FrameRect returns the window rectangle with any drop-shadow border
	// trimmed.
	FrameRect(id WindowID) (geometry.Rect, error)
	Foreground() WindowID

	// Enumeration. visit returns false to stop early.
	EnumTopLevel(visit func(WindowID) bool) error

	// Monitors.
	MonitorFromWindow(id WindowID) MonitorID
	WorkArea(m MonitorID) (geometry.Rect, error)
	PixelScale(m MonitorID) (float64, error)

	// Mutation.
	MoveWindow(id WindowID, r geometry.Rect) error
	SetPosition(id WindowID, r geometry.Rect) error
	ShowWindow(id WindowID, cmd ShowCmd) error
	ShowWindowAsync(id WindowID, cmd ShowCmd) error
}
