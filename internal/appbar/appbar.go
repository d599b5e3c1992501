// Package appbar wraps the shell's desktop-toolbar reservation protocol: a
// window claims a rectangle along one screen edge, which the shell then
// subtracts from the work area reported to ordinary application windows.
package appbar

import (
	"fmt"

	"github.com/1broseidon/ledge/internal/geometry"
	"github.com/1broseidon/ledge/internal/platform"
)

// Edge is the screen edge a reservation is attached to.
type Edge uint32

const (
	EdgeLeft   Edge = 0
	EdgeTop    Edge = 1
	EdgeRight  Edge = 2
	EdgeBottom Edge = 3
)

// State is the shell's classification of an appbar window.
type State uint32

const (
	StateNormal      State = 0x0
	StateAutoHide    State = 0x1
	StateAlwaysOnTop State = 0x2
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateAutoHide:
		return "auto-hide"
	case StateAlwaysOnTop:
		return "always-on-top"
	default:
		return fmt.Sprintf("state(%#x)", uint32(s))
	}
}

// Client talks the reservation protocol for one or more windows.
//
// Register is an idempotent upsert: the first call for a window creates the
// reservation, later calls update its edge and rectangle. After a successful
// Register, other windows querying the monitor's work area are not laid out
// over the reserved rectangle.
type Client interface {
	Register(w platform.WindowID, edge Edge, rect geometry.Rect) error
	SetState(w platform.WindowID, s State) error
	State(w platform.WindowID) (State, error)
	Remove(w platform.WindowID) error
}
