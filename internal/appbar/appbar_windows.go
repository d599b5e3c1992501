//go:build windows

package appbar

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/ledge/internal/geometry"
	"github.com/1broseidon/ledge/internal/platform"
)

var (
	shell32            = windows.NewLazySystemDLL("shell32.dll")
	procSHAppBarMessage = shell32.NewProc("SHAppBarMessage")
)

const (
	abmNew      = 0x0
	abmRemove   = 0x1
	abmSetPos   = 0x3
	abmGetState = 0x4
	abmSetState = 0xA
)

// appBarData mirrors the Win32 APPBARDATA layout.
type appBarData struct {
	Size            uint32
	Window          uintptr
	CallbackMessage uint32
	Edge            uint32
	Rect            geometry.Rect
	LParam          uintptr
}

// ShellClient implements Client on SHAppBarMessage. It remembers which
// windows it has registered so Register stays an upsert.
type ShellClient struct {
	mu         sync.Mutex
	registered map[platform.WindowID]struct{}
}

// NewShellClient returns a reservation client backed by the shell.
func NewShellClient() *ShellClient {
	return &ShellClient{registered: make(map[platform.WindowID]struct{})}
}

func newAppBarData(w platform.WindowID) appBarData {
	return appBarData{
		Size:   uint32(unsafe.Sizeof(appBarData{})),
		Window: uintptr(w),
	}
}

func (c *ShellClient) message(msg uintptr, abd *appBarData) uintptr {
	r, _, _ := procSHAppBarMessage.Call(msg, uintptr(unsafe.Pointer(abd)))
	return r
}

func (c *ShellClient) Register(w platform.WindowID, edge Edge, rect geometry.Rect) error {
	c.mu.Lock()
	_, known := c.registered[w]
	if !known {
		c.registered[w] = struct{}{}
	}
	c.mu.Unlock()

	abd := newAppBarData(w)
	if !known {
		if r := c.message(abmNew, &abd); r == 0 {
			c.mu.Lock()
			delete(c.registered, w)
			c.mu.Unlock()
			return fmt.Errorf("appbar: ABM_NEW failed for window %#x", uintptr(w))
		}
	}

	abd = newAppBarData(w)
	abd.Edge = uint32(edge)
	abd.Rect = rect
	// ABM_SETPOS always succeeds; the shell may adjust the rect in place.
	c.message(abmSetPos, &abd)
	return nil
}

func (c *ShellClient) SetState(w platform.WindowID, s State) error {
	abd := newAppBarData(w)
	abd.LParam = uintptr(s)
	c.message(abmSetState, &abd)
	return nil
}

func (c *ShellClient) State(w platform.WindowID) (State, error) {
	abd := newAppBarData(w)
	r := c.message(abmGetState, &abd)
	return State(uint32(r)), nil
}

func (c *ShellClient) Remove(w platform.WindowID) error {
	abd := newAppBarData(w)
	c.message(abmRemove, &abd)

	c.mu.Lock()
	delete(c.registered, w)
	c.mu.Unlock()
	return nil
}
