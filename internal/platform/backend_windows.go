//go:build windows

package platform

import (
	"fmt"
	"runtime/cgo"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/ledge/internal/geometry"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	dwmapi = windows.NewLazySystemDLL("dwmapi.dll")
	shcore = windows.NewLazySystemDLL("shcore.dll")

	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindow                = user32.NewProc("GetWindow")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procGetWindowLongPtrW        = user32.NewProc("GetWindowLongPtrW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procEnumChildWindows         = user32.NewProc("EnumChildWindows")
	procMonitorFromWindow        = user32.NewProc("MonitorFromWindow")
	procGetMonitorInfoW          = user32.NewProc("GetMonitorInfoW")
	procMoveWindow               = user32.NewProc("MoveWindow")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procShowWindow               = user32.NewProc("ShowWindow")
	procShowWindowAsync          = user32.NewProc("ShowWindowAsync")

	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")
	procGetDpiForMonitor      = shcore.NewProc("GetDpiForMonitor")
)

const (
	gwOwner = 4

	gwlExStyle = ^uintptr(19) // -20 as two's complement

	dwmwaCloaked             = 14
	dwmwaExtendedFrameBounds = 9

	mdtEffectiveDPI = 0

	monitorDefaultToNearest = 2

	swpNoActivate = 0x0010
	swpNoZOrder   = 0x0004
)

// frameHostClass is the lightweight host frame wrapping packaged-app windows.
const frameHostClass = "ApplicationFrameWindow"

const coreWindowClass = "Windows.UI.Core.CoreWindow"

// WindowsBackend implements Backend on the Win32 API.
type WindowsBackend struct{}

// NewBackend returns the Win32 backend.
func NewBackend() *WindowsBackend {
	return &WindowsBackend{}
}

func (b *WindowsBackend) Exists(id WindowID) bool {
	r, _, _ := procIsWindow.Call(uintptr(id))
	return r != 0
}

func (b *WindowsBackend) IsVisible(id WindowID) bool {
	r, _, _ := procIsWindowVisible.Call(uintptr(id))
	return r != 0
}

func (b *WindowsBackend) Owner(id WindowID) (WindowID, bool) {
	r, _, _ := procGetWindow.Call(uintptr(id), gwOwner)
	if r == 0 {
		return 0, false
	}
	return WindowID(r), true
}

func (b *WindowsBackend) Title(id WindowID) string {
	var buf [512]uint16
	n, _, _ := procGetWindowTextW.Call(uintptr(id), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func (b *WindowsBackend) ClassName(id WindowID) (string, error) {
	var buf [256]uint16
	n, _, err := procGetClassNameW.Call(uintptr(id), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return "", fmt.Errorf("GetClassName(%#x): %w", uintptr(id), err)
	}
	return windows.UTF16ToString(buf[:n]), nil
}

func (b *WindowsBackend) ExecutablePath(id WindowID) (string, error) {
	var pid uint32
	procGetWindowThreadProcessId.Call(uintptr(id), uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return "", fmt.Errorf("no process for window %#x", uintptr(id))
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", fmt.Errorf("OpenProcess(%d): %w", pid, err)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_LONG_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", fmt.Errorf("QueryFullProcessImageName(%d): %w", pid, err)
	}
	return windows.UTF16ToString(buf[:size]), nil
}

func (b *WindowsBackend) ExtendedStyle(id WindowID) ExStyle {
	r, _, _ := procGetWindowLongPtrW.Call(uintptr(id), gwlExStyle)
	return ExStyle(uint32(r))
}

// FrameCreator resolves the packaged-app core window hosted by an
// ApplicationFrameWindow. Ordinary windows are their own creator.
func (b *WindowsBackend) FrameCreator(id WindowID) (WindowID, bool, error) {
	class, err := b.ClassName(id)
	if err != nil {
		return 0, false, err
	}
	if class != frameHostClass {
		return id, true, nil
	}

	var hostPID uint32
	procGetWindowThreadProcessId.Call(uintptr(id), uintptr(unsafe.Pointer(&hostPID)))

	var creator WindowID
	visit := func(child WindowID) bool {
		childClass, err := b.ClassName(child)
		if err != nil || childClass != coreWindowClass {
			return true
		}
		var childPID uint32
		procGetWindowThreadProcessId.Call(uintptr(child), uintptr(unsafe.Pointer(&childPID)))
		if childPID != 0 && childPID != hostPID {
			creator = child
			return false
		}
		return true
	}

	h := cgo.NewHandle(visit)
	defer h.Delete()
	procEnumChildWindows.Call(uintptr(id), enumVisitCallback, uintptr(h))

	if creator == 0 {
		return 0, false, nil
	}
	return creator, true, nil
}

// IsPackagedSuspended reports whether a packaged-app host frame is cloaked,
// which is the observable state of a suspended packaged application.
func (b *WindowsBackend) IsPackagedSuspended(id WindowID) (bool, error) {
	class, err := b.ClassName(id)
	if err != nil {
		return false, err
	}
	if class != frameHostClass {
		return false, nil
	}

	var cloaked uint32
	hr, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(id),
		dwmwaCloaked,
		uintptr(unsafe.Pointer(&cloaked)),
		unsafe.Sizeof(cloaked),
	)
	if hr != 0 {
		return false, fmt.Errorf("DwmGetWindowAttribute(cloaked, %#x): hresult %#x", uintptr(id), hr)
	}
	return cloaked != 0, nil
}

func (b *WindowsBackend) FrameRect(id WindowID) (geometry.Rect, error) {
	var r geometry.Rect
	hr, _, _ := procDwmGetWindowAttribute.Call(
		uintptr(id),
		dwmwaExtendedFrameBounds,
		uintptr(unsafe.Pointer(&r)),
		unsafe.Sizeof(r),
	)
	if hr != 0 {
		return geometry.Rect{}, fmt.Errorf("DwmGetWindowAttribute(bounds, %#x): hresult %#x", uintptr(id), hr)
	}
	return r, nil
}

func (b *WindowsBackend) Foreground() WindowID {
	r, _, _ := procGetForegroundWindow.Call()
	return WindowID(r)
}

// enumVisitCallback adapts the Win32 enumeration signature to a Go visit
// function threaded through an opaque cgo.Handle, so no state lives in
// package globals.
var enumVisitCallback = syscall.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
	visit := cgo.Handle(lparam).Value().(func(WindowID) bool)
	if visit(WindowID(hwnd)) {
		return 1
	}
	return 0
})

func (b *WindowsBackend) EnumTopLevel(visit func(WindowID) bool) error {
	h := cgo.NewHandle(visit)
	defer h.Delete()

	r, _, err := procEnumWindows.Call(enumVisitCallback, uintptr(h))
	if r == 0 {
		// EnumWindows reports failure when the callback stops early; only
		// surface real errors.
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return fmt.Errorf("EnumWindows: %w", err)
		}
	}
	return nil
}

func (b *WindowsBackend) MonitorFromWindow(id WindowID) MonitorID {
	r, _, _ := procMonitorFromWindow.Call(uintptr(id), monitorDefaultToNearest)
	return MonitorID(r)
}

type monitorInfo struct {
	Size    uint32
	Monitor geometry.Rect
	Work    geometry.Rect
	Flags   uint32
}

func (b *WindowsBackend) WorkArea(m MonitorID) (geometry.Rect, error) {
	mi := monitorInfo{Size: uint32(unsafe.Sizeof(monitorInfo{}))}
	r, _, err := procGetMonitorInfoW.Call(uintptr(m), uintptr(unsafe.Pointer(&mi)))
	if r == 0 {
		return geometry.Rect{}, fmt.Errorf("GetMonitorInfo(%#x): %w", uintptr(m), err)
	}
	return mi.Work, nil
}

func (b *WindowsBackend) PixelScale(m MonitorID) (float64, error) {
	var dpiX, dpiY uint32
	hr, _, _ := procGetDpiForMonitor.Call(
		uintptr(m),
		mdtEffectiveDPI,
		uintptr(unsafe.Pointer(&dpiX)),
		uintptr(unsafe.Pointer(&dpiY)),
	)
	if hr != 0 {
		return 0, fmt.Errorf("GetDpiForMonitor(%#x): hresult %#x", uintptr(m), hr)
	}
	return float64(dpiX) / 96.0, nil
}

func (b *WindowsBackend) MoveWindow(id WindowID, r geometry.Rect) error {
	ret, _, err := procMoveWindow.Call(
		uintptr(id),
		uintptr(r.Left), uintptr(r.Top),
		uintptr(r.Width()), uintptr(r.Height()),
		1, // repaint
	)
	if ret == 0 {
		return fmt.Errorf("MoveWindow(%#x): %w", uintptr(id), err)
	}
	return nil
}

func (b *WindowsBackend) SetPosition(id WindowID, r geometry.Rect) error {
	ret, _, err := procSetWindowPos.Call(
		uintptr(id),
		0,
		uintptr(r.Left), uintptr(r.Top),
		uintptr(r.Width()), uintptr(r.Height()),
		swpNoActivate|swpNoZOrder,
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos(%#x): %w", uintptr(id), err)
	}
	return nil
}

func (b *WindowsBackend) ShowWindow(id WindowID, cmd ShowCmd) error {
	// ShowWindow's return value reports the previous visibility state, not
	// failure.
	procShowWindow.Call(uintptr(id), uintptr(cmd))
	return nil
}

func (b *WindowsBackend) ShowWindowAsync(id WindowID, cmd ShowCmd) error {
	ret, _, err := procShowWindowAsync.Call(uintptr(id), uintptr(cmd))
	if ret == 0 {
		return fmt.Errorf("ShowWindowAsync(%#x): %w", uintptr(id), err)
	}
	return nil
}
