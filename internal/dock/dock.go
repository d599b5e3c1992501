package dock

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/ledge/internal/appbar"
	"github.com/1broseidon/ledge/internal/config"
	"github.com/1broseidon/ledge/internal/icons"
	"github.com/1broseidon/ledge/internal/platform"
	"github.com/1broseidon/ledge/internal/uwp"
)

// Options configures a Dock instance.
type Options struct {
	// Surface is the dock's own window, created and rendered by the UI
	// layer. Zero disables placement, reservation, and overlap handling.
	Surface  platform.WindowID
	Backend  platform.Backend
	Bar      appbar.Client
	Notifier Notifier
	Icons    icons.Resolver
	Launcher uwp.Resolver
	Config   *config.Config
	// Enabled is polled by the taskbar suppression loop.
	Enabled func() bool
	Logger  *slog.Logger
}

// Dock owns all per-instance state: the tracked-window registry, the current
// geometry, overlap tracking, and taskbar suppression. Construction and
// teardown are tied to the dock's lifecycle; there is no package-level
// state.
type Dock struct {
	surface    platform.WindowID
	backend    platform.Backend
	bar        appbar.Client
	notifier   Notifier
	logger     *slog.Logger
	positioner *Positioner
	registry   *Registry
	overlap    *OverlapTracker
	suppressor *TaskbarSuppressor

	hidden   bool
	geometry Geometry
}

// New wires a dock instance from its collaborators.
func New(opts Options) (*Dock, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("dock: backend is required")
	}
	if opts.Bar == nil {
		return nil, fmt.Errorf("dock: appbar client is required")
	}
	if opts.Notifier == nil {
		return nil, fmt.Errorf("dock: notifier is required")
	}
	if opts.Icons == nil {
		return nil, fmt.Errorf("dock: icon resolver is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("dock: config is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Surface != 0 && !opts.Backend.Exists(opts.Surface) {
		return nil, fmt.Errorf("dock: surface window %#x does not exist", uintptr(opts.Surface))
	}

	d := &Dock{
		surface:    opts.Surface,
		backend:    opts.Backend,
		bar:        opts.Bar,
		notifier:   opts.Notifier,
		logger:     opts.Logger,
		positioner: NewPositioner(opts.Config),
	}

	isSurface := d.IsSurface
	d.registry = NewRegistry(opts.Backend, opts.Icons, opts.Launcher, opts.Notifier, opts.Logger)
	d.overlap = NewOverlapTracker(opts.Backend, opts.Notifier, isSurface, opts.Config, opts.Logger)
	d.suppressor = NewTaskbarSuppressor(opts.Backend, opts.Bar, opts.Enabled, opts.Logger)

	return d, nil
}

// Registry returns the tracked-window registry.
func (d *Dock) Registry() *Registry { return d.registry }

// Overlap returns the overlap tracker.
func (d *Dock) Overlap() *OverlapTracker { return d.overlap }

// Suppressor returns the native-taskbar suppressor.
func (d *Dock) Suppressor() *TaskbarSuppressor { return d.suppressor }

// Geometry returns the current dock geometry.
func (d *Dock) Geometry() Geometry { return d.geometry }

// Hidden reports whether the dock surface is currently OS-hidden.
func (d *Dock) Hidden() bool { return d.hidden }

// IsSurface reports whether a window is the dock's own surface.
func (d *Dock) IsSurface(id platform.WindowID) bool {
	return d.surface != 0 && id == d.surface
}

// SetActiveWindow publishes the focused window and its executable to the UI
// layer. The executable falls back to empty on resolution failure.
func (d *Dock) SetActiveWindow(id platform.WindowID) error {
	if err := d.notifier.Emit(EventSetFocusedHandle, id); err != nil {
		return err
	}
	exe, err := d.backend.ExecutablePath(id)
	if err != nil {
		exe = ""
	}
	return d.notifier.Emit(EventSetFocusedExecutable, exe)
}

// HandleForeground processes a foreground-window change: publishes focus and
// re-evaluates overlap against the reserved rectangle.
func (d *Dock) HandleForeground(id platform.WindowID) {
	if err := d.SetActiveWindow(id); err != nil {
		d.logger.Warn("failed to emit focus change", "hwnd", id, "error", err)
	}
	d.EvaluateOverlap(id)
}

// EvaluateOverlap re-evaluates overlap against the reserved rectangle. No-op
// without a surface: there is nothing to auto-hide.
func (d *Dock) EvaluateOverlap(id platform.WindowID) {
	if d.surface != 0 {
		d.overlap.Evaluate(id)
	}
}

// Show makes the dock surface visible without activating it.
func (d *Dock) Show() error {
	if d.surface == 0 {
		return nil
	}
	if err := d.backend.ShowWindowAsync(d.surface, platform.ShowNoActivate); err != nil {
		return err
	}
	d.hidden = false
	return nil
}

// Hide removes the dock surface from screen without destroying it.
func (d *Dock) Hide() error {
	if d.surface == 0 {
		return nil
	}
	if err := d.backend.ShowWindowAsync(d.surface, platform.ShowHide); err != nil {
		return err
	}
	d.hidden = true
	return nil
}

// Reposition recomputes geometry for the monitor and re-registers the shell
// reservation. The surface is then moved to the full work-area bounds and
// positioned once more against them: the first call forces the OS to
// recompute DPI-dependent resources before any later show/hide cycle
// repositions the surface.
func (d *Dock) Reposition(monitor platform.MonitorID) error {
	if d.surface == 0 {
		return fmt.Errorf("dock: no surface to position")
	}

	workArea, err := d.backend.WorkArea(monitor)
	if err != nil {
		return fmt.Errorf("dock: work area: %w", err)
	}
	scale, err := d.backend.PixelScale(monitor)
	if err != nil {
		return fmt.Errorf("dock: pixel scale: %w", err)
	}

	geom := d.positioner.Compute(workArea, scale)
	if err := d.bar.Register(d.surface, geom.Edge(), geom.ReservationRect()); err != nil {
		return fmt.Errorf("dock: register reservation: %w", err)
	}

	d.geometry = geom
	d.overlap.SetReservedRect(geom.Theoretical)

	if err := d.backend.MoveWindow(d.surface, workArea); err != nil {
		return fmt.Errorf("dock: move surface: %w", err)
	}
	if err := d.backend.SetPosition(d.surface, workArea); err != nil {
		return fmt.Errorf("dock: position surface: %w", err)
	}
	return nil
}

// EmitAllOpenApps replies to a bulk-list request with the full registry in
// insertion order.
func (d *Dock) EmitAllOpenApps() error {
	return d.notifier.Emit(EventAddMultipleOpenApps, d.registry.Snapshot())
}

// Close tears the dock down: the shell reservation is removed and the
// native taskbars are restored.
func (d *Dock) Close() error {
	var firstErr error
	if d.surface != 0 {
		if err := d.bar.Remove(d.surface); err != nil {
			firstErr = err
		}
	}
	if err := d.suppressor.Restore(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
