package dock

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/ledge/internal/appbar"
	"github.com/1broseidon/ledge/internal/platform"
)

// taskbarClasses are the window classes of the native taskbar: the primary
// bar and per-monitor secondary bars.
var taskbarClasses = map[string]struct{}{
	"Shell_TrayWnd":          {},
	"Shell_SecondaryTrayWnd": {},
}

const (
	suppressAttempts = 10
	suppressInterval = 50 * time.Millisecond
)

// TaskbarSuppressor suppresses and restores the native taskbar windows while
// the dock is active. The shell can asynchronously reassert the taskbar's
// state, so suppression is enforced by a bounded retry loop rather than a
// single write.
type TaskbarSuppressor struct {
	backend platform.Backend
	bar     appbar.Client
	enabled func() bool
	logger  *slog.Logger

	// snapshot holds each taskbar's reservation state as captured before
	// its first suppression; consulted and cleared by Restore.
	snapshotMu sync.Mutex
	snapshot   map[platform.WindowID]appbar.State

	// enumMu serializes Enumerate: the scan shares one accumulation buffer,
	// and a reentrant call would corrupt results.
	enumMu  sync.Mutex
	enumBuf []platform.WindowID
}

// NewTaskbarSuppressor builds a suppressor. enabled is polled by the
// enforcement loop each iteration; a nil func means always enabled.
func NewTaskbarSuppressor(backend platform.Backend, bar appbar.Client, enabled func() bool, logger *slog.Logger) *TaskbarSuppressor {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &TaskbarSuppressor{
		backend:  backend,
		bar:      bar,
		enabled:  enabled,
		logger:   logger,
		snapshot: make(map[platform.WindowID]appbar.State),
	}
}

// Enumerate scans all top-level windows and returns the native taskbars.
// Calls are serialized; the shared accumulation buffer is drained into the
// result and cleared before returning.
func (s *TaskbarSuppressor) Enumerate() ([]platform.WindowID, error) {
	s.enumMu.Lock()
	defer s.enumMu.Unlock()

	s.enumBuf = s.enumBuf[:0]
	err := s.backend.EnumTopLevel(func(w platform.WindowID) bool {
		class, err := s.backend.ClassName(w)
		if err != nil {
			return true
		}
		if _, ok := taskbarClasses[class]; ok {
			s.enumBuf = append(s.enumBuf, w)
		}
		return true
	})

	found := make([]platform.WindowID, len(s.enumBuf))
	copy(found, s.enumBuf)
	s.enumBuf = s.enumBuf[:0]

	if err != nil {
		return nil, fmt.Errorf("enumerate taskbars: %w", err)
	}
	return found, nil
}

// SuppressHandle supervises one suppression enforcement loop.
type SuppressHandle struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Stop requests cooperative cancellation. The loop observes it on its next
// iteration, so enforcement may continue briefly past the request.
func (h *SuppressHandle) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Done is closed when the enforcement loop has exited.
func (h *SuppressHandle) Done() <-chan struct{} {
	return h.done
}

// Suppress spawns the enforcement loop and returns immediately. For each
// enumerable native taskbar the loop captures its reservation state (first
// capture wins across repeated suppression episodes), forces auto-hide, and
// hides the window, retrying up to the attempt budget at a fixed interval.
// Per-attempt failures are logged, never surfaced.
func (s *TaskbarSuppressor) Suppress() *SuppressHandle {
	handle := &SuppressHandle{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(handle.done)
		for attempt := 0; attempt < suppressAttempts; attempt++ {
			select {
			case <-handle.stop:
				return
			default:
			}
			if !s.enabled() {
				return
			}

			s.suppressOnce()

			select {
			case <-handle.stop:
				return
			case <-time.After(suppressInterval):
			}
		}
	}()

	return handle
}

func (s *TaskbarSuppressor) suppressOnce() {
	bars, err := s.Enumerate()
	if err != nil {
		s.logger.Error("failed to enumerate taskbars", "error", err)
		return
	}

	for _, bar := range bars {
		s.captureState(bar)
		if err := s.bar.SetState(bar, appbar.StateAutoHide); err != nil {
			s.logger.Warn("failed to set taskbar state", "hwnd", bar, "error", err)
		}
		if err := s.backend.ShowWindow(bar, platform.ShowHide); err != nil {
			s.logger.Warn("failed to hide taskbar", "hwnd", bar, "error", err)
		}
	}
}

// captureState records the taskbar's pre-suppression state exactly once.
// The state read happens outside the guard; the recheck at store time keeps
// the first capture authoritative.
func (s *TaskbarSuppressor) captureState(bar platform.WindowID) {
	s.snapshotMu.Lock()
	_, captured := s.snapshot[bar]
	s.snapshotMu.Unlock()
	if captured {
		return
	}

	state, err := s.bar.State(bar)
	if err != nil {
		s.logger.Warn("failed to read taskbar state", "hwnd", bar, "error", err)
		return
	}

	s.snapshotMu.Lock()
	if _, captured := s.snapshot[bar]; !captured {
		s.snapshot[bar] = state
	}
	s.snapshotMu.Unlock()
}

// Restore reapplies each discoverable taskbar's captured state (defaulting
// to always-on-top) and shows it normally. The first error encountered is
// returned; remaining taskbars are still attempted.
func (s *TaskbarSuppressor) Restore() error {
	bars, err := s.Enumerate()
	if err != nil {
		return err
	}

	var firstErr error
	for _, bar := range bars {
		s.snapshotMu.Lock()
		state, ok := s.snapshot[bar]
		delete(s.snapshot, bar)
		s.snapshotMu.Unlock()
		if !ok {
			state = appbar.StateAlwaysOnTop
		}

		if err := s.bar.SetState(bar, state); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := s.backend.ShowWindow(bar, platform.ShowNormal); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	// Entries for taskbars that vanished since capture are stale now.
	s.snapshotMu.Lock()
	s.snapshot = make(map[platform.WindowID]appbar.State)
	s.snapshotMu.Unlock()

	return firstErr
}
