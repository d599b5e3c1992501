// Package daemon runs the periodic reconciliation loop that keeps the dock's
// registry in step with the live window population. Window-event hooks are
// installed by an external component; the reconciler recovers anything they
// miss and is the sole event source when they are absent.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/ledge/internal/dock"
	"github.com/1broseidon/ledge/internal/platform"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for drift between the tracked registry and
// the actual window population and corrects it.
type Reconciler struct {
	interval time.Duration
	backend  platform.Backend
	dock     *dock.Dock
	policy   *dock.AdmissionPolicy
	logger   *slog.Logger

	foreground platform.WindowID
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, backend platform.Backend, d *dock.Dock, policy *dock.AdmissionPolicy) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	return &Reconciler{
		interval: interval,
		backend:  backend,
		dock:     d,
		policy:   policy,
		logger:   cfg.Logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	registry := r.dock.Registry()

	// Windows that ceased to exist come off the dock first.
	for _, app := range registry.Snapshot() {
		if !r.backend.Exists(app.Handle) {
			r.logger.Debug("reconciler: window gone", "hwnd", app.Handle)
			registry.Remove(app.Handle)
			continue
		}
		if title := r.backend.Title(app.Handle); title != app.Title {
			registry.Update(app.Handle)
		}
	}

	// Admit live windows that are not tracked yet.
	err := r.backend.EnumTopLevel(func(w platform.WindowID) bool {
		if !registry.Contains(w) && r.policy.ShouldTrack(w) {
			r.logger.Debug("reconciler: tracking window", "hwnd", w)
			registry.Add(w)
		}
		return true
	})
	if err != nil {
		r.logger.Error("reconciler: failed to enumerate windows", "error", err)
	}

	r.pollForeground()
}

// pollForeground publishes focus changes and keeps overlap evaluation
// current. Overlap is re-evaluated every pass even without a focus change:
// the foreground window may have moved.
func (r *Reconciler) pollForeground() {
	fg := r.backend.Foreground()
	if fg == 0 {
		return
	}
	if fg != r.foreground {
		r.foreground = fg
		r.dock.HandleForeground(fg)
		return
	}
	r.dock.EvaluateOverlap(fg)
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
