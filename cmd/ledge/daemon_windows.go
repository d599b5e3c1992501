//go:build windows

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/1broseidon/ledge/internal/appbar"
	"github.com/1broseidon/ledge/internal/config"
	"github.com/1broseidon/ledge/internal/daemon"
	"github.com/1broseidon/ledge/internal/dock"
	"github.com/1broseidon/ledge/internal/icons"
	"github.com/1broseidon/ledge/internal/ipc"
	"github.com/1broseidon/ledge/internal/platform"
	"github.com/1broseidon/ledge/internal/runtimepath"
)

func runDaemon(surface uintptr) int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	log.Printf("Configuration loaded (side: %s, thickness: %d, hide_mode: %s)",
		cfg.Side, cfg.Thickness, cfg.HideMode)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	backend := platform.NewBackend()
	bar := appbar.NewShellClient()

	iconDir := cfg.IconCacheDir
	if iconDir == "" {
		iconDir, err = runtimepath.IconCacheDir()
		if err != nil {
			log.Printf("Failed to resolve icon cache dir: %v", err)
			return 1
		}
	}
	iconResolver := icons.NewCacheResolver(iconDir)

	// Start IPC server first: it is the dock's event notifier.
	ipcServer, err := ipc.NewServer()
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
		return 1
	}
	defer ipcServer.Stop()

	var running atomic.Bool
	running.Store(true)
	d, err := dock.New(dock.Options{
		Surface:  platform.WindowID(surface),
		Backend:  backend,
		Bar:      bar,
		Notifier: ipcServer,
		Icons:    iconResolver,
		Config:   cfg,
		Enabled:  running.Load,
		Logger:   logger,
	})
	if err != nil {
		log.Printf("Failed to initialize dock: %v", err)
		return 1
	}
	ipcServer.AttachDock(d)

	log.Println("ledge daemon started successfully")

	policy := dock.NewAdmissionPolicy(backend, cfg, d.IsSurface)
	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.PollInterval,
		Logger:   logger,
	}, backend, d, policy)

	// Populate the registry before the loop starts so early subscribers see
	// a complete open-app list.
	reconciler.ReconcileNow()

	if surface != 0 {
		monitor := backend.MonitorFromWindow(platform.WindowID(surface))
		if err := d.Reposition(monitor); err != nil {
			log.Printf("Failed to position dock: %v", err)
			return 1
		}
		if err := d.Show(); err != nil {
			logger.Warn("failed to show dock surface", "error", err)
		}
	}

	suppression := d.Suppressor().Suppress()

	reconcilerCtx, reconcilerCancel := context.WithCancel(context.Background())
	defer reconcilerCancel()
	go reconciler.Run(reconcilerCtx)

	// Block until asked to shut down, then unwind in reverse order.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received %s, shutting down ledge daemon...", sig)

	running.Store(false)
	suppression.Stop()
	<-suppression.Done()
	reconcilerCancel()

	if err := d.Close(); err != nil {
		log.Printf("Shutdown cleanup failed: %v", err)
		return 1
	}
	return 0
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
