package dock

import (
	"errors"
	"testing"

	"github.com/1broseidon/ledge/internal/config"
	"github.com/1broseidon/ledge/internal/platform"
)

func trackableWindow() fakeWindow {
	return fakeWindow{
		visible: true,
		title:   "Notepad",
		class:   "Notepad",
		exe:     `C:\Windows\System32\notepad.exe`,
	}
}

func TestShouldTrack(t *testing.T) {
	const id platform.WindowID = 100
	const dockSurface platform.WindowID = 999

	tests := []struct {
		name   string
		window fakeWindow
		rules  *config.Config
		asDock bool
		want   bool
	}{
		{name: "plain visible window", window: trackableWindow(), want: true},
		{
			name: "invisible window",
			window: func() fakeWindow {
				w := trackableWindow()
				w.visible = false
				return w
			}(),
			want: false,
		},
		{
			name: "owned window",
			window: func() fakeWindow {
				w := trackableWindow()
				w.owner = 55
				return w
			}(),
			want: false,
		},
		{name: "dock surface", window: trackableWindow(), asDock: true, want: false},
		{
			name: "tool window",
			window: func() fakeWindow {
				w := trackableWindow()
				w.style = platform.ExToolWindow
				return w
			}(),
			want: false,
		},
		{
			name: "no-activate window",
			window: func() fakeWindow {
				w := trackableWindow()
				w.style = platform.ExNoActivate
				return w
			}(),
			want: false,
		},
		{
			name: "tool window with explicit app-window flag",
			window: func() fakeWindow {
				w := trackableWindow()
				w.style = platform.ExToolWindow | platform.ExAppWindow
				return w
			}(),
			want: true,
		},
		{
			name: "host frame without creator",
			window: func() fakeWindow {
				w := trackableWindow()
				w.noCreator = true
				return w
			}(),
			want: false,
		},
		{
			name: "creator resolution failure falls back to self",
			window: func() fakeWindow {
				w := trackableWindow()
				w.creatorErr = errors.New("resolution failed")
				return w
			}(),
			want: true,
		},
		{
			name: "suspended packaged app",
			window: func() fakeWindow {
				w := trackableWindow()
				w.suspended = true
				return w
			}(),
			want: false,
		},
		{
			name: "system package executable",
			window: func() fakeWindow {
				w := trackableWindow()
				w.exe = `C:\Windows\SystemApps\Microsoft.Windows.Search\SearchApp.exe`
				return w
			}(),
			want: false,
		},
		{
			name: "executable resolution failure is tolerated",
			window: func() fakeWindow {
				w := trackableWindow()
				w.exeErr = errors.New("access denied")
				return w
			}(),
			want: true,
		},
		{
			name:   "hidden by app rule",
			window: trackableWindow(),
			rules: &config.Config{Apps: []config.AppRule{
				{Exe: "notepad.exe", Hidden: true},
			}},
			want: false,
		},
		{
			name: "blacklisted title",
			window: func() fakeWindow {
				w := trackableWindow()
				w.title = "Program Manager"
				return w
			}(),
			want: false,
		},
		{
			name: "empty title",
			window: func() fakeWindow {
				w := trackableWindow()
				w.title = ""
				return w
			}(),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			target := id
			if tt.asDock {
				target = dockSurface
			}
			backend.addWindow(target, tt.window)

			rules := tt.rules
			if rules == nil {
				rules = &config.Config{}
			}
			policy := NewAdmissionPolicy(backend, rules, func(w platform.WindowID) bool {
				return w == dockSurface
			})

			// The predicate is pure: repeated evaluation must agree.
			for i := 0; i < 3; i++ {
				if got := policy.ShouldTrack(target); got != tt.want {
					t.Fatalf("ShouldTrack (eval %d) = %v, want %v", i, got, tt.want)
				}
			}
		})
	}
}
