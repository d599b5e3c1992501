package dock

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/1broseidon/ledge/internal/appbar"
	"github.com/1broseidon/ledge/internal/geometry"
	"github.com/1broseidon/ledge/internal/platform"
)

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeWindow holds the synthetic attributes of one window.
type fakeWindow struct {
	visible   bool
	owner     platform.WindowID
	title     string
	class     string
	exe       string
	exeErr    error
	style     platform.ExStyle
	rect      geometry.Rect
	rectErr   error
	suspended bool

	// Frame-creator resolution: creator 0 means "self" unless noCreator or
	// creatorErr is set.
	creator    platform.WindowID
	noCreator  bool
	creatorErr error
}

type moveCall struct {
	id   platform.WindowID
	rect geometry.Rect
}

type showCall struct {
	id  platform.WindowID
	cmd platform.ShowCmd
}

// fakeBackend is an in-memory platform.Backend.
type fakeBackend struct {
	mu         sync.Mutex
	windows    map[platform.WindowID]*fakeWindow
	order      []platform.WindowID
	foreground platform.WindowID
	workArea   geometry.Rect
	scale      float64

	moves     []moveCall
	positions []moveCall
	shows     []showCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		windows: make(map[platform.WindowID]*fakeWindow),
		scale:   1.0,
	}
}

func (b *fakeBackend) addWindow(id platform.WindowID, w fakeWindow) *fakeWindow {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := w
	b.windows[id] = &stored
	b.order = append(b.order, id)
	return &stored
}

func (b *fakeBackend) removeWindow(id platform.WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, id)
	kept := b.order[:0]
	for _, w := range b.order {
		if w != id {
			kept = append(kept, w)
		}
	}
	b.order = kept
}

func (b *fakeBackend) window(id platform.WindowID) *fakeWindow {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windows[id]
}

func (b *fakeBackend) Exists(id platform.WindowID) bool {
	return b.window(id) != nil
}

func (b *fakeBackend) IsVisible(id platform.WindowID) bool {
	w := b.window(id)
	return w != nil && w.visible
}

func (b *fakeBackend) Owner(id platform.WindowID) (platform.WindowID, bool) {
	w := b.window(id)
	if w == nil || w.owner == 0 {
		return 0, false
	}
	return w.owner, true
}

func (b *fakeBackend) Title(id platform.WindowID) string {
	w := b.window(id)
	if w == nil {
		return ""
	}
	return w.title
}

func (b *fakeBackend) ClassName(id platform.WindowID) (string, error) {
	w := b.window(id)
	if w == nil {
		return "", fmt.Errorf("no window %#x", uintptr(id))
	}
	return w.class, nil
}

func (b *fakeBackend) ExecutablePath(id platform.WindowID) (string, error) {
	w := b.window(id)
	if w == nil {
		return "", fmt.Errorf("no window %#x", uintptr(id))
	}
	if w.exeErr != nil {
		return "", w.exeErr
	}
	return w.exe, nil
}

func (b *fakeBackend) ExtendedStyle(id platform.WindowID) platform.ExStyle {
	w := b.window(id)
	if w == nil {
		return 0
	}
	return w.style
}

func (b *fakeBackend) FrameCreator(id platform.WindowID) (platform.WindowID, bool, error) {
	w := b.window(id)
	if w == nil {
		return 0, false, fmt.Errorf("no window %#x", uintptr(id))
	}
	if w.creatorErr != nil {
		return 0, false, w.creatorErr
	}
	if w.noCreator {
		return 0, false, nil
	}
	if w.creator != 0 {
		return w.creator, true, nil
	}
	return id, true, nil
}

func (b *fakeBackend) IsPackagedSuspended(id platform.WindowID) (bool, error) {
	w := b.window(id)
	if w == nil {
		return false, fmt.Errorf("no window %#x", uintptr(id))
	}
	return w.suspended, nil
}

func (b *fakeBackend) FrameRect(id platform.WindowID) (geometry.Rect, error) {
	w := b.window(id)
	if w == nil {
		return geometry.Rect{}, fmt.Errorf("no window %#x", uintptr(id))
	}
	if w.rectErr != nil {
		return geometry.Rect{}, w.rectErr
	}
	return w.rect, nil
}

func (b *fakeBackend) Foreground() platform.WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.foreground
}

func (b *fakeBackend) EnumTopLevel(visit func(platform.WindowID) bool) error {
	b.mu.Lock()
	order := make([]platform.WindowID, len(b.order))
	copy(order, b.order)
	b.mu.Unlock()

	for _, id := range order {
		if !visit(id) {
			return nil
		}
	}
	return nil
}

func (b *fakeBackend) MonitorFromWindow(platform.WindowID) platform.MonitorID {
	return 1
}

func (b *fakeBackend) WorkArea(platform.MonitorID) (geometry.Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.workArea, nil
}

func (b *fakeBackend) PixelScale(platform.MonitorID) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scale, nil
}

func (b *fakeBackend) MoveWindow(id platform.WindowID, r geometry.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.moves = append(b.moves, moveCall{id: id, rect: r})
	return nil
}

func (b *fakeBackend) SetPosition(id platform.WindowID, r geometry.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = append(b.positions, moveCall{id: id, rect: r})
	return nil
}

func (b *fakeBackend) ShowWindow(id platform.WindowID, cmd platform.ShowCmd) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shows = append(b.shows, showCall{id: id, cmd: cmd})
	return nil
}

func (b *fakeBackend) ShowWindowAsync(id platform.WindowID, cmd platform.ShowCmd) error {
	return b.ShowWindow(id, cmd)
}

type registration struct {
	edge appbar.Edge
	rect geometry.Rect
}

type stateCall struct {
	id    platform.WindowID
	state appbar.State
}

// fakeBar is an in-memory appbar.Client.
type fakeBar struct {
	mu            sync.Mutex
	states        map[platform.WindowID]appbar.State
	registrations map[platform.WindowID][]registration
	setCalls      []stateCall
	removed       []platform.WindowID
}

func newFakeBar() *fakeBar {
	return &fakeBar{
		states:        make(map[platform.WindowID]appbar.State),
		registrations: make(map[platform.WindowID][]registration),
	}
}

func (b *fakeBar) Register(w platform.WindowID, edge appbar.Edge, rect geometry.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registrations[w] = append(b.registrations[w], registration{edge: edge, rect: rect})
	return nil
}

func (b *fakeBar) SetState(w platform.WindowID, s appbar.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[w] = s
	b.setCalls = append(b.setCalls, stateCall{id: w, state: s})
	return nil
}

func (b *fakeBar) State(w platform.WindowID) (appbar.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[w], nil
}

func (b *fakeBar) Remove(w platform.WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed = append(b.removed, w)
	return nil
}

func (b *fakeBar) lastState(w platform.WindowID) appbar.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[w]
}

type emitted struct {
	event   string
	payload any
}

// recordingNotifier captures emitted events; a non-nil err simulates
// delivery failure.
type recordingNotifier struct {
	mu     sync.Mutex
	events []emitted
	err    error
}

func (n *recordingNotifier) Emit(event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, emitted{event: event, payload: payload})
	return nil
}

func (n *recordingNotifier) byEvent(event string) []emitted {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []emitted
	for _, e := range n.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}
