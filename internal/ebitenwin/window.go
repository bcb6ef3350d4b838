// Package ebitenwin implements window.WindowControl over the ebiten window
// API.
package ebitenwin

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// Window is the process-wide ebiten window.
//
// ebiten has no native window events, so Poll samples the window once per
// tick and reports what changed. Call it from Update.
type Window struct {
	tracker tracker
}

var (
	_ window.WindowControl          = (*Window)(nil)
	_ window.RestoreGeometryQuerier = (*Window)(nil)
)

// New returns the adapter and takes over window closing: once Poll reports
// the window is closing, Update must return ebiten.Termination.
func New() *Window {
	ebiten.SetWindowClosingHandled(true)
	return &Window{}
}

func (w *Window) Position() geom.Point {
	x, y := ebiten.WindowPosition()
	return geom.Pt(int32(x), int32(y))
}

func (w *Window) SetPosition(p geom.Point) {
	ebiten.SetWindowPosition(int(p.X), int(p.Y))
}

func (w *Window) Size() geom.Size {
	width, height := ebiten.WindowSize()
	return geom.Sz(int32(width), int32(height))
}

func (w *Window) Resize(s geom.Size) {
	if s.Empty() {
		return
	}
	ebiten.SetWindowSize(int(s.Width), int(s.Height))
}

func (w *Window) Visibility() window.Visibility {
	switch {
	case ebiten.IsFullscreen():
		return window.FullScreen
	case ebiten.IsWindowMinimized():
		return window.Minimized
	case ebiten.IsWindowMaximized():
		return window.Maximized
	}
	return window.Windowed
}

func (w *Window) SetVisibility(v window.Visibility) {
	switch v {
	case window.Maximized:
		// ebiten ignores maximize requests for fixed size windows.
		if ebiten.WindowResizingMode() != ebiten.WindowResizingModeEnabled {
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		}
		ebiten.MaximizeWindow()
	case window.Minimized:
		ebiten.MinimizeWindow()
	case window.Windowed:
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
	}
}

func (w *Window) Flags() window.Flags {
	var f window.Flags
	if ebiten.IsWindowDecorated() {
		f |= window.Frame
	}
	if ebiten.WindowResizingMode() == ebiten.WindowResizingModeEnabled {
		f |= window.Resizable
	}
	if ebiten.IsWindowFloating() {
		f |= window.AlwaysOnTop
	}
	return f
}

func (w *Window) SetFlags(f window.Flags) {
	ebiten.SetWindowDecorated(f.Has(window.Frame))
	if f.Has(window.Resizable) {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	ebiten.SetWindowFloating(f.Has(window.AlwaysOnTop))
}

// ScreenGeometry returns the bounds of the current monitor in device
// independent pixels.
func (w *Window) ScreenGeometry() geom.Rect {
	width, height := ebiten.Monitor().Size()
	return geom.R(0, 0, int32(width), int32(height))
}

// AvailableGeometry is the whole monitor: ebiten does not expose the work
// area.
func (w *Window) AvailableGeometry() geom.Rect {
	return w.ScreenGeometry()
}

// RestoreGeometry returns the last rectangle Poll saw while the window was
// windowed.
func (w *Window) RestoreGeometry() (geom.Rect, bool) {
	if w.tracker.restore.Empty() {
		return geom.Rect{}, false
	}
	return w.tracker.restore, true
}

// Poll samples the native window and dispatches changes to h. It returns
// true once the window is closing.
func (w *Window) Poll(h window.EventHandler) bool {
	return w.tracker.update(snapshot{
		vis:     w.Visibility(),
		rect:    geom.RectOf(w.Position(), w.Size()),
		closing: ebiten.IsWindowBeingClosed(),
	}, h)
}
