// Package windowtest provides an in-memory native window for tests.
package windowtest

import (
	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// Quirks reproduce platform event ordering that adapters cannot always hide.
type Quirks struct {
	// GeometryBeforeState reports the maximized or minimized geometry while
	// the window still claims to be windowed, then the visibility change.
	GeometryBeforeState bool
	// MinimizeOffscreen parks minimized windows far outside the desktop.
	MinimizeOffscreen bool
	// RestoreTracksGeometry makes RestoreGeometry follow every rectangle
	// seen while windowed, including one reported by GeometryBeforeState.
	RestoreTracksGeometry bool
}

// Offscreen is where MinimizeOffscreen parks minimized windows.
var Offscreen = geom.Pt(-32000, -32000)

// Window is a fake window.WindowControl. Changes, whether requested through
// WindowControl or simulated with the User methods, are reported to the
// attached handler the way a native adapter would.
type Window struct {
	Screen    geom.Rect
	Available geom.Rect
	Quirks    Quirks

	pos     geom.Point
	size    geom.Size
	vis     window.Visibility
	flags   window.Flags
	restore geom.Rect
	handler window.EventHandler

	// Events counts what was delivered to the handler.
	Events struct {
		Geometry   int
		Visibility int
	}
}

var (
	_ window.WindowControl          = (*Window)(nil)
	_ window.RestoreGeometryQuerier = (*Window)(nil)
)

// New returns a windowed 800x600 window at (100, 100) on a 1920x1080 screen
// with a 40 pixel panel at the bottom.
func New() *Window {
	return &Window{
		Screen:    geom.R(0, 0, 1920, 1080),
		Available: geom.R(0, 0, 1920, 1040),
		pos:       geom.Pt(100, 100),
		size:      geom.Sz(800, 600),
		flags:     window.DefaultFlags,
	}
}

// Attach sets the handler that receives native events.
func (w *Window) Attach(h window.EventHandler) {
	w.handler = h
}

func (w *Window) Position() geom.Point { return w.pos }
func (w *Window) Size() geom.Size      { return w.size }
func (w *Window) Flags() window.Flags  { return w.flags }

// Rect returns the live window rectangle.
func (w *Window) Rect() geom.Rect { return geom.RectOf(w.pos, w.size) }

func (w *Window) Visibility() window.Visibility { return w.vis }

func (w *Window) ScreenGeometry() geom.Rect    { return w.Screen }
func (w *Window) AvailableGeometry() geom.Rect { return w.Available }

func (w *Window) SetFlags(f window.Flags) { w.flags = f }

func (w *Window) SetPosition(p geom.Point) {
	if p == w.pos {
		return
	}
	w.pos = p
	w.emitGeometry()
}

func (w *Window) Resize(s geom.Size) {
	if s == w.size {
		return
	}
	w.size = s
	w.emitGeometry()
}

func (w *Window) SetVisibility(v window.Visibility) {
	w.transition(v)
}

// RestoreGeometry returns the rectangle the window had before it was
// maximized or minimized.
func (w *Window) RestoreGeometry() (geom.Rect, bool) {
	if w.vis == window.Windowed || w.restore.Empty() {
		return geom.Rect{}, false
	}
	return w.restore, true
}

// UserMove simulates the user dragging the window.
func (w *Window) UserMove(p geom.Point) { w.SetPosition(p) }

// UserResize simulates the user resizing the window.
func (w *Window) UserResize(s geom.Size) { w.Resize(s) }

// UserSetVisibility simulates the user clicking a title bar button.
func (w *Window) UserSetVisibility(v window.Visibility) { w.transition(v) }

// Report delivers a raw visibility report without changing the window.
func (w *Window) Report(v window.Visibility) {
	if w.handler != nil {
		w.Events.Visibility++
		w.handler.OnVisibilityChanged(v)
	}
}

// Close simulates the window being closed.
func (w *Window) Close() {
	if w.handler != nil {
		w.handler.OnClosing()
	}
}

func (w *Window) transition(v window.Visibility) {
	from := w.vis
	if v == from || v == window.FullScreen || v == window.Hidden {
		return
	}

	if from == window.Windowed {
		w.restore = w.Rect()
	}

	var target geom.Rect
	switch v {
	case window.Maximized:
		target = w.Available
	case window.Minimized:
		target = w.Rect()
		if w.Quirks.MinimizeOffscreen {
			target = target.MoveTo(Offscreen)
		}
	default:
		target = w.restore
		if target.Empty() {
			target = w.Rect()
		}
	}

	if w.Quirks.GeometryBeforeState && v != window.Windowed {
		w.pos, w.size = target.Pos(), target.Size()
		if from == window.Windowed && w.Quirks.RestoreTracksGeometry {
			w.restore = w.Rect()
		}
		w.emitGeometry()
		w.vis = v
		w.emitVisibility()
		return
	}

	w.vis = v
	w.pos, w.size = target.Pos(), target.Size()
	w.emitVisibility()
	w.emitGeometry()
}

func (w *Window) emitGeometry() {
	if w.handler == nil || w.vis != window.Windowed {
		return
	}
	w.Events.Geometry++
	w.handler.OnGeometryChanged(w.Rect())
}

func (w *Window) emitVisibility() {
	if w.handler == nil {
		return
	}
	w.Events.Visibility++
	w.handler.OnVisibilityChanged(w.vis)
}
