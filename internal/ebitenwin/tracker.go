package ebitenwin

import (
	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// snapshot is the native window state sampled once per tick.
type snapshot struct {
	vis     window.Visibility
	rect    geom.Rect
	closing bool
}

// tracker turns successive snapshots into normalized events: visibility
// first, geometry only while windowed, closing exactly once.
type tracker struct {
	started bool
	closed  bool
	last    snapshot
	// restore is the last rectangle seen while windowed.
	restore geom.Rect
}

func (t *tracker) update(s snapshot, h window.EventHandler) bool {
	if t.closed {
		return true
	}
	if !t.started {
		t.started = true
		t.last = s
		if s.vis == window.Windowed {
			t.restore = s.rect
		}
	}

	if s.vis != t.last.vis {
		t.last.vis = s.vis
		h.OnVisibilityChanged(s.vis)
	}
	if s.vis == window.Windowed && s.rect != t.last.rect {
		h.OnGeometryChanged(s.rect)
	}
	t.last.rect = s.rect
	if s.vis == window.Windowed {
		t.restore = s.rect
	}

	if s.closing {
		t.closed = true
		h.OnClosing()
		return true
	}
	return false
}
