package window

import "github.com/Gaurav-Gosain/winstate/internal/geom"

// WindowControl is what the controller needs from a native window. Adapters
// implement it over a real toolkit.
type WindowControl interface {
	Position() geom.Point
	SetPosition(p geom.Point)
	Size() geom.Size
	Resize(s geom.Size)
	Visibility() Visibility
	SetVisibility(v Visibility)
	Flags() Flags
	SetFlags(f Flags)
	// ScreenGeometry is the full bounds of the display holding the window.
	ScreenGeometry() geom.Rect
	// AvailableGeometry is the usable desktop area, excluding panels and
	// docks.
	AvailableGeometry() geom.Rect
}

// RestoreGeometryQuerier is implemented by windows that can report the
// rectangle they would return to when leaving maximized or minimized state.
type RestoreGeometryQuerier interface {
	RestoreGeometry() (geom.Rect, bool)
}

// EventHandler receives normalized native events from an adapter.
//
// Adapters deliver a visibility change before the geometry change it causes,
// and only report geometry while the native window is windowed. Platforms
// that resize before announcing a state change are handled by the receiver.
type EventHandler interface {
	// OnGeometryChanged reports the window rectangle after a move or resize.
	OnGeometryChanged(r geom.Rect)
	// OnVisibilityChanged reports the raw native visibility.
	OnVisibilityChanged(v Visibility)
	// OnClosing is called once, before the window goes away.
	OnClosing()
}
