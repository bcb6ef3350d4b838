// Package window keeps a native window's geometry and visibility in sync with
// the settings store.
//
// The Controller models visibility as two independent bits: whether the
// window is fullscreen, and whether it is windowed, maximized or minimized
// underneath. Leaving fullscreen returns to whatever the second bit says.
// The geometry of the plain windowed state is tracked separately and is only
// ever updated while the window is actually windowed, so maximizing or going
// fullscreen never overwrites it.
//
// A Controller is not safe for concurrent use. Drive it from the goroutine
// that delivers window events.
package window

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/settings"
)

// ErrAlreadyRestored is returned when Restore is called twice.
var ErrAlreadyRestored = errors.New("window: state already restored")

// Listener receives state notifications. Nil fields are skipped. Each
// callback only fires when the value actually changes.
type Listener struct {
	FullScreenChanged  func(fullscreen bool)
	MaximizedChanged   func(maximized bool)
	MinimizedChanged   func(minimized bool)
	PersistenceChanged func(policy Persistence)
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger replaces the package logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithAssertions makes inconsistent native reports panic instead of being
// logged. Builds with the debug tag enable it by default.
func WithAssertions(enabled bool) Option {
	return func(c *Controller) {
		c.assertions = enabled
	}
}

// WithDefaultPersistence sets the policy stored when the settings have none.
func WithDefaultPersistence(policy Persistence) Option {
	return func(c *Controller) {
		c.defaultPolicy = policy & PersistAll
	}
}

// Controller owns the visibility state and windowed geometry of one window.
type Controller struct {
	win        WindowControl
	store      *settings.Store
	log        *log.Logger
	assertions bool
	listeners  []Listener

	fullscreen bool
	state      Visibility
	// restoreMaximized is the state to return to when leaving Minimized.
	restoreMaximized bool
	windowed         geom.Rect
	previous         geom.Rect
	savedFlags       Flags
	policy           Persistence
	defaultPolicy    Persistence
	restored         bool

	// muted counts transitions in progress that the controller drives
	// itself. Native events echoing them are dropped.
	muted int
}

var _ EventHandler = (*Controller)(nil)

// New creates a controller for win backed by store. Nothing is read or
// written until Restore.
func New(win WindowControl, store *settings.Store, opts ...Option) *Controller {
	c := &Controller{
		win:           win,
		store:         store,
		log:           logger,
		assertions:    assertionsDefault,
		state:         Windowed,
		policy:        PersistAll,
		defaultPolicy: PersistAll,
		savedFlags:    win.Flags(),
	}
	c.windowed = c.live()
	c.previous = c.windowed

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Listen registers l for state notifications.
func (c *Controller) Listen(l Listener) {
	c.listeners = append(c.listeners, l)
}

// FullScreen reports whether the window is fullscreen.
func (c *Controller) FullScreen() bool { return c.fullscreen }

// Maximized reports whether the window is maximized, possibly underneath
// fullscreen.
func (c *Controller) Maximized() bool { return c.state == Maximized }

// Minimized reports whether the window is minimized.
func (c *Controller) Minimized() bool { return c.state == Minimized }

// Visibility returns the effective visibility.
func (c *Controller) Visibility() Visibility {
	if c.fullscreen && c.state != Minimized {
		return FullScreen
	}
	return c.state
}

// WindowedGeometry returns the rectangle the window has when plainly windowed.
func (c *Controller) WindowedGeometry() geom.Rect { return c.windowed }

// Persistence returns the restore policy.
func (c *Controller) Persistence() Persistence { return c.policy }

// Restored reports whether Restore completed.
func (c *Controller) Restored() bool { return c.restored }

// SetFullScreen enters or leaves fullscreen.
func (c *Controller) SetFullScreen(fullscreen bool) {
	if c.fullscreen == fullscreen {
		return
	}

	c.mute(func() {
		if fullscreen {
			c.enterFullScreen()
		} else {
			c.leaveFullScreen()
		}
	})

	c.log.Debug("fullscreen changed", "fullscreen", fullscreen, "state", c.state, "windowed", c.windowed)
	c.save()
	c.emit(func(l Listener) {
		if l.FullScreenChanged != nil {
			l.FullScreenChanged(fullscreen)
		}
	})
}

func (c *Controller) enterFullScreen() {
	switch c.state {
	case Windowed:
		c.setWindowed(c.live())
	case Minimized:
		c.setState(c.unminimizedState())
	}

	c.savedFlags = c.win.Flags()
	c.fullscreen = true

	screen := c.win.ScreenGeometry()
	c.win.SetFlags(Borderless)
	c.win.SetVisibility(Windowed)
	c.win.SetPosition(screen.Pos())
	c.win.Resize(screen.Size())
}

func (c *Controller) leaveFullScreen() {
	c.fullscreen = false

	c.win.SetFlags(c.savedFlags)
	c.win.SetPosition(c.windowed.Pos())
	c.win.Resize(c.windowed.Size())
	c.win.SetVisibility(c.state)
}

// SetMaximized maximizes or restores the window. It does nothing while
// fullscreen. A minimized window is shown again.
func (c *Controller) SetMaximized(maximized bool) {
	if c.fullscreen {
		c.log.Debug("ignoring maximize while fullscreen", "maximized", maximized)
		return
	}

	target := Windowed
	if maximized {
		target = Maximized
	}
	if c.state == target {
		return
	}

	c.mute(func() {
		if c.state == Windowed {
			c.setWindowed(c.live())
		}
		if target == Windowed {
			c.win.SetPosition(c.windowed.Pos())
			c.win.Resize(c.windowed.Size())
		}
		c.win.SetVisibility(target)
		c.setState(target)
	})
	c.save()
}

// SetMinimized minimizes the window or shows it again. When shown again the
// window returns to maximized if it was maximized before being minimized.
func (c *Controller) SetMinimized(minimized bool) {
	if minimized == (c.state == Minimized) {
		return
	}

	c.mute(func() {
		if minimized {
			if c.state == Windowed && !c.fullscreen {
				c.setWindowed(c.live())
			}
			c.restoreMaximized = c.state == Maximized
			c.win.SetVisibility(Minimized)
			c.setState(Minimized)
			return
		}

		state := c.unminimizedState()
		if c.fullscreen {
			c.win.SetVisibility(Windowed)
		} else {
			c.win.SetVisibility(state)
		}
		c.setState(state)
	})
	c.save()
}

// SetPersistence changes which facets are restored on the next start.
func (c *Controller) SetPersistence(policy Persistence) {
	policy &= PersistAll
	if policy == c.policy {
		return
	}
	c.policy = policy
	c.set(KeyPersistence, int32(policy))
	c.store.SyncLater()

	c.emit(func(l Listener) {
		if l.PersistenceChanged != nil {
			l.PersistenceChanged(policy)
		}
	})
}

// OnGeometryChanged records r as the windowed geometry when the window is
// plainly windowed.
func (c *Controller) OnGeometryChanged(r geom.Rect) {
	if c.muted > 0 || !c.restored {
		return
	}
	if c.fullscreen || c.state != Windowed || r.Empty() || r == c.windowed {
		return
	}
	c.setWindowed(r)
	c.save()
}

// OnVisibilityChanged reconciles the logical state with a native report.
func (c *Controller) OnVisibilityChanged(v Visibility) {
	if c.muted > 0 || !c.restored {
		return
	}

	switch v {
	case Hidden:
		return
	case FullScreen:
		c.violation("native layer reported fullscreen outside of SetFullScreen", "state", c.state)
		return
	case Windowed, Maximized, Minimized:
	default:
		c.violation("unknown native visibility", "visibility", v)
		return
	}

	if c.fullscreen {
		// The native window stays windowed in fullscreen. Only minimizing and
		// showing it again mean anything here.
		switch {
		case v == Minimized && c.state != Minimized:
			c.restoreMaximized = c.state == Maximized
			c.setState(Minimized)
		case v != Minimized && c.state == Minimized:
			c.setState(c.unminimizedState())
		default:
			return
		}
		c.save()
		return
	}

	if v == c.state {
		return
	}

	if c.state == Windowed {
		c.rollbackLeakedGeometry()
	}
	if v == Minimized {
		c.restoreMaximized = c.state == Maximized
	}
	c.log.Debug("native visibility changed", "from", c.state, "to", v)
	c.setState(v)
	c.save()
}

// OnClosing captures the best known windowed geometry and flushes the store.
func (c *Controller) OnClosing() {
	if !c.restored {
		return
	}

	switch {
	case c.fullscreen:
	case c.state == Windowed:
		if live := c.live(); !live.Empty() && live != c.windowed {
			c.setWindowed(live)
		}
	default:
		if q, ok := c.win.(RestoreGeometryQuerier); ok {
			r, ok := q.RestoreGeometry()
			switch {
			case !ok || r.Empty() || r == c.windowed:
			case c.leaked(r):
				// The native layer recorded the geometry of the state being
				// entered, the rollback already fixed ours.
				c.log.Debug("ignoring leaked restore geometry", "restore", r, "windowed", c.windowed)
			default:
				c.setWindowed(r)
			}
		}
	}

	c.save()
	if err := c.store.Sync(); err != nil {
		c.log.Error("failed to save window state on close", "err", err)
	}
}

// rollbackLeakedGeometry undoes a geometry change that belongs to the state
// being entered. Some platforms resize the window to the maximized area, or
// move it off the desktop when minimizing, before reporting the new state.
func (c *Controller) rollbackLeakedGeometry() {
	if !c.leaked(c.windowed) {
		return
	}
	if c.previous.Empty() || c.previous == c.windowed {
		return
	}

	c.log.Debug("rolling back windowed geometry", "leaked", c.windowed, "restored", c.previous)
	c.windowed = c.previous
}

// leaked reports whether r looks like maximized or minimized geometry: it
// covers the whole available area, or lies off the desktop.
func (c *Controller) leaked(r geom.Rect) bool {
	avail := c.win.AvailableGeometry()
	screen := c.win.ScreenGeometry()

	if !avail.Empty() && r.Contains(avail) {
		return true
	}
	return !screen.Empty() && !r.Intersects(screen) && !r.Intersects(avail)
}

func (c *Controller) unminimizedState() Visibility {
	if c.restoreMaximized {
		return Maximized
	}
	return Windowed
}

func (c *Controller) setState(s Visibility) {
	old := c.state
	if old == s {
		return
	}
	c.state = s

	if (old == Maximized) != (s == Maximized) {
		c.emit(func(l Listener) {
			if l.MaximizedChanged != nil {
				l.MaximizedChanged(s == Maximized)
			}
		})
	}
	if (old == Minimized) != (s == Minimized) {
		c.emit(func(l Listener) {
			if l.MinimizedChanged != nil {
				l.MinimizedChanged(s == Minimized)
			}
		})
	}
}

func (c *Controller) setWindowed(r geom.Rect) {
	if r == c.windowed {
		return
	}
	c.previous = c.windowed
	c.windowed = r
}

func (c *Controller) live() geom.Rect {
	return geom.RectOf(c.win.Position(), c.win.Size())
}

// maximizedBit is what gets persisted: a minimized window that was maximized
// comes back maximized.
func (c *Controller) maximizedBit() bool {
	return c.state == Maximized || (c.state == Minimized && c.restoreMaximized)
}

func (c *Controller) mute(fn func()) {
	c.muted++
	defer func() { c.muted-- }()
	fn()
}

func (c *Controller) emit(fn func(Listener)) {
	for _, l := range c.listeners {
		fn(l)
	}
}

// save writes every facet and schedules a flush. The policy only gates what
// Restore applies.
func (c *Controller) save() {
	if !c.restored {
		return
	}
	c.set(KeyPosition, c.windowed.Pos())
	c.set(KeySize, c.windowed.Size())
	c.set(KeyMaximized, c.maximizedBit())
	c.set(KeyFullScreen, c.fullscreen)
	c.store.SyncLater()
}

func (c *Controller) set(key string, value any) {
	if err := c.store.Set(key, value, false); err != nil {
		c.log.Error("failed to store window state", "key", key, "err", err)
	}
}

func (c *Controller) violation(msg string, keyvals ...any) {
	if c.assertions {
		panic(fmt.Sprintf("window: %s %v", msg, keyvals))
	}
	c.log.Error(msg, keyvals...)
}
