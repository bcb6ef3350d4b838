package window

import (
	"fmt"

	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/settings"
)

// Restore migrates the stored settings and applies them to the window.
//
// On the very first run the window gets the default size, centered in the
// available desktop area, and the default visibility. Otherwise each saved
// facet is applied when the persistence policy allows it. Saved geometry is
// clamped so the window can always be reached on the current desktop.
func (c *Controller) Restore(defaultWidth, defaultHeight int32, defaultVisibility Visibility) error {
	if c.restored {
		return ErrAlreadyRestored
	}

	c.muted++
	defer func() { c.muted-- }()

	// Migrations drop the marker, look for it first.
	saved := c.store.Contains(legacyKeyInit)
	found, err := Migrate(c.store, c.log)
	if err != nil {
		return fmt.Errorf("restore window state: %w", err)
	}
	firstRun := found == 0 && !saved

	if _, err := c.store.Init(KeyPersistence, int32(c.defaultPolicy), false); err != nil {
		return fmt.Errorf("restore window state: %w", err)
	}
	c.policy = Persistence(settings.Value(c.store, KeyPersistence, int32(c.defaultPolicy))) & PersistAll

	avail := c.win.AvailableGeometry()
	current := c.live()
	defaultSize := geom.Sz(defaultWidth, defaultHeight)
	if defaultSize.Empty() {
		defaultSize = current.Size()
	}

	if firstRun {
		c.log.Info("first run, applying defaults", "size", defaultSize, "visibility", defaultVisibility)
		r := geom.RectOf(geom.Point{}, defaultSize)
		if !avail.Empty() {
			r.Width = min(r.Width, avail.Width)
			r.Height = min(r.Height, avail.Height)
			r = r.CenteredIn(avail)
		}
		c.apply(r)
		c.applyVisibility(defaultVisibility)
	} else {
		pos := settings.Value(c.store, KeyPosition, current.Pos())
		size := settings.Value(c.store, KeySize, current.Size())
		if size.Empty() {
			size = defaultSize
		}
		maximized := settings.Value(c.store, KeyMaximized, c.win.Visibility() == Maximized)
		fullscreen := settings.Value(c.store, KeyFullScreen, false)

		r := current
		if r.Empty() {
			r = geom.RectOf(r.Pos(), defaultSize)
		}
		if c.policy.Has(PersistPosition) {
			r = r.MoveTo(pos)
		}
		if c.policy.Has(PersistSize) {
			r.Width, r.Height = size.Width, size.Height
		}
		clamped := geom.ClampTo(r, avail)
		if clamped != r {
			c.log.Info("saved geometry is off the desktop, moving it back", "saved", r, "clamped", clamped, "available", avail)
		}
		c.apply(clamped)

		vis := Windowed
		if maximized && c.policy.Has(PersistMaximized) {
			vis = Maximized
		}
		c.applyVisibility(vis)
		if fullscreen && c.policy.Has(PersistFullScreen) {
			c.SetFullScreen(true)
		}
	}

	c.restored = true
	c.save()
	if err := c.store.Sync(); err != nil {
		c.log.Error("failed to save restored window state", "err", err)
	}

	c.log.Debug("window state restored",
		"version", found,
		"first_run", firstRun,
		"policy", c.policy,
		"windowed", c.windowed,
		"visibility", c.Visibility(),
	)
	return nil
}

// apply moves and resizes the native window to r and makes it the windowed
// geometry.
func (c *Controller) apply(r geom.Rect) {
	c.win.SetPosition(r.Pos())
	c.win.Resize(r.Size())
	c.windowed = r
	c.previous = r
}

func (c *Controller) applyVisibility(v Visibility) {
	switch v {
	case Maximized, Minimized:
		c.restoreMaximized = false
		c.win.SetVisibility(v)
		c.setState(v)
	case FullScreen:
		c.win.SetVisibility(Windowed)
		c.SetFullScreen(true)
	default:
		c.win.SetVisibility(Windowed)
	}
}
