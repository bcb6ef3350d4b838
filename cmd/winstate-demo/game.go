package main

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Gaurav-Gosain/winstate/internal/config"
	"github.com/Gaurav-Gosain/winstate/internal/ebitenwin"
	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// policies is the order cycle_persistence steps through.
var policies = []window.Persistence{
	window.PersistAll,
	window.PersistPosition | window.PersistSize,
	window.PersistSize,
	window.PersistNone,
}

type game struct {
	cfg      *config.Config
	win      *ebitenwin.Window
	ctrl     *window.Controller
	registry *config.KeybindRegistry
	help     []config.KeybindingSection
	pressed  []ebiten.Key
	status   string
}

func newGame(cfg *config.Config, win *ebitenwin.Window, ctrl *window.Controller) *game {
	registry := config.NewKeybindRegistry(cfg)
	return &game{
		cfg:      cfg,
		win:      win,
		ctrl:     ctrl,
		registry: registry,
		help:     config.GetKeybindings(registry),
	}
}

func (g *game) listener() window.Listener {
	return window.Listener{
		FullScreenChanged: func(on bool) { g.notify("fullscreen", on) },
		MaximizedChanged:  func(on bool) { g.notify("maximized", on) },
		MinimizedChanged:  func(on bool) { g.notify("minimized", on) },
		PersistenceChanged: func(p window.Persistence) {
			g.notify("restoring", p)
		},
	}
}

func (g *game) notify(what string, v any) {
	g.status = fmt.Sprintf("%s: %v", what, v)
	logger.Debug("window state changed", what, v)
}

func (g *game) Update() error {
	if g.win.Poll(g.ctrl) {
		return ebiten.Termination
	}

	g.pressed = inpututil.AppendJustPressedKeys(g.pressed[:0])
	for _, key := range g.pressed {
		name, ok := keyName(key)
		if !ok {
			continue
		}
		if action := g.registry.GetAction(name); action != "" {
			logger.Debug("key", "key", name, "action", action)
			if g.perform(action) {
				return ebiten.Termination
			}
		}
	}
	return nil
}

// perform runs action and reports whether the application should exit.
func (g *game) perform(action string) bool {
	switch action {
	case "toggle_fullscreen":
		g.ctrl.SetFullScreen(!g.ctrl.FullScreen())
	case "toggle_maximized":
		g.ctrl.SetMaximized(!g.ctrl.Maximized())
	case "minimize":
		g.ctrl.SetMinimized(true)
	case "cycle_persistence":
		current := g.ctrl.Persistence()
		next := policies[0]
		for i, p := range policies {
			if p == current {
				next = policies[(i+1)%len(policies)]
				break
			}
		}
		g.ctrl.SetPersistence(next)
	case "reset_geometry":
		g.ctrl.SetFullScreen(false)
		g.ctrl.SetMaximized(false)
		avail := g.win.AvailableGeometry()
		size := geom.Sz(g.cfg.Window.DefaultWidth, g.cfg.Window.DefaultHeight)
		r := geom.RectOf(geom.Point{}, size).CenteredIn(avail)
		g.win.Resize(r.Size())
		g.win.SetPosition(r.Pos())
	case "quit":
		// Closing saves through the same path as the window close button.
		g.ctrl.OnClosing()
		return true
	}
	return false
}

// keyName spells the key the way keybindings are written in the config,
// e.g. "ctrl+shift+f". Bare modifier presses have no name.
func keyName(key ebiten.Key) (string, bool) {
	switch key {
	case ebiten.KeyControlLeft, ebiten.KeyControlRight,
		ebiten.KeyAltLeft, ebiten.KeyAltRight,
		ebiten.KeyShiftLeft, ebiten.KeyShiftRight,
		ebiten.KeyMetaLeft, ebiten.KeyMetaRight:
		return "", false
	}

	var parts []string
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		parts = append(parts, "ctrl")
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		parts = append(parts, "alt")
	}
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		parts = append(parts, "shift")
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		parts = append(parts, "super")
	}
	parts = append(parts, baseKeyName(key))
	return strings.Join(parts, "+"), true
}

func baseKeyName(key ebiten.Key) string {
	name := strings.ToLower(key.String())
	// Letters and digits are reported as "a" and "digit1".
	return strings.TrimPrefix(name, "digit")
}

func (g *game) Draw(screen *ebiten.Image) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "visibility: %s\n", g.ctrl.Visibility())
	fmt.Fprintf(&sb, "windowed:   %s\n", g.ctrl.WindowedGeometry())
	fmt.Fprintf(&sb, "restoring:  %s\n", g.ctrl.Persistence())
	if g.status != "" {
		fmt.Fprintf(&sb, "last:       %s\n", g.status)
	}
	sb.WriteString("\n")
	for _, section := range g.help {
		sb.WriteString(section.Title + "\n")
		for _, b := range section.Bindings {
			fmt.Fprintf(&sb, "  %-16s %s\n", b.Key, b.Description)
		}
	}
	ebitenutil.DebugPrint(screen, sb.String())
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
