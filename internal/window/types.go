package window

import (
	"fmt"
	"strings"
)

// Visibility is the state a window is shown in.
type Visibility int

const (
	Windowed Visibility = iota
	Maximized
	Minimized
	FullScreen
	// Hidden only appears in native reports and is ignored by the controller.
	Hidden
)

var visibilityNames = [...]string{
	Windowed:   "windowed",
	Maximized:  "maximized",
	Minimized:  "minimized",
	FullScreen: "fullscreen",
	Hidden:     "hidden",
}

func (v Visibility) String() string {
	if v >= 0 && int(v) < len(visibilityNames) {
		return visibilityNames[v]
	}
	return fmt.Sprintf("Visibility(%d)", int(v))
}

// ParseVisibility parses a visibility name as printed by String.
func ParseVisibility(name string) (Visibility, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for v, n := range visibilityNames {
		if n == name {
			return Visibility(v), nil
		}
	}
	return Windowed, fmt.Errorf("unknown visibility %q", name)
}

// Flags are window decorations.
type Flags uint8

const (
	Frame Flags = 1 << iota
	Resizable
	AlwaysOnTop

	// Borderless is the decoration set used in fullscreen.
	Borderless Flags = 0
	// DefaultFlags is a regular framed, resizable window.
	DefaultFlags = Frame | Resizable
)

func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) String() string {
	if f == Borderless {
		return "borderless"
	}
	var parts []string
	if f.Has(Frame) {
		parts = append(parts, "frame")
	}
	if f.Has(Resizable) {
		parts = append(parts, "resizable")
	}
	if f.Has(AlwaysOnTop) {
		parts = append(parts, "always-on-top")
	}
	return strings.Join(parts, "|")
}

// Persistence selects which facets of the window state are restored on
// startup. Every facet is always saved.
type Persistence int32

const (
	PersistFullScreen Persistence = 1 << iota
	PersistMaximized
	PersistPosition
	PersistSize

	PersistNone Persistence = 0
	PersistAll              = PersistFullScreen | PersistMaximized | PersistPosition | PersistSize
)

var persistenceNames = []struct {
	bit  Persistence
	name string
}{
	{PersistPosition, "position"},
	{PersistSize, "size"},
	{PersistMaximized, "maximized"},
	{PersistFullScreen, "fullscreen"},
}

// Has reports whether every bit of facet is set.
func (p Persistence) Has(facet Persistence) bool {
	return p&facet == facet
}

// Names returns the facet names set in p.
func (p Persistence) Names() []string {
	names := []string{}
	for _, n := range persistenceNames {
		if p.Has(n.bit) {
			names = append(names, n.name)
		}
	}
	return names
}

func (p Persistence) String() string {
	switch p & PersistAll {
	case PersistNone:
		return "none"
	case PersistAll:
		return "all"
	}
	return strings.Join(p.Names(), "|")
}

// ParsePersistence combines facet names. "all" and "none" are accepted too.
func ParsePersistence(names ...string) (Persistence, error) {
	var p Persistence
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "all":
			p |= PersistAll
			continue
		case "none", "":
			continue
		}
		found := false
		for _, n := range persistenceNames {
			if n.name == name {
				p |= n.bit
				found = true
				break
			}
		}
		if !found {
			return PersistNone, fmt.Errorf("unknown persistence facet %q", name)
		}
	}
	return p, nil
}
