package config

import (
	"slices"
	"strings"
)

// ActionDescriptions lists every bindable action.
var ActionDescriptions = map[string]string{
	"toggle_fullscreen": "Toggle fullscreen",
	"toggle_maximized":  "Maximize or restore",
	"minimize":          "Minimize",
	"cycle_persistence": "Cycle restore policy",
	"reset_geometry":    "Center at default size",
	"quit":              "Quit",
}

// actionOrder is the display order of actions.
var actionOrder = []string{
	"toggle_fullscreen",
	"toggle_maximized",
	"minimize",
	"cycle_persistence",
	"reset_geometry",
	"quit",
}

// Keybinding represents a single keybinding entry
type Keybinding struct {
	Key         string
	Description string
}

// KeybindingSection represents a section of related keybindings
type KeybindingSection struct {
	Title    string
	Bindings []Keybinding
}

// KeybindRegistry resolves keys to actions and back.
type KeybindRegistry struct {
	actions    map[string][]string
	keys       map[string]string
	normalizer *KeyNormalizer
}

// NewKeybindRegistry builds a registry from cfg. Later actions win when two
// actions share a key.
func NewKeybindRegistry(cfg *Config) *KeybindRegistry {
	r := &KeybindRegistry{
		actions:    make(map[string][]string),
		keys:       make(map[string]string),
		normalizer: NewKeyNormalizer(),
	}
	for _, action := range actionOrder {
		keys := cfg.Keybindings.Window[action]
		r.actions[action] = keys
		for _, key := range keys {
			for _, k := range r.normalizer.NormalizeKey(key) {
				r.keys[k] = action
			}
		}
	}
	return r
}

// GetKeys returns the keys bound to action.
func (r *KeybindRegistry) GetKeys(action string) []string {
	return r.actions[action]
}

// GetAction returns the action bound to key, or "".
func (r *KeybindRegistry) GetAction(key string) string {
	for _, k := range r.normalizer.NormalizeKey(key) {
		if action, ok := r.keys[k]; ok {
			return action
		}
	}
	return ""
}

// GetKeysForDisplay returns the keys of action joined for a help screen.
func (r *KeybindRegistry) GetKeysForDisplay(action string) string {
	keys := r.GetKeys(action)
	display := make([]string, 0, len(keys))
	for _, key := range keys {
		display = append(display, r.normalizer.DisplayKey(key))
	}
	return strings.Join(display, ", ")
}

// GetKeybindings returns the help sections for the demo window
func GetKeybindings(registry *KeybindRegistry) []KeybindingSection {
	section := KeybindingSection{Title: "WINDOW"}
	for _, action := range actionOrder {
		addBinding(&section, registry, action, ActionDescriptions[action])
	}
	return []KeybindingSection{section}
}

// addBinding adds a keybinding to a section if the action has keys configured
func addBinding(section *KeybindingSection, registry *KeybindRegistry, action, description string) {
	keys := registry.GetKeysForDisplay(action)
	if keys != "" {
		section.Bindings = append(section.Bindings, Keybinding{
			Key:         keys,
			Description: description,
		})
	}
}

// KeyNormalizer canonicalizes key names written by users.
type KeyNormalizer struct {
	aliases   map[string]string
	modifiers []string
}

// NewKeyNormalizer returns a normalizer with the common aliases.
func NewKeyNormalizer() *KeyNormalizer {
	return &KeyNormalizer{
		aliases: map[string]string{
			"escape":  "esc",
			"return":  "enter",
			"control": "ctrl",
			"option":  "alt",
			"cmd":     "super",
			"command": "super",
			"meta":    "super",
		},
		modifiers: []string{"ctrl", "alt", "shift", "super"},
	}
}

// NormalizeKey returns the spellings key may be matched under. The first
// element is the canonical form.
func (n *KeyNormalizer) NormalizeKey(key string) []string {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return nil
	}

	parts := strings.Split(key, "+")
	for i, p := range parts {
		if alias, ok := n.aliases[p]; ok {
			parts[i] = alias
		}
	}

	// Modifiers in a fixed order so ctrl+shift+x and shift+ctrl+x match.
	mods, base := parts[:len(parts)-1], parts[len(parts)-1]
	slices.SortFunc(mods, func(a, b string) int {
		return slices.Index(n.modifiers, a) - slices.Index(n.modifiers, b)
	})
	canonical := strings.Join(append(slices.Clone(mods), base), "+")

	out := []string{canonical}
	if raw := strings.Join(parts, "+"); raw != canonical {
		out = append(out, raw)
	}
	if key != canonical && !slices.Contains(out, key) {
		out = append(out, key)
	}
	return out
}

// ValidateKey reports whether key can be bound, with a reason when not.
func (n *KeyNormalizer) ValidateKey(key string) (bool, string) {
	normalized := n.NormalizeKey(key)
	if len(normalized) == 0 {
		return false, "key is empty"
	}
	parts := strings.Split(normalized[0], "+")
	for _, p := range parts[:len(parts)-1] {
		if !slices.Contains(n.modifiers, p) {
			return false, "unknown modifier " + p
		}
	}
	if base := parts[len(parts)-1]; base == "" || slices.Contains(n.modifiers, base) {
		return false, "missing key after modifiers"
	}
	return true, ""
}

// DisplayKey formats key for a help screen, e.g. "ctrl+q" as "Ctrl+Q".
func (n *KeyNormalizer) DisplayKey(key string) string {
	normalized := n.NormalizeKey(key)
	if len(normalized) == 0 {
		return ""
	}
	parts := strings.Split(normalized[0], "+")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "+")
}
