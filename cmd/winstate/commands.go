package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"text/tabwriter"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/colorprofile"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/winstate/internal/codec"
	"github.com/Gaurav-Gosain/winstate/internal/config"
	"github.com/Gaurav-Gosain/winstate/internal/settings"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// snapshot is a settings file read without taking the owner lock. Writers
// replace the file atomically, so a plain read never sees a partial save.
type snapshot struct {
	path   string
	values map[string]any
	info   os.FileInfo
}

func readSnapshot() (*snapshot, error) {
	path, err := resolveSettingsPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &snapshot{path: path, values: map[string]any{}}, nil
	}
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	values, err := codec.DecodeMap(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &snapshot{path: path, values: values, info: info}, nil
}

// openStore takes ownership of the settings file for a mutating command.
func openStore() (*settings.Store, error) {
	path, err := resolveSettingsPath()
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(path, settings.WithLogger(logger))
	if errors.Is(err, settings.ErrLocked) {
		return nil, fmt.Errorf("%s is in use by a running application, close it first", path)
	}
	return store, err
}

// withStore runs fn against the owned store and flushes it afterwards.
func withStore(fn func(*settings.Store) error) (err error) {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()
	if err := fn(store); err != nil {
		return err
	}
	return store.Sync()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func dumpSettings(w io.Writer) error {
	snap, err := readSnapshot()
	if err != nil {
		return err
	}
	if snap.info == nil {
		fmt.Fprintf(w, "No settings saved yet at %s\n", snap.path)
		return nil
	}

	keys := sortedKeys(snap.values)
	if !isTerminal(w) {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, k := range keys {
			v := snap.values[k]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", k, codec.KindOf(v), formatValue(v))
		}
		return tw.Flush()
	}

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		v := snap.values[k]
		rows = append(rows, []string{k, codec.KindOf(v).String(), formatValue(v)})
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().
		Padding(0, 1)

	kindStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("Key", "Kind", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1:
				return kindStyle
			}
			return cellStyle
		})

	out := colorprofile.NewWriter(w, os.Environ())
	fmt.Fprintln(out)
	fmt.Fprintln(out, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")).Render(snap.path))
	fmt.Fprintln(out, t.Render())

	version, _ := snap.values[window.KeyVersion].(int32)
	note := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true).
		Render(fmt.Sprintf("%d entries, %s, saved %s, schema version %d",
			len(keys), humanize.Bytes(uint64(snap.info.Size())), humanize.Time(snap.info.ModTime()), version))
	fmt.Fprintln(out, note)
	fmt.Fprintln(out)
	return nil
}

func getSetting(w io.Writer, key string) error {
	snap, err := readSnapshot()
	if err != nil {
		return err
	}
	v, ok := snap.values[key]
	if !ok {
		return fmt.Errorf("no setting %q in %s", key, snap.path)
	}
	fmt.Fprintln(w, formatValue(v))
	return nil
}

func setSetting(w io.Writer, key, kindName, raw string) error {
	kind, ok := codec.ParseKind(kindName)
	if !ok {
		return fmt.Errorf("unknown kind %q", kindName)
	}
	v, err := parseValue(kind, raw)
	if err != nil {
		return fmt.Errorf("invalid %s value: %w", kind, err)
	}
	return withStore(func(store *settings.Store) error {
		if err := store.Set(key, v, false); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s = %s\n", key, formatValue(v))
		return nil
	})
}

func removeSettings(w io.Writer, keys []string) error {
	return withStore(func(store *settings.Store) error {
		for _, key := range keys {
			if !store.Contains(key) {
				logger.Warn("no such setting", "key", key)
				continue
			}
			if err := store.Remove(key); err != nil {
				return err
			}
			fmt.Fprintf(w, "removed %s\n", key)
		}
		return nil
	})
}

func migrateSettings(w io.Writer) error {
	return withStore(func(store *settings.Store) error {
		found, err := window.Migrate(store, logger)
		if err != nil {
			return err
		}
		switch {
		case found > window.CurrentVersion:
			fmt.Fprintf(w, "Settings use schema version %d, newer than this tool (%d). Left untouched.\n", found, window.CurrentVersion)
		case found == window.CurrentVersion:
			fmt.Fprintf(w, "Settings already at schema version %d\n", found)
		default:
			fmt.Fprintf(w, "Migrated settings from schema version %d to %d\n", found, window.CurrentVersion)
		}
		return nil
	})
}

func setPolicy(w io.Writer, names []string) error {
	if len(names) == 0 {
		snap, err := readSnapshot()
		if err != nil {
			return err
		}
		raw, ok := snap.values[window.KeyPersistence].(int32)
		if !ok {
			fmt.Fprintf(w, "%s (default)\n", loadConfig().Persistence())
			return nil
		}
		fmt.Fprintln(w, window.Persistence(raw)&window.PersistAll)
		return nil
	}

	policy, err := window.ParsePersistence(names...)
	if err != nil {
		return err
	}
	return withStore(func(store *settings.Store) error {
		if err := store.Set(window.KeyPersistence, int32(policy), false); err != nil {
			return err
		}
		fmt.Fprintf(w, "Restoring %s on next start\n", policy)
		return nil
	})
}

func printConfigPath() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}
	fmt.Println(path)
	return nil
}

// editConfigFile opens the config file in $EDITOR
func editConfigFile() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	// Ensure config file exists (create default if needed)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("Config file doesn't exist, creating default at: %s\n", configPath)
		if _, err := config.LoadUserConfig(); err != nil {
			return fmt.Errorf("could not create config file: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"vim", "vi", "nano", "emacs"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Please set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, configPath)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}

	// Surface mistakes right away instead of on the next application start
	if _, err := config.LoadConfigFile(configPath); err != nil {
		logger.Warn("configuration has problems", "err", err)
	}
	return nil
}

// resetConfigToDefaults resets the configuration file to default settings
func resetConfigToDefaults() error {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("could not determine config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Warning: This will overwrite your existing configuration at:\n")
		fmt.Printf("  %s\n\n", configPath)
		fmt.Printf("Are you sure you want to reset to defaults? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		response = strings.ToLower(strings.TrimSpace(response))

		if response != "yes" && response != "y" {
			fmt.Println("Reset cancelled.")
			return nil
		}
	}

	if err := config.WriteConfigFile(configPath, config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Configuration reset to defaults\n")
	fmt.Printf("  Location: %s\n", configPath)
	fmt.Println("\nYou can customize it with: winstate config edit")
	return nil
}

// printKeybindings prints the demo keybindings in a pretty table
func printKeybindings(w io.Writer) error {
	registry := config.NewKeybindRegistry(loadConfig())

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().
		Padding(0, 1)

	out := colorprofile.NewWriter(w, os.Environ())
	for _, section := range config.GetKeybindings(registry) {
		rows := make([][]string, 0, len(section.Bindings))
		for _, b := range section.Bindings {
			rows = append(rows, []string{b.Key, b.Description})
		}
		if len(rows) == 0 {
			continue
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
			Headers("Keys", "Action").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(out, lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render(section.Title))
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out)
	}
	return nil
}
