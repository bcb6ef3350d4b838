// Package main implements winstate, a tool to inspect and edit the settings
// file where windows persist their geometry and visibility.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/winstate/internal/config"
	"github.com/Gaurav-Gosain/winstate/internal/settings"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Global flags
var (
	debugMode    bool
	settingsFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "winstate",
		Short: "Inspect and edit persisted window state",
		Long: `winstate - persisted window state

Reads and writes the binary settings file where applications remember their
window position, size, maximized and fullscreen state, and which of those are
restored on startup.`,
		Example: `  # Show every stored setting
  winstate dump

  # Move the window back to the top left corner
  winstate set RootView.Position point 0,0

  # Only restore the size on next start
  winstate policy size

  # Follow changes while an application runs
  winstate watch`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "file", "f", "", "Settings file (defaults to the configured one)")

	dumpCmd := &cobra.Command{
		Use:     "dump",
		Aliases: []string{"ls", "list"},
		Short:   "Print every stored setting",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpSettings(cmd.OutOrStdout())
		},
	}

	getCmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getSetting(cmd.OutOrStdout(), args[0])
		},
	}

	setCmd := &cobra.Command{
		Use:   "set KEY KIND VALUE",
		Short: "Store one setting",
		Long: `Store one setting

KIND is one of bool, int32, int64, float32, float64, string, point, pointf,
size, sizef, rect, rectf or color. Points are written x,y, sizes WxH,
rectangles x,y,w,h and colors #rrggbb or #rrggbbaa.`,
		Example: `  winstate set RootView.Maximized bool true
  winstate set RootView.Size size 1280x720
  winstate set Theme.Accent color '#ff8800'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setSetting(cmd.OutOrStdout(), args[0], args[1], args[2])
		},
	}

	rmCmd := &cobra.Command{
		Use:     "rm KEY...",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove settings",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeSettings(cmd.OutOrStdout(), args)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the settings file to the current schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateSettings(cmd.OutOrStdout())
		},
	}

	policyCmd := &cobra.Command{
		Use:   "policy [FACET...]",
		Short: "Show or change which facets are restored on startup",
		Long: `Show or change which facets are restored on startup

Facets are position, size, maximized and fullscreen. "all" and "none" are
accepted too. Without arguments the current policy is printed.`,
		Example: `  winstate policy
  winstate policy position size
  winstate policy none`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setPolicy(cmd.OutOrStdout(), args)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print settings as they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchSettings(cmd.Context(), cmd.OutOrStdout())
		},
	}

	// Config command group
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage winstate configuration",
		Long:  `Manage winstate configuration file and settings`,
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConfigPath()
		},
	}

	configEditCmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		Long: `Open the winstate configuration file in your default editor

The editor is determined by checking $EDITOR, $VISUAL, or common editors
like vim, vi, nano, and emacs in that order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfigFile()
		},
	}

	configResetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Long: `Reset the winstate configuration file to default settings

This will overwrite your existing configuration after confirmation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return resetConfigToDefaults()
		},
	}

	configCmd.AddCommand(configPathCmd, configEditCmd, configResetCmd)

	keybindsCmd := &cobra.Command{
		Use:     "keybinds",
		Aliases: []string{"keys"},
		Short:   "List the demo keybindings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKeybindings(cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(dumpCmd, getCmd, setCmd, rmCmd, migrateCmd, policyCmd, watchCmd, configCmd, keybindsCmd)

	// Execute with fang
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s\nBy: %s", version, commit, date, builtBy)),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// loadConfig returns the user config, falling back to defaults so a broken
// config file never locks users out of their settings.
func loadConfig() *config.Config {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		logger.Warn("using default configuration", "err", err)
		return config.DefaultConfig()
	}
	return cfg
}

func setupLogging() error {
	level := loadConfig().LogLevel()
	if debugMode {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	settings.SetLogLevel(level)
	window.SetLogLevel(level)
	return nil
}

// resolveSettingsPath returns --file or the configured settings file.
func resolveSettingsPath() (string, error) {
	if settingsFile != "" {
		return settingsFile, nil
	}
	path, err := loadConfig().SettingsPath()
	if err != nil {
		return "", fmt.Errorf("could not determine settings path: %w", err)
	}
	return path, nil
}
