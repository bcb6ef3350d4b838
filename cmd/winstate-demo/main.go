// Package main is a small ebiten application that remembers its window
// geometry and visibility across restarts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"github.com/Gaurav-Gosain/winstate/internal/config"
	"github.com/Gaurav-Gosain/winstate/internal/ebitenwin"
	"github.com/Gaurav-Gosain/winstate/internal/settings"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	debugMode    bool
	assertions   bool
	settingsFile string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "demo",
})

func main() {
	rootCmd := &cobra.Command{
		Use:   "winstate-demo",
		Short: "A window that remembers where you left it",
		Long: `winstate-demo - persisted window state demo

Opens a window and restores its position, size, maximized and fullscreen
state from the previous run. Press the keys listed in the window to change
its state, then quit and start it again.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&assertions, "assert", false, "Panic when the platform reports impossible transitions")
	rootCmd.Flags().StringVarP(&settingsFile, "file", "f", "", "Settings file (defaults to the configured one)")

	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(fmt.Sprintf("%s\nCommit: %s\nBuilt: %s", version, commit, date)),
	); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadUserConfig()
	if err != nil {
		logger.Warn("using default configuration", "err", err)
		cfg = config.DefaultConfig()
	}

	level := cfg.LogLevel()
	if debugMode {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	settings.SetLogLevel(level)
	window.SetLogLevel(level)

	path := settingsFile
	if path == "" {
		if path, err = cfg.SettingsPath(); err != nil {
			return fmt.Errorf("could not determine settings path: %w", err)
		}
	}
	store, err := settings.Open(path, settings.WithDebounce(cfg.Debounce()))
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to save settings", "err", err)
		}
	}()

	ebiten.SetWindowTitle("winstate demo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	win := ebitenwin.New()
	ctrl := window.New(win, store,
		window.WithAssertions(assertions || cfg.Window.Assertions),
		window.WithDefaultPersistence(cfg.Persistence()),
	)
	game := newGame(cfg, win, ctrl)
	ctrl.Listen(game.listener())

	if err := ctrl.Restore(cfg.Window.DefaultWidth, cfg.Window.DefaultHeight, cfg.DefaultVisibility()); err != nil {
		return err
	}
	logger.Info("window restored", "file", path, "visibility", ctrl.Visibility(), "geometry", ctrl.WindowedGeometry())

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("game loop: %w", err)
	}
	return nil
}
