// Package main provides antyctl, the command line companion for the Anty
// mascot: catalog tooling, headless simulation and a terminal monitor.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/normanking/anty/internal/config"
	"github.com/normanking/anty/internal/logging"
)

var (
	// Version information (set at build time)
	version = "dev"

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	stateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4"))
)

// Global flags
var (
	configPath string
	serverURL  string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "antyctl",
		Short: "Anty mascot tooling",
		Long: titleStyle.Render("antyctl") + `

Inspect and validate the emotion catalog, replay emotion scripts in
simulated time, and watch or drive a running preview over its debug server.

` + dimStyle.Render("Use 'antyctl [command] --help' for more information."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.anty/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "url", "http://127.0.0.1:7717", "debug server base URL, or \"auto\" to discover one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(
		newCatalogCmd(),
		newValidateCmd(),
		newSimulateCmd(),
		newMonitorCmd(),
		newSendCmd(),
		newStateCmd(),
		newLogsCmd(),
		newDiscoverCmd(),
	)
	return rootCmd
}

// loadConfig reads --config, or the default location without creating it.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return config.DefaultConfig(), nil
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return config.DefaultConfig(), nil
	}
	return config.LoadFile(path)
}

// newLogger logs to stderr with --verbose and nowhere otherwise.
func newLogger(w io.Writer) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	l, err := logging.New(&logging.Config{Level: logging.LevelDebug, Output: zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}})
	if err != nil {
		return zerolog.Nop()
	}
	return l.Zerolog()
}
