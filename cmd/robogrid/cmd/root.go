package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	rglog "github.com/msto63/robogrid/foundation/core/log"
	"github.com/msto63/robogrid/internal/grid"
	"github.com/msto63/robogrid/internal/journal"
	"github.com/msto63/robogrid/pkg/core/config"
	"github.com/msto63/robogrid/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "robogrid",
	Short: "RoboGrid - Roboter-Raster-Interpreter",
	Long: `RoboGrid führt einfache Roboterprogramme auf einem Raster aus.

Ein Programm besteht aus einer Anweisung pro Zeile:
  up, down, left, right   Roboter um ein Feld bewegen
  rotate                  Drehen (ohne Bewegung)
  color                   Aktuelles Feld einfärben

Der Roboter startet oben links. Ein Schritt über den Rand oder eine
unbekannte Anweisung beendet den Lauf mit einem Fehler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints a failure once
func Execute() error {
	err := rootCmd.Execute()
	var exit *exitError
	if err != nil && !errors.As(err, &exit) {
		fmt.Fprintf(os.Stderr, "Fehler: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: $ROBOGRID_CONFIG oder ./configs/robogrid.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

// exitError ends the process with a specific status without further output
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// ExitCode maps an Execute error to a process exit status
func ExitCode(err error) int {
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// newLogger builds the process logger from the general settings
func newLogger(cfg *config.Config, out io.Writer) *rglog.Logger {
	level := cfg.General.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LoggerConfig{
		ServiceName: cfg.General.Name,
		Level:       level,
		Format:      cfg.General.LogFormat,
		Output:      out,
	})
}

func newGrid(cfg *config.Config) (*grid.Grid, error) {
	return grid.New(cfg.Grid.Width, cfg.Grid.Height)
}

// openJournal returns nil when the journal is disabled
func openJournal(cfg *config.Config) (journal.Store, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	store, err := journal.NewSQLiteStore(journal.SQLiteConfig{Path: cfg.Journal.Path})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// readSource reads a program from a file or, for "-", from stdin
func readSource(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}
