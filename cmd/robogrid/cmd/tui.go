package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/robogrid/internal/tui/robogrid"
	"github.com/msto63/robogrid/pkg/core/logging"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [datei]",
	Short: "Startet die interaktive Terminal-Oberfläche",
	Long: `Startet den Editor mit Raster, Ablauf und Warteschlange.

Tastenkuerzel:
  F5          Programm starten
  F6          Anhalten
  F7          Fortsetzen
  F8          Neustart (Roboter zurück, Programm bleibt)
  F9          Zurücksetzen (Programm wird geleert)
  F10         Letztes Programm erneut ausführen
  Esc         Editor fokussieren / verlassen
  ↑ ↓ ← → r c Anweisung anhängen (Editor nicht fokussiert)
  Ctrl+C      Beenden`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := newGrid(cfg)
	if err != nil {
		return err
	}

	var source string
	if len(args) == 1 {
		if source, err = readSource(cmd, args[0]); err != nil {
			return err
		}
	}

	logFile, err := logging.OpenLogFile(cfg.TUI.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(cfg, logFile)

	store, err := openJournal(cfg)
	if err != nil {
		logger.WarnWithErr("journal unavailable", err)
	}
	if store != nil {
		defer store.Close()
	}

	return robogrid.Run(robogrid.Config{
		Grid:      g,
		StepDelay: cfg.Engine.StepDelay.Duration,
		Program:   source,
		Journal:   store,
		Logger:    logger,
	})
}
