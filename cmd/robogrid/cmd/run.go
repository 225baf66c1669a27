package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	rglog "github.com/msto63/robogrid/foundation/core/log"
	"github.com/msto63/robogrid/internal/board"
	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/grid"
	"github.com/msto63/robogrid/internal/journal"
)

var (
	runDelay     time.Duration
	runQuiet     bool
	runNoColor   bool
	runNoJournal bool
)

var runCmd = &cobra.Command{
	Use:   "run <datei|->",
	Short: "Führt ein Programm ohne Oberfläche aus",
	Long: `Führt ein Programm im Terminal aus und zeigt nach jedem Schritt
das Raster an.

Exit-Status:
  0  Programm vollständig ausgeführt
  1  Fehler (Rand überschritten, unbekannte Anweisung)
  2  Keine Anweisungen vorhanden

Beispiele:
  robogrid run programm.txt
  echo -e "right\ndown\ncolor" | robogrid run - --quiet`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().DurationVar(&runDelay, "delay", 0, "Verzögerung pro Schritt (default: aus Config)")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Nur Positionen statt Raster ausgeben")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "Raster ohne Farben ausgeben")
	runCmd.Flags().BoolVar(&runNoJournal, "no-journal", false, "Ergebnis nicht im Journal speichern")
}

// stepPrinter writes the board after every robot update. It must follow the
// board in the renderer chain.
type stepPrinter struct {
	board *board.Board
	out   io.Writer
	quiet bool
	color bool
	step  int
}

func (p *stepPrinter) SetRobot(pos grid.Position, paint engine.PaintKind) {
	if p.quiet {
		fmt.Fprintf(p.out, "[%3d] (%d, %d) %s\n", p.step, pos.X, pos.Y, paint)
	} else {
		fmt.Fprintf(p.out, "Schritt %d  Position (%d, %d)\n%s\n\n", p.step, pos.X, pos.Y, p.board.Render(p.color))
	}
	p.step++
}

func (p *stepPrinter) HighlightLine(int) {}
func (p *stepPrinter) ClearHighlights()  {}
func (p *stepPrinter) ClearProgram()     {}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Config", err)
		return &exitError{code: 1}
	}
	source, err := readSource(cmd, args[0])
	if err != nil {
		printError("Programm lesen", err)
		return &exitError{code: 1}
	}
	g, err := newGrid(cfg)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	if !verbose {
		logger = logger.WithLevel(rglog.LevelWarn)
	}

	delay := cfg.Engine.StepDelay.Duration
	if runDelay > 0 {
		delay = runDelay
	}

	b := board.New(g)
	printer := &stepPrinter{board: b, out: cmd.OutOrStdout(), quiet: runQuiet, color: !runNoColor}
	done := make(chan engine.Outcome, 1)
	reporters := engine.Reporters{engine.ReporterFunc(func(o engine.Outcome) { done <- o })}

	if !runNoJournal {
		store, err := openJournal(cfg)
		if err != nil {
			logger.WarnWithErr("journal unavailable", err)
		} else if store != nil {
			defer store.Close()
			reporters = append(engine.Reporters{journal.NewReporter(store, logger)}, reporters...)
		}
	}

	eng := engine.New(engine.Options{
		Grid:      g,
		StepDelay: delay,
		Renderer:  engine.Renderers{b, printer},
		Reporter:  reporters,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng.Start(source)

	select {
	case o := <-done:
		return report(cmd.OutOrStdout(), o)
	case <-ctx.Done():
		eng.Stop()
		fmt.Fprintln(cmd.ErrOrStderr(), "Abgebrochen.")
		return &exitError{code: 130}
	}
}

// report prints the outcome and maps it to the exit status
func report(out io.Writer, o engine.Outcome) error {
	switch o.Kind {
	case engine.OutcomeSuccess:
		fmt.Fprintf(out, "%s (%d Schritte, Position (%d, %d))\n", o.Message, o.Steps, o.Position.X, o.Position.Y)
		return nil
	case engine.OutcomeNoActions:
		fmt.Fprintln(out, o.Message)
		return &exitError{code: 2}
	default:
		fmt.Fprintf(out, "Fehler nach %d Schritten: %s\n", o.Steps, o.Message)
		return &exitError{code: 1}
	}
}
