package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/robogrid/internal/program"
)

var checkCmd = &cobra.Command{
	Use:   "check <datei|->",
	Short: "Prüft ein Programm auf unbekannte Anweisungen",
	Long: `Zerlegt ein Programm und listet alle Anweisungen mit Zeilennummer.
Unbekannte Anweisungen werden markiert; in diesem Fall ist der
Exit-Status 1.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	source, err := readSource(cmd, args[0])
	if err != nil {
		printError("Programm lesen", err)
		return &exitError{code: 1}
	}

	out := cmd.OutOrStdout()
	prog := program.Parse(source)
	if prog.Empty() {
		fmt.Fprintln(out, "Keine Anweisungen gefunden.")
		return nil
	}

	for i, c := range prog {
		marker := ""
		if c.Kind == program.Unknown {
			marker = "  <- unbekannt"
		}
		fmt.Fprintf(out, "%3d  Zeile %-3d %s%s\n", i, c.Line+1, c.String(), marker)
	}

	unknown := program.Validate(prog)
	fmt.Fprintf(out, "\n%d Anweisung(en), %d unbekannt\n", prog.Len(), len(unknown))
	if len(unknown) > 0 {
		return &exitError{code: 1}
	}
	return nil
}
