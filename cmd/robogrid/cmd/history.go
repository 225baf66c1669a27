package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/msto63/robogrid/internal/engine"
	"github.com/msto63/robogrid/internal/journal"
)

var (
	historyLimit int
	historyKind  string
	historyStats bool
	historyPrune int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Zeigt das Journal der letzten Läufe",
	Long: `Zeigt die gespeicherten Ergebnisse vergangener Läufe.
Programmtexte werden nicht gespeichert, nur Ergebnis, Schritte und
Endposition.

Beispiele:
  robogrid history --limit 20
  robogrid history --kind error
  robogrid history --stats
  robogrid history --prune 7`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Anzahl der Einträge")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Nur Ergebnisse dieser Art (success, error, no_actions)")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "Statistik statt Einträgen anzeigen")
	historyCmd.Flags().IntVar(&historyPrune, "prune", 0, "Einträge älter als N Tage löschen")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if historyKind != "" {
		if _, ok := engine.ParseOutcomeKind(historyKind); !ok {
			return fmt.Errorf("unbekannte Art %q", historyKind)
		}
	}

	store, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Journal ist deaktiviert (journal.enabled = false).")
		return nil
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	switch {
	case historyPrune > 0:
		n, err := store.Prune(ctx, time.Duration(historyPrune)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d Einträge gelöscht.\n", n)
		return nil

	case historyStats:
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderStats(stats))
		return nil
	}

	entries, err := store.List(ctx, journal.Filter{Kind: historyKind, Limit: historyLimit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Keine Einträge.")
		return nil
	}
	fmt.Fprintln(out, renderHistory(entries))
	return nil
}

func renderHistory(entries []*journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			shortRunID(e.RunID),
			e.Kind,
			strconv.Itoa(e.Steps) + "/" + strconv.Itoa(e.CommandCount),
			fmt.Sprintf("(%d, %d)", e.Final.X, e.Final.Y),
			e.Message,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Zeit", "Lauf", "Ergebnis", "Schritte", "Position", "Meldung").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

func renderStats(stats *journal.Stats) string {
	kinds := make([]string, 0, len(stats.ByKind))
	for k := range stats.ByKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	rows := [][]string{{"Gesamt", strconv.FormatInt(stats.Total, 10)}}
	for _, k := range kinds {
		rows = append(rows, []string{k, strconv.FormatInt(stats.ByKind[k], 10)})
	}
	rows = append(rows, []string{"Ø Schritte", fmt.Sprintf("%.1f", stats.AvgSteps)})
	if !stats.LastEntry.IsZero() {
		rows = append(rows, []string{"Letzter Lauf", stats.LastEntry.Local().Format("2006-01-02 15:04:05")})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Kennzahl", "Wert").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
