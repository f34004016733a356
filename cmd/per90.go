package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/aggregator"
	"github.com/pable/go-football-metrics/internal/report"
	"github.com/pable/go-football-metrics/internal/session"
)

var (
	per90FocusID int64
	per90Top     int
)

// per90Cmd compares every player who reached the minutes threshold.
var per90Cmd = &cobra.Command{
	Use:   "per90",
	Short: "Per-90 comparison of qualifying players",
	Long: `Print final-third passes per 90 and xG per 90 for every player with at least
min_minutes of playing time, sorted by xG per 90. The focus player is marked
and their percentile ranks are printed below the table.`,
	Args: cobra.NoArgs,
	RunE: runPer90,
}

func init() {
	per90Cmd.Flags().Int64Var(&per90FocusID, "focus", 0, "player id to highlight (default: focus_player_id)")
	per90Cmd.Flags().IntVar(&per90Top, "top", 20, "rows to show (0 = all); the focus player is always shown")
}

func runPer90(cmd *cobra.Command, args []string) error {
	s, err := currentSession()
	if err != nil {
		return err
	}
	focus := per90FocusID
	if focus == 0 {
		focus = cfg.FocusPlayerID
	}
	printPer90(s, focus, per90Top)
	return nil
}

// printPer90 is shared with the shell.
func printPer90(s *session.Session, focus int64, top int) {
	if len(s.Per90) == 0 {
		fmt.Fprintf(os.Stdout, "No player reached %.0f minutes.\n", cfg.MinMinutes)
		return
	}
	fmt.Fprintf(os.Stdout, "\n%d players with ≥ %.0f minutes\n\n", len(s.Per90), cfg.MinMinutes)
	report.PrintPer90Table(os.Stdout, s.Per90, focus, top)

	pcts, ok := aggregator.Percentiles(s.Per90, focus)
	if !ok {
		fmt.Fprintf(os.Stdout, "\nPlayer %d did not reach the minutes threshold.\n", focus)
		return
	}
	report.PrintPercentiles(os.Stdout, s.PlayerName(focus), pcts)
}
