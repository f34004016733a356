package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/catalog"
	"github.com/pable/go-football-metrics/internal/report"
)

var playersCmd = &cobra.Command{
	Use:   "players <match_id>",
	Short: "List the players with events in a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayers,
}

func runPlayers(cmd *cobra.Command, args []string) error {
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}
	s, err := currentSession()
	if err != nil {
		return err
	}
	m, ok := catalog.Find(s.Matches, matchID)
	if !ok {
		return fmt.Errorf("match %d is not in the catalog", matchID)
	}

	players, err := s.Store.PlayersInMatch(matchID)
	if err != nil {
		return fmt.Errorf("query players: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n%s\n\n", m.Label())
	report.PrintPlayerList(os.Stdout, players, cfg.FocusPlayerID)
	return nil
}
