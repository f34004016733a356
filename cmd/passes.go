package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/catalog"
	"github.com/pable/go-football-metrics/internal/report"
	"github.com/pable/go-football-metrics/internal/session"
	"github.com/pable/go-football-metrics/internal/storage"
)

var (
	passesMatchID  int64
	passesHome     string
	passesAway     string
	passesPlayerID int64
)

var passesCmd = &cobra.Command{
	Use:   "passes (--match <id> | --home <team> --away <team>)",
	Short: "Final-third open-play pass map for one player in one match",
	Long: `Print every open-play pass a player started in the final third of one match,
plus a 3×3 zone breakdown. The match is given by id or by its two teams in
either order. The player defaults to the configured focus player.`,
	Args: cobra.NoArgs,
	RunE: runPasses,
}

func init() {
	f := passesCmd.Flags()
	f.Int64Var(&passesMatchID, "match", 0, "match id")
	f.StringVar(&passesHome, "home", "", "one team of the match")
	f.StringVar(&passesAway, "away", "", "the other team of the match")
	f.Int64Var(&passesPlayerID, "player", 0, "StatsBomb player id (default: focus_player_id)")
}

func runPasses(cmd *cobra.Command, args []string) error {
	s, err := currentSession()
	if err != nil {
		return err
	}

	matchID := passesMatchID
	if matchID == 0 {
		if passesHome == "" || passesAway == "" {
			return errors.New("either --match or both --home and --away are required")
		}
		if matchID, err = catalog.Resolve(s.Matches, passesHome, passesAway); err != nil {
			return err
		}
	}
	playerID := passesPlayerID
	if playerID == 0 {
		playerID = cfg.FocusPlayerID
	}
	return printPasses(s, matchID, playerID)
}

// printPasses is shared with the shell.
func printPasses(s *session.Session, matchID, playerID int64) error {
	m, ok := catalog.Find(s.Matches, matchID)
	if !ok {
		return fmt.Errorf("match %d is not in the catalog", matchID)
	}
	passes, err := s.Store.FinalThirdPasses(storage.PassFilter{
		MatchID:  matchID,
		PlayerID: playerID,
		MinX:     cfg.FinalThirdX,
	})
	if err != nil {
		return fmt.Errorf("query passes: %w", err)
	}

	name := s.PlayerName(playerID)
	if name == "" {
		name = fmt.Sprintf("player %d", playerID)
	}
	report.PrintPassMap(os.Stdout, fmt.Sprintf("%s: final-third open-play passes, %s", name, m.Label()), passes)
	if len(passes) > 0 {
		fmt.Fprintln(os.Stdout)
		report.PrintPassZones(os.Stdout, passes, cfg.FinalThirdX)
	}
	return nil
}
