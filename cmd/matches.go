package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/catalog"
	"github.com/pable/go-football-metrics/internal/model"
	"github.com/pable/go-football-metrics/internal/report"
)

var (
	matchesTeam string
	matchesAll  bool
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the focus team's matches, or any team's",
	Long: `List tournament matches. Without flags only matches of focus_team from the
config are shown; use --team for another team or --all for the whole catalog.`,
	Args: cobra.NoArgs,
	RunE: runMatches,
}

func init() {
	matchesCmd.Flags().StringVar(&matchesTeam, "team", "", "only matches involving this team (default: focus_team)")
	matchesCmd.Flags().BoolVar(&matchesAll, "all", false, "list every match in the catalog")
}

func runMatches(cmd *cobra.Command, args []string) error {
	s, err := currentSession()
	if err != nil {
		return err
	}
	printMatchList(s.Matches, matchesTeam, matchesAll)
	return nil
}

// selectMatches picks the match list to offer. team falls back to focusTeam;
// all overrides both.
func selectMatches(matches []model.MatchDescriptor, team, focusTeam string, all bool) (string, []model.MatchDescriptor) {
	if all {
		return "", matches
	}
	if team == "" {
		team = focusTeam
	}
	return team, catalog.ForTeam(matches, team)
}

// printMatchList is shared with the shell.
func printMatchList(matches []model.MatchDescriptor, team string, all bool) {
	team, matches = selectMatches(matches, team, cfg.FocusTeam, all)
	if len(matches) == 0 {
		if team != "" {
			fmt.Fprintf(os.Stdout, "No matches found for %q.\n", team)
		} else {
			fmt.Fprintln(os.Stdout, "The match catalog is empty.")
		}
		return
	}
	report.PrintMatchTable(os.Stdout, matches)
}
