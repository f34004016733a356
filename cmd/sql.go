package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the session store",
	Long: `Run an arbitrary SQL query against the in-memory session store and print
results as a table. The store is rebuilt from the data files on every run.

Schema overview:
  matches(match_id, home_team, away_team, match_date, stage, home_score, away_score)
  events(seq, match_id, player_id, player_name, team, event_type,
    x, y, end_x, end_y, shot_assist, xg, minute)
  player_per90(player_id, player_name, minutes_played, final_third_passes,
    shot_assists, xg, final_third_passes_per90, xg_per90)

event_type is 'Pass' or 'Shot'. Set-piece passes are already excluded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	s, err := currentSession()
	if err != nil {
		return err
	}
	return printQuery(s.Store, strings.Join(args, " "))
}

// printQuery is shared with the shell.
func printQuery(db *storage.DB, query string) error {
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
