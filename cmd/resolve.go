package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/catalog"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <teamA> <teamB>",
	Short: "Find the match between two teams, in either home/away order",
	Args:  cobra.ExactArgs(2),
	RunE:  runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	s, err := currentSession()
	if err != nil {
		return err
	}
	id, err := catalog.Resolve(s.Matches, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, id)
	return nil
}
