package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-football-metrics/internal/catalog"
	"github.com/pable/go-football-metrics/internal/report"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long: `Open a session over the tournament data. The pipeline runs once and is reused
until a data file changes. Type 'help' for available commands.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	s, err := currentSession()
	if err != nil {
		return err
	}
	focus := cfg.FocusPlayerID

	cGreeting.Println("fbmetrics shell")
	cMuted.Printf("%d matches, %d events, %d qualifying players. Focus: %s (%d), %s\n",
		len(s.Matches), len(s.Events), len(s.Per90), s.PlayerName(focus), focus, cfg.FocusTeam)
	cMuted.Printf("session %s built %s\n", s.ID[:8], s.BuiltAt.Format("15:04:05"))
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("fbmetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		if cmd == "exit" || cmd == "quit" {
			return nil
		}
		if cmd == "help" {
			shellHelp()
			continue
		}

		// Re-fetch so edits to the data files show up mid-session.
		s, err = currentSession()
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		switch cmd {
		case "matches":
			printMatchList(s.Matches, rest, rest == "all")
		case "resolve":
			teamA, teamB, ok := strings.Cut(rest, " vs ")
			if !ok {
				cError.Fprintln(os.Stderr, "usage: resolve <teamA> vs <teamB>")
				continue
			}
			id, err := catalog.Resolve(s.Matches, strings.TrimSpace(teamA), strings.TrimSpace(teamB))
			if err != nil {
				shellError(err)
				continue
			}
			fmt.Println(id)
		case "players":
			id, ok := shellID(args, 0, "usage: players <match_id>")
			if !ok {
				continue
			}
			players, err := s.Store.PlayersInMatch(id)
			if err != nil {
				shellError(err)
				continue
			}
			report.PrintPlayerList(os.Stdout, players, focus)
		case "passes":
			matchID, ok := shellID(args, 0, "usage: passes <match_id> [player_id]")
			if !ok {
				continue
			}
			playerID := focus
			if len(args) > 1 {
				if playerID, ok = shellID(args, 1, "usage: passes <match_id> [player_id]"); !ok {
					continue
				}
			}
			if err := printPasses(s, matchID, playerID); err != nil {
				shellError(err)
			}
		case "per90":
			top := 20
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					cError.Fprintln(os.Stderr, "usage: per90 [top]")
					continue
				}
				top = n
			}
			printPer90(s, focus, top)
		case "focus":
			id, ok := shellID(args, 0, "usage: focus <player_id>")
			if !ok {
				continue
			}
			focus = id
			cMuted.Printf("focus: %s (%d)\n", s.PlayerName(focus), focus)
		case "sql":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			if err := printQuery(s.Store, rest); err != nil {
				shellError(err)
			}
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"matches [team|all]", "list matches (default: focus team)"},
		{"resolve <teamA> vs <teamB>", "find the match between two teams"},
		{"players <match_id>", "players with events in a match"},
		{"passes <match_id> [player_id]", "final-third pass map (default: focus player)"},
		{"per90 [top]", "per-90 comparison with focus percentiles"},
		{"focus <player_id>", "change the focus player"},
		{"sql <query>", "query the session store"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-34s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// shellError reports err without ending the session. Lookups that miss are
// warnings, not failures.
func shellError(err error) {
	if catalog.IsNotFound(err) {
		cWarn.Fprintln(os.Stderr, err)
		return
	}
	cError.Fprintf(os.Stderr, "error: %v\n", err)
}

func shellID(args []string, i int, usage string) (int64, bool) {
	if len(args) <= i {
		cError.Fprintln(os.Stderr, usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil {
		cError.Fprintf(os.Stderr, "invalid id %q\n", args[i])
		return 0, false
	}
	return id, true
}
