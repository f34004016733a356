package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-football-metrics/internal/aggregator"
	"github.com/pable/go-football-metrics/internal/model"
)

// Pitch geometry in StatsBomb units.
const (
	pitchLength = 120.0
	pitchWidth  = 80.0
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func marker(focus bool) string {
	if focus {
		return ">"
	}
	return " "
}

// PrintMatchTable prints the catalog, one row per match.
func PrintMatchTable(w io.Writer, matches []model.MatchDescriptor) {
	table := newTable(w)
	table.Header("MATCH_ID", "DATE", "STAGE", "HOME", "SCORE", "AWAY")
	for _, m := range matches {
		table.Append(
			strconv.FormatInt(m.MatchID, 10),
			dash(m.MatchDate),
			dash(m.Stage),
			m.HomeTeam,
			fmt.Sprintf("%d-%d", m.HomeScore, m.AwayScore),
			m.AwayTeam,
		)
	}
	table.Render()
}

// PrintPlayerList prints the players with events in a match. If focusID is
// non-zero, that player's row is marked with ">".
func PrintPlayerList(w io.Writer, players []model.PlayerRef, focusID int64) {
	table := newTable(w)
	table.Header(" ", "PLAYER_ID", "NAME", "TEAM")
	for _, p := range players {
		table.Append(
			marker(focusID != 0 && p.ID == focusID),
			strconv.FormatInt(p.ID, 10),
			p.Name,
			dash(p.Team),
		)
	}
	table.Render()
}

// PrintPassMap prints one row per pass, start to end. Shot assists are
// flagged in the last column.
func PrintPassMap(w io.Writer, title string, passes []model.NormalizedEvent) {
	fmt.Fprintf(w, "\n%s\n\n", title)
	if len(passes) == 0 {
		fmt.Fprintln(w, "  (no final-third open-play passes)")
		return
	}

	table := newTable(w)
	table.Header("MIN", "FROM", "TO", "LEN", "SHOT_ASSIST")
	var assists int
	for i := range passes {
		p := &passes[i]
		if !p.HasCoords() {
			continue
		}
		assist := ""
		if p.ShotAssist {
			assist = "*"
			assists++
		}
		table.Append(
			minute(p.Minute),
			fmt.Sprintf("(%.1f, %.1f)", *p.X, *p.Y),
			fmt.Sprintf("(%.1f, %.1f)", *p.EndX, *p.EndY),
			fmt.Sprintf("%.1f", passLength(p)),
			assist,
		)
	}
	table.Render()
	fmt.Fprintf(w, "\n%d passes, %d shot assists\n", len(passes), assists)
}

// PrintPassZones prints a 3×3 grid counting where passes start inside
// [minX, 120] × [0, 80]. Columns run towards goal, rows from left to right
// touchline.
func PrintPassZones(w io.Writer, passes []model.NormalizedEvent, minX float64) {
	grid := PassZones(passes, minX)

	table := newTable(w)
	colW := (pitchLength - minX) / 3
	table.Header(
		"CHANNEL",
		fmt.Sprintf("x %.0f–%.0f", minX, minX+colW),
		fmt.Sprintf("x %.0f–%.0f", minX+colW, minX+2*colW),
		fmt.Sprintf("x %.0f–%.0f", minX+2*colW, pitchLength),
	)
	labels := [3]string{"left", "centre", "right"}
	for r := 0; r < 3; r++ {
		table.Append(
			labels[r],
			strconv.Itoa(grid[r][0]),
			strconv.Itoa(grid[r][1]),
			strconv.Itoa(grid[r][2]),
		)
	}
	table.Render()
}

// PassZones buckets pass start locations into a [row][col] grid. Passes
// outside the area or without a start location are ignored.
func PassZones(passes []model.NormalizedEvent, minX float64) [3][3]int {
	var grid [3][3]int
	colW := (pitchLength - minX) / 3
	rowW := pitchWidth / 3
	if colW <= 0 {
		return grid
	}
	for i := range passes {
		p := &passes[i]
		if p.X == nil || p.Y == nil || *p.X < minX || *p.X > pitchLength || *p.Y < 0 || *p.Y > pitchWidth {
			continue
		}
		col := clampIndex(int((*p.X - minX) / colW))
		row := clampIndex(int(*p.Y / rowW))
		grid[row][col]++
	}
	return grid
}

// PrintPer90Table prints the comparison table sorted by xG per 90 descending.
// If focusID is non-zero, that player's row is marked with ">". top limits
// the rows shown (0 = all); the focus player is always included.
func PrintPer90Table(w io.Writer, stats []model.PlayerPer90Stat, focusID int64, top int) {
	rows := make([]model.PlayerPer90Stat, len(stats))
	copy(rows, stats)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].XGPer90 != rows[j].XGPer90 {
			return rows[i].XGPer90 > rows[j].XGPer90
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})

	table := newTable(w)
	table.Header(" ", "#", "PLAYER", "MIN", "F3_PASS", "F3/90", "SHOT_AST", "xG", "xG/90")
	for i := range rows {
		s := &rows[i]
		focus := focusID != 0 && s.PlayerID == focusID
		if top > 0 && i >= top && !focus {
			continue
		}
		table.Append(
			marker(focus),
			strconv.Itoa(i+1),
			s.PlayerName,
			fmt.Sprintf("%.0f", s.MinutesPlayed),
			strconv.Itoa(s.FinalThirdPasses),
			fmt.Sprintf("%.2f", s.FinalThirdPassesPer90),
			strconv.Itoa(s.ShotAssists),
			fmt.Sprintf("%.2f", s.XG),
			fmt.Sprintf("%.2f", s.XGPer90),
		)
	}
	table.Render()
}

// PrintPercentiles prints where one player sits among qualifying players.
func PrintPercentiles(w io.Writer, name string, pcts []model.Percentile) {
	fmt.Fprintf(w, "\n%s vs qualifying players\n\n", name)
	table := newTable(w)
	table.Header("METRIC", "VALUE", "PERCENTILE")
	for _, p := range pcts {
		table.Append(metricLabel(p.Metric), fmt.Sprintf("%.2f", p.Value), fmt.Sprintf("%.0f", p.Pct))
	}
	table.Render()
}

func metricLabel(metric string) string {
	switch metric {
	case aggregator.MetricFinalThirdPer90:
		return "Final-third passes per 90"
	case aggregator.MetricXGPer90:
		return "xG per 90"
	}
	return metric
}

func passLength(p *model.NormalizedEvent) float64 {
	dx, dy := *p.EndX-*p.X, *p.EndY-*p.Y
	return math.Hypot(dx, dy)
}

func minute(m *int) string {
	if m == nil {
		return "—"
	}
	return strconv.Itoa(*m) + "'"
}

func dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > 2 {
		return 2
	}
	return i
}
