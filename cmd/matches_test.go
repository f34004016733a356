package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pable/go-football-metrics/internal/model"
)

func TestSelectMatches(t *testing.T) {
	catalogue := []model.MatchDescriptor{
		{MatchID: 1, HomeTeam: "Argentina", AwayTeam: "Saudi Arabia"},
		{MatchID: 2, HomeTeam: "France", AwayTeam: "Australia"},
		{MatchID: 3, HomeTeam: "Poland", AwayTeam: "Argentina"},
	}
	ids := func(ms []model.MatchDescriptor) []int64 {
		out := make([]int64, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.MatchID)
		}
		return out
	}

	tests := []struct {
		name     string
		team     string
		all      bool
		wantTeam string
		wantIDs  []int64
	}{
		{"defaults to focus team", "", false, "Argentina", []int64{1, 3}},
		{"explicit team wins", "France", false, "France", []int64{2}},
		{"all ignores teams", "France", true, "", []int64{1, 2, 3}},
		{"unknown team", "Brazil", false, "Brazil", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, got := selectMatches(catalogue, tt.team, "Argentina", tt.all)
			assert.Equal(t, tt.wantTeam, team)
			assert.Equal(t, tt.wantIDs, ids(got))
		})
	}
}

func TestSelectMatchesWithoutFocusTeam(t *testing.T) {
	catalogue := []model.MatchDescriptor{{MatchID: 1, HomeTeam: "Argentina", AwayTeam: "Mexico"}}
	team, got := selectMatches(catalogue, "", "", false)
	assert.Empty(t, team)
	assert.Len(t, got, 1, "an empty focus team lists the whole catalog")
}
