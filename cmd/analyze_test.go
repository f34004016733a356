package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-football-metrics/internal/aggregator"
	"github.com/pable/go-football-metrics/internal/config"
	"github.com/pable/go-football-metrics/internal/logging"
	"github.com/pable/go-football-metrics/internal/model"
	"github.com/pable/go-football-metrics/internal/session"
)

func buildTestSession(t *testing.T) *session.Session {
	t.Helper()
	dir := t.TempDir()
	events := filepath.Join(dir, "events")
	require.NoError(t, os.MkdirAll(events, 0o755))
	matches := filepath.Join(dir, "matches.json")
	require.NoError(t, os.WriteFile(matches, []byte(`[
  {"match_id": 1, "home_team": {"home_team_name": "Argentina"}, "away_team": {"away_team_name": "France"}}
]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(events, "1.json"), []byte(`[
  {"type": {"name": "Pass"}, "player": {"id": 5503, "name": "Lionel Messi"}, "location": [90, 30], "minute": 0,
   "pass": {"end_location": [105, 35], "shot_assist": true}},
  {"type": {"name": "Shot"}, "player": {"id": 5503, "name": "Lionel Messi"}, "location": [100, 40], "minute": 120,
   "shot": {"statsbomb_xg": 0.76}},
  {"type": {"name": "Pass"}, "player": {"id": 3009, "name": "Kylian Mbappé"}, "location": [60, 30], "minute": 1,
   "pass": {"end_location": [70, 35]}}
]`), 0o644))

	s, err := session.Build(session.Source{MatchesPath: matches, EventsDir: events},
		aggregator.Options{FinalThirdX: 80, MinMinutes: 90}, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBuildPlayerContext(t *testing.T) {
	cfg = config.New()
	cfg.MinMinutes = 90
	s := buildTestSession(t)

	raw, err := buildPlayerContext(s, 5503)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "Lionel Messi", doc["player"])
	assert.EqualValues(t, 1, doc["qualifying_players"])

	per90 := doc["per90"].(map[string]any)
	assert.EqualValues(t, 120, per90["minutes_played"])
	assert.EqualValues(t, 0.75, per90["final_third_passes_per90"])
	assert.EqualValues(t, 0.57, per90["xg_per90"])

	matches := doc["matches"].([]any)
	require.Len(t, matches, 1)
	m := matches[0].(map[string]any)
	assert.Equal(t, "Argentina vs France", m["match"])
	assert.EqualValues(t, 1, m["shot_assists"])
}

func TestBuildPlayerContextBelowThreshold(t *testing.T) {
	cfg = config.New()
	s := buildTestSession(t)

	raw, err := buildPlayerContext(s, 3009)
	require.NoError(t, err)
	assert.Contains(t, raw, `"per90":"below minutes threshold"`)

	_, err = buildPlayerContext(s, 1)
	assert.Error(t, err, "unknown players have nothing to analyze")
}

func TestPopulationSummary(t *testing.T) {
	stats := []model.PlayerPer90Stat{
		{PlayerID: 1, XGPer90: 0.9, FinalThirdPassesPer90: 4},
		{PlayerID: 2, XGPer90: 0.1, FinalThirdPassesPer90: 2},
		{PlayerID: 3, XGPer90: 0.4, FinalThirdPassesPer90: 6},
	}
	got := populationSummary(stats)
	assert.Equal(t, map[string]float64{"min": 0.1, "median": 0.4, "max": 0.9}, got[aggregator.MetricXGPer90])
	assert.Equal(t, map[string]float64{"min": 2, "median": 4, "max": 6}, got[aggregator.MetricFinalThirdPer90])
	assert.Nil(t, populationSummary(nil))
}

func TestSystemPromptMatchesPassExclusions(t *testing.T) {
	for _, typ := range []string{"Corner", "Free Kick", "Throw-in", "Kick Off"} {
		assert.Contains(t, analyzeSystemPrompt, typ)
	}
	excluded := analyzeSystemPrompt[strings.Index(analyzeSystemPrompt, "excluded:"):]
	excluded = excluded[:strings.Index(excluded, "\n")]
	assert.NotContains(t, strings.ToLower(excluded), "goal kick", "goal kicks count as final-third passes")
}
