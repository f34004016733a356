package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-football-metrics/internal/aggregator"
	"github.com/pable/go-football-metrics/internal/logging"
	"github.com/pable/go-football-metrics/internal/model"
	"github.com/pable/go-football-metrics/internal/storage"
)

const testMatches = `[
  {"match_id": 1, "home_team": {"home_team_name": "Argentina"}, "away_team": {"away_team_name": "Saudi Arabia"}},
  {"match_id": 2, "home_team": {"home_team_name": "Mexico"}, "away_team": {"away_team_name": "Argentina"}}
]`

// eventLog returns a log in which player 10 plays minutes 0..span and makes
// one final-third pass, plus a corner that must be dropped.
func eventLog(span int) string {
	return fmt.Sprintf(`[
  {"type": {"name": "Pass"}, "player": {"id": 10, "name": "Leo"}, "location": [50, 40], "minute": 0,
   "pass": {"end_location": [60, 40]}},
  {"type": {"name": "Pass"}, "player": {"id": 10, "name": "Leo"}, "location": [90, 40], "minute": 30,
   "pass": {"end_location": [100, 40], "shot_assist": true}},
  {"type": {"name": "Pass"}, "player": {"id": 10, "name": "Leo"}, "location": [120, 0], "minute": 31,
   "pass": {"type": {"name": "Corner"}, "end_location": [110, 40]}},
  {"type": {"name": "Shot"}, "player": {"id": 10, "name": "Leo"}, "location": [108, 40], "minute": %d,
   "shot": {"statsbomb_xg": 0.4}}
]`, span)
}

// rewrite replaces path's content and moves its mtime by shift, so the change
// is visible even on filesystems with coarse timestamps.
func rewrite(t *testing.T, path, content string, shift time.Duration) {
	t.Helper()
	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	mtime := fi.ModTime().Add(shift)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func writeSource(t *testing.T) Source {
	t.Helper()
	dir := t.TempDir()
	eventsDir := filepath.Join(dir, "events")
	require.NoError(t, os.MkdirAll(eventsDir, 0o755))
	matchesPath := filepath.Join(dir, "matches.json")
	require.NoError(t, os.WriteFile(matchesPath, []byte(testMatches), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(eventsDir, "1.json"), []byte(eventLog(90)), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(eventsDir, "2.json"), []byte(eventLog(90)), 0o644))
	return Source{MatchesPath: matchesPath, EventsDir: eventsDir}
}

func testOpts() aggregator.Options {
	return aggregator.Options{FinalThirdX: 80, MinMinutes: 150}
}

func TestBuild(t *testing.T) {
	src := writeSource(t)

	s, err := Build(src, testOpts(), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.BuiltAt.IsZero())
	assert.GreaterOrEqual(t, s.Age(), time.Duration(0))
	assert.Len(t, s.Fingerprint, 64)
	assert.Len(t, s.Matches, 2)
	assert.Len(t, s.Events, 6, "corners are excluded")

	require.Len(t, s.Per90, 1)
	leo := s.Per90[0]
	assert.Equal(t, int64(10), leo.PlayerID)
	assert.Equal(t, "Leo", leo.PlayerName)
	assert.Equal(t, 180.0, leo.MinutesPlayed)
	assert.Equal(t, 2, leo.FinalThirdPasses)
	assert.Equal(t, 2, leo.ShotAssists)
	assert.InDelta(t, 0.8, leo.XG, 1e-12)
	assert.InDelta(t, 1.0, leo.FinalThirdPassesPer90, 1e-12)
	assert.InDelta(t, 0.4, leo.XGPer90, 1e-12)
	assert.Equal(t, "Leo", s.PlayerName(10))

	// The store mirrors the in-memory results.
	stored, err := s.Store.GetPer90()
	require.NoError(t, err)
	assert.Equal(t, s.Per90, stored)

	passes, err := s.Store.FinalThirdPasses(storage.PassFilter{MatchID: 2, PlayerID: 10, MinX: 80})
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.True(t, passes[0].ShotAssist)
}

func TestBuildMissingEventLog(t *testing.T) {
	src := writeSource(t)
	require.NoError(t, os.Remove(filepath.Join(src.EventsDir, "2.json")))

	_, err := Build(src, testOpts(), logging.Discard())
	var dse *model.DataSourceError
	require.True(t, errors.As(err, &dse), "got %v", err)
	assert.True(t, strings.HasSuffix(dse.Path, "2.json"))
}

func TestFingerprintChangesWithContent(t *testing.T) {
	src := writeSource(t)

	a, err := Fingerprint(src)
	require.NoError(t, err)
	b, err := Fingerprint(src)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	require.NoError(t, os.WriteFile(filepath.Join(src.EventsDir, "2.json"), []byte(eventLog(60)), 0o644))
	c, err := Fingerprint(src)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestCacheMemoizes(t *testing.T) {
	src := writeSource(t)
	cache := NewCache(src, testOpts(), logging.Discard())
	t.Cleanup(func() { cache.Close() })

	first, err := cache.Get()
	require.NoError(t, err)
	second, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged inputs must reuse the session")

	// Shorten match 2 so Leo drops to 150 minutes; a rebuild must notice.
	rewrite(t, filepath.Join(src.EventsDir, "2.json"), eventLog(60), time.Minute)
	third, err := cache.Get()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
	require.Len(t, third.Per90, 1)
	assert.Equal(t, 150.0, third.Per90[0].MinutesPlayed)
}

func TestCacheSurfacesErrors(t *testing.T) {
	src := writeSource(t)
	src.MatchesPath = filepath.Join(t.TempDir(), "missing.json")
	cache := NewCache(src, testOpts(), logging.Discard())

	_, err := cache.Get()
	var dse *model.DataSourceError
	assert.True(t, errors.As(err, &dse))
}

func TestSessionStoreIsReadOnly(t *testing.T) {
	src := writeSource(t)
	cache := NewCache(src, testOpts(), logging.Discard())
	t.Cleanup(func() { cache.Close() })

	s, err := cache.Get()
	require.NoError(t, err)

	_, _, err = s.Store.QueryRaw("DELETE FROM events")
	assert.Error(t, err)
	_, _, err = s.Store.QueryRaw("UPDATE player_per90 SET xg_per90 = 99")
	assert.Error(t, err)

	again, err := cache.Get()
	require.NoError(t, err)
	require.Same(t, s, again)

	passes, err := again.Store.FinalThirdPasses(storage.PassFilter{MatchID: 1, PlayerID: 10, MinX: 80})
	require.NoError(t, err)
	assert.Len(t, passes, 1)
	stored, err := again.Store.GetPer90()
	require.NoError(t, err)
	assert.Equal(t, again.Per90, stored)
}

func TestCacheTrustsUnchangedStats(t *testing.T) {
	src := writeSource(t)
	cache := NewCache(src, testOpts(), logging.Discard())
	t.Cleanup(func() { cache.Close() })

	first, err := cache.Get()
	require.NoError(t, err)

	// Touched without a content change: contents are rehashed, session kept.
	path := filepath.Join(src.EventsDir, "1.json")
	rewrite(t, path, eventLog(90), time.Minute)
	second, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, first, second)

	// Same size and mtime: the stats match, so the content is not rehashed.
	rewrite(t, path, eventLog(60), 0)
	third, err := cache.Get()
	require.NoError(t, err)
	assert.Same(t, first, third)
}

func TestAcquireKeepsReplacedSessionOpen(t *testing.T) {
	src := writeSource(t)
	cache := NewCache(src, testOpts(), logging.Discard())
	t.Cleanup(func() { cache.Close() })

	held, release, err := cache.Acquire()
	require.NoError(t, err)

	rewrite(t, filepath.Join(src.EventsDir, "2.json"), eventLog(60), time.Minute)
	fresh, err := cache.Get()
	require.NoError(t, err)
	require.NotEqual(t, held.ID, fresh.ID)

	// The held session still answers queries after being replaced.
	_, err = held.Store.GetPer90()
	require.NoError(t, err)

	release()
	release() // idempotent
	_, err = held.Store.GetPer90()
	assert.Error(t, err, "store closes once the last holder releases it")

	_, err = fresh.Store.GetPer90()
	assert.NoError(t, err)
}

func TestGetClosesReplacedSessionWithoutHolders(t *testing.T) {
	src := writeSource(t)
	cache := NewCache(src, testOpts(), logging.Discard())
	t.Cleanup(func() { cache.Close() })

	old, err := cache.Get()
	require.NoError(t, err)
	rewrite(t, filepath.Join(src.EventsDir, "2.json"), eventLog(60), time.Minute)
	_, err = cache.Get()
	require.NoError(t, err)

	_, err = old.Store.GetPer90()
	assert.Error(t, err)
}
