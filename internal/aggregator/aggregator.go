package aggregator

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pable/go-football-metrics/internal/model"
)

// Options holds the thresholds the per-90 computation depends on.
type Options struct {
	FinalThirdX float64 // passes starting at x >= FinalThirdX count as final-third
	MinMinutes  float64 // players below this total are dropped
}

// DefaultOptions matches a 120-unit pitch and a 300-minute exposure floor.
func DefaultOptions() Options {
	return Options{FinalThirdX: 80, MinMinutes: 300}
}

// Per90 computes playing time and per-90 productivity for every player with
// at least opts.MinMinutes minutes. Rows are ordered by player id.
func Per90(events []model.NormalizedEvent, opts Options) []model.PlayerPer90Stat {
	// ---- Minutes: per (match, player) span, floored at 1, summed. ----

	type matchPlayer struct {
		matchID  int64
		playerID int64
	}
	type span struct{ min, max int }

	spans := make(map[matchPlayer]span)
	var order []matchPlayer
	names := make(map[int64]string)

	for i := range events {
		e := &events[i]
		if e.PlayerID == nil {
			continue
		}
		if _, ok := names[*e.PlayerID]; !ok || names[*e.PlayerID] == "" {
			names[*e.PlayerID] = e.PlayerName
		}
		if e.Minute == nil {
			continue
		}
		k := matchPlayer{e.MatchID, *e.PlayerID}
		s, ok := spans[k]
		if !ok {
			spans[k] = span{*e.Minute, *e.Minute}
			order = append(order, k)
			continue
		}
		if *e.Minute < s.min {
			s.min = *e.Minute
		}
		if *e.Minute > s.max {
			s.max = *e.Minute
		}
		spans[k] = s
	}

	minutes := make(map[int64]float64)
	for _, k := range order {
		s := spans[k]
		played := float64(s.max - s.min)
		if played < 1 {
			played = 1
		}
		minutes[k.playerID] += played
	}

	// ---- Counts and sums per player. ----

	finalThird := make(map[int64]int)
	shotAssists := make(map[int64]int)
	xg := make(map[int64]float64)

	for i := range events {
		e := &events[i]
		if e.PlayerID == nil {
			continue
		}
		id := *e.PlayerID
		switch e.Type {
		case model.EventPass:
			if e.X != nil && *e.X >= opts.FinalThirdX {
				finalThird[id]++
			}
			if e.ShotAssist {
				shotAssists[id]++
			}
		case model.EventShot:
			if e.XG != nil {
				xg[id] += *e.XG
			}
		}
	}

	// ---- Join on the minutes table, filter, derive rates. ----

	out := make([]model.PlayerPer90Stat, 0, len(minutes))
	for id, mins := range minutes {
		if mins < opts.MinMinutes {
			continue
		}
		s := model.PlayerPer90Stat{
			PlayerID:         id,
			PlayerName:       names[id],
			MinutesPlayed:    mins,
			FinalThirdPasses: finalThird[id],
			ShotAssists:      shotAssists[id],
			XG:               xg[id],
		}
		s.FinalThirdPassesPer90 = float64(s.FinalThirdPasses) / s.MinutesPlayed * 90
		s.XGPer90 = s.XG / s.MinutesPlayed * 90
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// Metric names used by Percentiles.
const (
	MetricFinalThirdPer90 = "final_third_passes_per90"
	MetricXGPer90         = "xg_per90"
)

// Percentiles places playerID in the empirical distribution of each per-90
// metric across stats. ok is false when the player is not among the
// qualifying rows.
func Percentiles(stats []model.PlayerPer90Stat, playerID int64) (out []model.Percentile, ok bool) {
	var focus *model.PlayerPer90Stat
	for i := range stats {
		if stats[i].PlayerID == playerID {
			focus = &stats[i]
			break
		}
	}
	if focus == nil {
		return nil, false
	}

	metrics := []struct {
		name string
		get  func(*model.PlayerPer90Stat) float64
	}{
		{MetricFinalThirdPer90, func(s *model.PlayerPer90Stat) float64 { return s.FinalThirdPassesPer90 }},
		{MetricXGPer90, func(s *model.PlayerPer90Stat) float64 { return s.XGPer90 }},
	}

	for _, m := range metrics {
		xs := make([]float64, len(stats))
		for i := range stats {
			xs[i] = m.get(&stats[i])
		}
		sort.Float64s(xs)
		v := m.get(focus)
		out = append(out, model.Percentile{
			Metric: m.name,
			Value:  v,
			Pct:    stat.CDF(v, stat.Empirical, xs, nil) * 100,
		})
	}
	return out, true
}
