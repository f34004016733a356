// Package catalog loads the tournament match list and resolves team pairs to
// match identifiers.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pable/go-football-metrics/internal/model"
)

// rawMatch mirrors the StatsBomb matches file. Only the fields we read are
// declared.
type rawMatch struct {
	MatchID   *int64 `json:"match_id"`
	MatchDate string `json:"match_date"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	HomeTeam  struct {
		Name string `json:"home_team_name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"away_team_name"`
	} `json:"away_team"`
	Stage *struct {
		Name string `json:"name"`
	} `json:"competition_stage"`
}

// LoadMatches reads the match list at path and returns one descriptor per
// match in file order.
func LoadMatches(path string) ([]model.MatchDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.DataSourceError{Op: "read", Path: path, Err: err}
	}
	matches, err := ParseMatches(data)
	if err != nil {
		return nil, &model.DataSourceError{Op: "decode", Path: path, Err: err}
	}
	return matches, nil
}

// ParseMatches decodes a matches document already in memory.
func ParseMatches(data []byte) ([]model.MatchDescriptor, error) {
	var raws []rawMatch
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	out := make([]model.MatchDescriptor, 0, len(raws))
	for i, r := range raws {
		if r.MatchID == nil {
			return nil, fmt.Errorf("match %d: missing match_id", i)
		}
		if r.HomeTeam.Name == "" || r.AwayTeam.Name == "" {
			return nil, fmt.Errorf("match %d: missing team name", *r.MatchID)
		}
		m := model.MatchDescriptor{
			MatchID:   *r.MatchID,
			HomeTeam:  r.HomeTeam.Name,
			AwayTeam:  r.AwayTeam.Name,
			MatchDate: r.MatchDate,
		}
		if r.HomeScore != nil {
			m.HomeScore = *r.HomeScore
		}
		if r.AwayScore != nil {
			m.AwayScore = *r.AwayScore
		}
		if r.Stage != nil {
			m.Stage = r.Stage.Name
		}
		out = append(out, m)
	}
	return out, nil
}

// Resolve returns the id of the match played between teamA and teamB, in
// either home/away order. If the pair met more than once the first match in
// catalog order wins.
func Resolve(matches []model.MatchDescriptor, teamA, teamB string) (int64, error) {
	for _, m := range matches {
		if (m.HomeTeam == teamA && m.AwayTeam == teamB) ||
			(m.HomeTeam == teamB && m.AwayTeam == teamA) {
			return m.MatchID, nil
		}
	}
	return 0, &model.NotFoundError{TeamA: teamA, TeamB: teamB}
}

// ForTeam returns the matches team played in, preserving catalog order.
// An empty team returns every match.
func ForTeam(matches []model.MatchDescriptor, team string) []model.MatchDescriptor {
	if team == "" {
		return matches
	}
	var out []model.MatchDescriptor
	for _, m := range matches {
		if m.Involves(team) {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the descriptor with the given id.
func Find(matches []model.MatchDescriptor, matchID int64) (model.MatchDescriptor, bool) {
	for _, m := range matches {
		if m.MatchID == matchID {
			return m, true
		}
	}
	return model.MatchDescriptor{}, false
}

// IsNotFound reports whether err is a team-pair lookup miss.
func IsNotFound(err error) bool {
	var nf *model.NotFoundError
	return errors.As(err, &nf)
}
