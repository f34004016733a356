package model

// EventType is the kind of a normalized event. Only passes and shots survive
// normalization.
type EventType string

const (
	EventPass EventType = "Pass"
	EventShot EventType = "Shot"
)

func (t EventType) String() string { return string(t) }

// ---- Match catalog ----

// MatchDescriptor identifies one tournament match. Score, date and stage are
// display-only and may be zero when the catalog omits them.
type MatchDescriptor struct {
	MatchID   int64  `json:"match_id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	MatchDate string `json:"match_date,omitempty"`
	Stage     string `json:"stage,omitempty"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// Label renders the match the way selection lists show it: "Home vs Away".
func (m MatchDescriptor) Label() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

// Involves reports whether team played in the match, home or away.
func (m MatchDescriptor) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// ---- Normalized events ----

// NormalizedEvent is one pass or shot flattened out of a raw event log.
// Pointer fields are nil when the source record lacked them. An empty
// PlayerName or Team means the same. Coordinates are pitch units, 0–120 along
// the length and 0–80 across. EndX, EndY and ShotAssist apply to passes, XG
// to shots.
type NormalizedEvent struct {
	MatchID    int64     `json:"match_id"`
	PlayerID   *int64    `json:"player_id"`
	PlayerName string    `json:"player_name,omitempty"`
	Team       string    `json:"team,omitempty"`
	Type       EventType `json:"type"`
	X          *float64  `json:"x"`
	Y          *float64  `json:"y"`
	EndX       *float64  `json:"end_x,omitempty"`
	EndY       *float64  `json:"end_y,omitempty"`
	ShotAssist bool      `json:"shot_assist,omitempty"`
	XG         *float64  `json:"xg,omitempty"`
	Minute     *int      `json:"minute"`
}

// HasCoords reports whether both start and end locations are present.
func (e *NormalizedEvent) HasCoords() bool {
	return e.X != nil && e.Y != nil && e.EndX != nil && e.EndY != nil
}

// ---- Aggregated metrics ----

// PlayerPer90Stat is a tournament-level productivity row for one player.
type PlayerPer90Stat struct {
	PlayerID   int64  `json:"player_id"`
	PlayerName string `json:"player_name"`

	MinutesPlayed    float64 `json:"minutes_played"`
	FinalThirdPasses int     `json:"final_third_passes"`
	ShotAssists      int     `json:"shot_assists"`
	XG               float64 `json:"xg"`

	FinalThirdPassesPer90 float64 `json:"final_third_passes_per90"`
	XGPer90               float64 `json:"xg_per90"`
}

// ShotAssistsPer90 is not part of the stored row but is handy for reports.
func (s *PlayerPer90Stat) ShotAssistsPer90() float64 {
	if s.MinutesPlayed == 0 {
		return 0
	}
	return float64(s.ShotAssists) / s.MinutesPlayed * 90
}

// PlayerRef is an (id, display name) pair, used for selection lists.
type PlayerRef struct {
	ID   int64  `json:"player_id"`
	Name string `json:"player_name"`
	Team string `json:"team,omitempty"`
}

// Percentile is a player's position in the distribution of one metric across
// all qualifying players, expressed in [0,100].
type Percentile struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Pct    float64 `json:"percentile"`
}
