// Package parser reads StatsBomb event logs and projects passes and shots
// into flat NormalizedEvent records.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/tidwall/gjson"

	"github.com/pable/go-football-metrics/internal/model"
)

// Set-piece restarts. Passes of these sub-types are not open play.
var openPlayExclude = map[string]bool{
	"Corner":    true,
	"Free Kick": true,
	"Throw-in":  true,
	"Kick Off":  true,
}

// ExcludedPassTypes lists the pass sub-types dropped as set pieces, sorted.
func ExcludedPassTypes() []string {
	out := make([]string, 0, len(openPlayExclude))
	for t := range openPlayExclude {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ---- Raw StatsBomb shapes ----

type named struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

// RawEvent is the subset of a StatsBomb event we read. Every nested field is
// optional; absence decodes to nil.
type RawEvent struct {
	Type     *named     `json:"type"`
	Player   *named     `json:"player"`
	Team     *named     `json:"team"`
	Location []*float64 `json:"location"`
	Minute   *int       `json:"minute"`
	Pass     *RawPass   `json:"pass"`
	Shot     *RawShot   `json:"shot"`
}

// RawPass is the "pass" sub-object of a Pass event.
type RawPass struct {
	Type        *named     `json:"type"`
	EndLocation []*float64 `json:"end_location"`
	ShotAssist  *bool      `json:"shot_assist"`
}

// RawShot is the "shot" sub-object of a Shot event.
type RawShot struct {
	StatsbombXG *float64 `json:"statsbomb_xg"`
}

func (e *RawEvent) typeName() string {
	if e.Type == nil {
		return ""
	}
	return e.Type.Name
}

// coord returns the i-th element of a location pair, or nil.
func coord(loc []*float64, i int) *float64 {
	if i >= len(loc) || loc[i] == nil {
		return nil
	}
	v := *loc[i]
	return &v
}

// ---- Normalization ----

// NormalizeEvents flattens the passes and shots of one match, in source
// order. It is a pure function of its input.
func NormalizeEvents(matchID int64, raws []RawEvent) []model.NormalizedEvent {
	var out []model.NormalizedEvent
	for i := range raws {
		if ev, ok := normalize(matchID, &raws[i]); ok {
			out = append(out, ev)
		}
	}
	return out
}

func normalize(matchID int64, e *RawEvent) (model.NormalizedEvent, bool) {
	evType := model.EventType(e.typeName())
	if evType != model.EventPass && evType != model.EventShot {
		return model.NormalizedEvent{}, false
	}

	ev := model.NormalizedEvent{
		MatchID: matchID,
		Type:    evType,
		X:       coord(e.Location, 0),
		Y:       coord(e.Location, 1),
	}
	if e.Player != nil {
		if e.Player.ID != nil {
			id := *e.Player.ID
			ev.PlayerID = &id
		}
		ev.PlayerName = e.Player.Name
	}
	if e.Team != nil {
		ev.Team = e.Team.Name
	}
	if e.Minute != nil {
		m := *e.Minute
		ev.Minute = &m
	}

	switch evType {
	case model.EventPass:
		if p := e.Pass; p != nil {
			if p.Type != nil && openPlayExclude[p.Type.Name] {
				return model.NormalizedEvent{}, false
			}
			ev.EndX = coord(p.EndLocation, 0)
			ev.EndY = coord(p.EndLocation, 1)
			if p.ShotAssist != nil {
				ev.ShotAssist = *p.ShotAssist
			}
		}
	case model.EventShot:
		if s := e.Shot; s != nil && s.StatsbombXG != nil {
			xg := *s.StatsbombXG
			ev.XG = &xg
		}
	}
	return ev, true
}

// ParseEvents decodes one match's event log. Events other than passes and
// shots are skipped on their type name alone and never fully decoded.
func ParseEvents(matchID int64, data []byte) ([]model.NormalizedEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, fmt.Errorf("expected an array of events, got %s", doc.Type)
	}

	var (
		raws      []RawEvent
		decodeErr error
		idx       int
	)
	doc.ForEach(func(_, v gjson.Result) bool {
		defer func() { idx++ }()
		switch v.Get("type.name").String() {
		case string(model.EventPass), string(model.EventShot):
		default:
			return true
		}
		var r RawEvent
		if err := json.Unmarshal([]byte(v.Raw), &r); err != nil {
			decodeErr = fmt.Errorf("event %d: %w", idx, err)
			return false
		}
		raws = append(raws, r)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return NormalizeEvents(matchID, raws), nil
}

// ---- Files ----

// EventLogPath locates the log for matchID under dir. A plain <id>.json is
// preferred; <id>.json.zst is used when only the compressed log exists.
func EventLogPath(dir string, matchID int64) string {
	base := filepath.Join(dir, strconv.FormatInt(matchID, 10)+".json")
	if _, err := os.Stat(base); err == nil {
		return base
	}
	if _, err := os.Stat(base + ".zst"); err == nil {
		return base + ".zst"
	}
	return base
}

// ReadLog returns the decompressed bytes of an event log.
func ReadLog(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if filepath.Ext(path) == ".zst" {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	}
	return io.ReadAll(src)
}

// LoadEvents normalizes the logs of every match in catalog order. Any log
// that cannot be read or decoded aborts the whole batch.
func LoadEvents(dir string, matches []model.MatchDescriptor) ([]model.NormalizedEvent, error) {
	var out []model.NormalizedEvent
	for _, m := range matches {
		path := EventLogPath(dir, m.MatchID)
		data, err := ReadLog(path)
		if err != nil {
			return nil, &model.DataSourceError{Op: "read", Path: path, Err: err}
		}
		events, err := ParseEvents(m.MatchID, data)
		if err != nil {
			return nil, &model.DataSourceError{Op: "decode", Path: path, Err: err}
		}
		out = append(out, events...)
	}
	return out, nil
}
