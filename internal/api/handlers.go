package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pable/go-football-metrics/internal/catalog"
	"github.com/pable/go-football-metrics/internal/model"
	"github.com/pable/go-football-metrics/internal/session"
	"github.com/pable/go-football-metrics/internal/storage"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	sessions    SessionSource
	finalThirdX float64
	log         *logrus.Logger
}

// NewHandler creates a new handler.
func NewHandler(sessions SessionSource, finalThirdX float64, log *logrus.Logger) *Handler {
	return &Handler{sessions: sessions, finalThirdX: finalThirdX, log: log}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "fbmetrics",
	})
}

// session acquires the current session, writing a 500 on failure. Callers
// must call release when done.
func (h *Handler) session(w http.ResponseWriter) (*session.Session, func(), bool) {
	s, release, err := h.sessions.Acquire()
	if err != nil {
		var dse *model.DataSourceError
		if errors.As(err, &dse) {
			respondError(w, http.StatusInternalServerError, "Failed to load tournament data", err)
		} else {
			respondError(w, http.StatusInternalServerError, "Failed to build session", err)
		}
		return nil, nil, false
	}
	return s, release, true
}

// GetMatches returns the catalog, optionally restricted to ?team=.
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	s, release, ok := h.session(w)
	if !ok {
		return
	}
	defer release()
	matches := catalog.ForTeam(s.Matches, r.URL.Query().Get("team"))
	if matches == nil {
		matches = []model.MatchDescriptor{}
	}
	respondJSON(w, http.StatusOK, matches)
}

// ResolveMatch finds the match between ?team1= and ?team2= in either order.
func (h *Handler) ResolveMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	team1, team2 := q.Get("team1"), q.Get("team2")
	if team1 == "" || team2 == "" {
		respondError(w, http.StatusBadRequest, "team1 and team2 are required", nil)
		return
	}

	s, release, ok := h.session(w)
	if !ok {
		return
	}
	defer release()
	id, err := catalog.Resolve(s.Matches, team1, team2)
	if catalog.IsNotFound(err) {
		respondError(w, http.StatusNotFound, "Match not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to resolve match", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"match_id": id})
}

// GetMatchPlayers returns the players with events in a match, in order of
// first appearance.
func (h *Handler) GetMatchPlayers(w http.ResponseWriter, r *http.Request) {
	s, release, ok := h.session(w)
	if !ok {
		return
	}
	defer release()
	matchID, ok := h.matchID(w, r, s)
	if !ok {
		return
	}
	players, err := s.Store.PlayersInMatch(matchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch players", err)
		return
	}
	if players == nil {
		players = []model.PlayerRef{}
	}
	respondJSON(w, http.StatusOK, players)
}

// GetMatchPasses returns final-third passes in a match, optionally for one
// ?player=.
func (h *Handler) GetMatchPasses(w http.ResponseWriter, r *http.Request) {
	s, release, ok := h.session(w)
	if !ok {
		return
	}
	defer release()
	matchID, ok := h.matchID(w, r, s)
	if !ok {
		return
	}

	filter := storage.PassFilter{MatchID: matchID, MinX: h.finalThirdX}
	if p := r.URL.Query().Get("player"); p != "" {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid player ID", err)
			return
		}
		filter.PlayerID = id
	}

	passes, err := s.Store.FinalThirdPasses(filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch passes", err)
		return
	}
	if passes == nil {
		passes = []model.NormalizedEvent{}
	}
	respondJSON(w, http.StatusOK, passes)
}

// GetPer90 returns every qualifying player's per-90 row.
func (h *Handler) GetPer90(w http.ResponseWriter, r *http.Request) {
	s, release, ok := h.session(w)
	if !ok {
		return
	}
	defer release()
	stats := s.Per90
	if stats == nil {
		stats = []model.PlayerPer90Stat{}
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) matchID(w http.ResponseWriter, r *http.Request, s *session.Session) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["matchID"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid match ID", err)
		return 0, false
	}
	if _, found := catalog.Find(s.Matches, id); !found {
		respondError(w, http.StatusNotFound, "Match not found", nil)
		return 0, false
	}
	return id, true
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
