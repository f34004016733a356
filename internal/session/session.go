// Package session runs the load → normalize → aggregate pipeline once per
// distinct input and memoizes the result, keyed by file stats backed by a
// content hash of the source files.
package session

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pable/go-football-metrics/internal/aggregator"
	"github.com/pable/go-football-metrics/internal/catalog"
	"github.com/pable/go-football-metrics/internal/model"
	"github.com/pable/go-football-metrics/internal/parser"
	"github.com/pable/go-football-metrics/internal/storage"
)

// Source locates the tournament files.
type Source struct {
	MatchesPath string
	EventsDir   string
}

// Session is the immutable output of one pipeline run.
type Session struct {
	ID          string
	Fingerprint string
	BuiltAt     time.Time

	Matches []model.MatchDescriptor
	Events  []model.NormalizedEvent
	Per90   []model.PlayerPer90Stat

	// Store holds the same events and per-90 rows for SQL-backed queries. It
	// is frozen once loaded.
	Store *storage.DB

	mu      sync.Mutex
	refs    int
	retired bool
	closed  bool
}

// Close releases the session store.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Session) closeLocked() error {
	if s.closed || s.Store == nil {
		return nil
	}
	s.closed = true
	return s.Store.Close()
}

func (s *Session) acquire() {
	s.mu.Lock()
	s.refs++
	s.mu.Unlock()
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs--
	if s.retired && s.refs == 0 {
		s.closeLocked()
	}
}

// retire closes the store once the last holder has released it.
func (s *Session) retire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retired = true
	if s.refs == 0 {
		s.closeLocked()
	}
}

// Age is how long ago the session was built.
func (s *Session) Age() time.Duration {
	return time.Since(s.BuiltAt)
}

// Fingerprint hashes the catalog and every event log it references, in
// catalog order. Any change to any input file changes the result.
func Fingerprint(src Source) (string, error) {
	data, err := os.ReadFile(src.MatchesPath)
	if err != nil {
		return "", &model.DataSourceError{Op: "read", Path: src.MatchesPath, Err: err}
	}
	matches, err := catalog.ParseMatches(data)
	if err != nil {
		return "", &model.DataSourceError{Op: "decode", Path: src.MatchesPath, Err: err}
	}

	h := sha256.New()
	h.Write(data)
	for _, m := range matches {
		path := parser.EventLogPath(src.EventsDir, m.MatchID)
		if err := hashFile(h, path); err != nil {
			return "", &model.DataSourceError{Op: "read", Path: path, Err: err}
		}
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintf(w, "\x00%s\x00", path)
	_, err = io.Copy(w, f)
	return err
}

// Build runs the full pipeline from scratch.
func Build(src Source, opts aggregator.Options, log *logrus.Logger) (*Session, error) {
	fp, err := Fingerprint(src)
	if err != nil {
		return nil, err
	}
	return build(src, fp, opts, log)
}

func build(src Source, fp string, opts aggregator.Options, log *logrus.Logger) (*Session, error) {
	start := time.Now()
	var err error

	s := &Session{ID: uuid.NewString(), Fingerprint: fp}
	entry := log.WithFields(logrus.Fields{"session": s.ID, "fingerprint": fp[:12]})

	s.Matches, err = catalog.LoadMatches(src.MatchesPath)
	if err != nil {
		return nil, err
	}
	entry.WithField("matches", len(s.Matches)).Debug("catalog loaded")

	s.Events, err = parser.LoadEvents(src.EventsDir, s.Matches)
	if err != nil {
		return nil, err
	}
	entry.WithField("events", len(s.Events)).Debug("events normalized")

	s.Per90 = aggregator.Per90(s.Events, opts)
	entry.WithField("players", len(s.Per90)).Debug("per-90 aggregated")

	if s.Store, err = storage.Open(storage.MemoryPath); err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if err := s.load(); err != nil {
		s.Close()
		return nil, fmt.Errorf("load session store: %w", err)
	}

	s.BuiltAt = time.Now()
	entry.WithFields(logrus.Fields{
		"matches": len(s.Matches),
		"events":  len(s.Events),
		"players": len(s.Per90),
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("session built")
	return s, nil
}

func (s *Session) load() error {
	if err := s.Store.InsertMatches(s.Matches); err != nil {
		return err
	}
	if err := s.Store.InsertEvents(s.Events); err != nil {
		return err
	}
	if err := s.Store.InsertPer90(s.Per90); err != nil {
		return err
	}
	return s.Store.Freeze()
}

// PlayerName returns the first display name seen for id in the events.
func (s *Session) PlayerName(id int64) string {
	for i := range s.Events {
		e := &s.Events[i]
		if e.PlayerID != nil && *e.PlayerID == id && e.PlayerName != "" {
			return e.PlayerName
		}
	}
	return ""
}

// ---- Memoization ----

// statKey summarises size and mtime of the catalog and every event log it
// names. It is cheap to compute and changes whenever a file is rewritten,
// though an equal key does not prove equal content.
func statKey(src Source, matches []model.MatchDescriptor) (string, error) {
	var b strings.Builder
	paths := make([]string, 0, len(matches)+1)
	paths = append(paths, src.MatchesPath)
	for _, m := range matches {
		paths = append(paths, parser.EventLogPath(src.EventsDir, m.MatchID))
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return "", &model.DataSourceError{Op: "stat", Path: p, Err: err}
		}
		fmt.Fprintf(&b, "%s\x00%d\x00%d\n", p, fi.Size(), fi.ModTime().UnixNano())
	}
	return b.String(), nil
}

// Cache holds the session for one Source and rebuilds it only when the
// input files change. File stats are checked on every call; contents are
// hashed only when the stats move.
type Cache struct {
	src  Source
	opts aggregator.Options
	log  *logrus.Logger

	mu      sync.Mutex
	current *Session
	stat    string
}

// NewCache returns an empty cache for src.
func NewCache(src Source, opts aggregator.Options, log *logrus.Logger) *Cache {
	return &Cache{src: src, opts: opts, log: log}
}

// Get returns the memoized session, rebuilding it when the source files no
// longer match. A replaced session is closed straight away unless it is held
// through Acquire, so Get suits callers that use one session at a time.
func (c *Cache) Get() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh()
}

// Acquire is Get for concurrent callers. The returned session stays open
// until release is called, even if a newer session replaces it meanwhile.
func (c *Cache) Acquire() (s *Session, release func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err = c.refresh()
	if err != nil {
		return nil, nil, err
	}
	s.acquire()
	var once sync.Once
	return s, func() { once.Do(s.release) }, nil
}

func (c *Cache) refresh() (*Session, error) {
	// Stats are taken before any content is hashed, so a recorded key never
	// describes files newer than the session built from them.
	var matches []model.MatchDescriptor
	if c.current != nil {
		matches = c.current.Matches
	} else {
		var err error
		if matches, err = catalog.LoadMatches(c.src.MatchesPath); err != nil {
			return nil, err
		}
	}
	key, err := statKey(c.src, matches)
	if err != nil {
		return nil, err
	}
	if c.current != nil && key == c.stat {
		c.log.WithField("session", c.current.ID).Debug("session reused")
		return c.current, nil
	}

	fp, err := Fingerprint(c.src)
	if err != nil {
		return nil, err
	}
	if c.current != nil && c.current.Fingerprint == fp {
		c.stat = key
		c.log.WithField("session", c.current.ID).Debug("files touched but unchanged, session reused")
		return c.current, nil
	}

	s, err := build(c.src, fp, c.opts, c.log)
	if err != nil {
		return nil, err
	}
	if c.current != nil {
		c.log.WithFields(logrus.Fields{
			"stale":   c.current.ID,
			"session": s.ID,
			"age":     c.current.Age().Round(time.Second).String(),
		}).Info("inputs changed, session rebuilt")
		c.current.retire()
	}
	c.current, c.stat = s, key
	return s, nil
}

// Close retires the cached session. Sessions still held through Acquire are
// closed when released.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.retire()
	}
	c.current, c.stat = nil, ""
	return nil
}
