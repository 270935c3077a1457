// Package store persists finished runs: metadata, events and the sampled
// snapshot series. Two backends share the Store interface: a directory per
// run (FileStore) and a SQLite database (SQLStore).
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/sim"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"

	sqliteFile = "runs.db"
)

type Store interface {
	Save(info RunInfo, res *sim.Result) (string, error)
	List() ([]RunMetadata, error)
	Load(runID string) (*RunMetadata, error)
	LoadSeries(runID string) (*Series, error)
	Close() error
}

// RunInfo describes how a run was configured.
type RunInfo struct {
	Name     string
	Scenario string
	Dt       float64
	Speed    float64
	Duration float64
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Scenario  string             `json:"scenario,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Speed     float64            `json:"speed"`
	Duration  float64            `json:"duration"`
	Outcome   string             `json:"outcome"`
	Ticks     int                `json:"ticks"`
	SimTime   float64            `json:"sim_time"`
	Samples   int                `json:"samples"`
	Metrics   map[string]float64 `json:"metrics"`
	Events    []EventRecord      `json:"events"`
}

type EventRecord struct {
	Kind string  `json:"kind" db:"kind"`
	Tick uint64  `json:"tick" db:"tick"`
	Time float64 `json:"time" db:"time"`
}

// Series is a sampled run in column form. Rows[i] holds the values named
// by Columns at Ticks[i] and Times[i].
type Series struct {
	Columns []string
	Ticks   []uint64
	Times   []float64
	Rows    [][]float64
}

// Column returns the values of the named column, or nil if it is unknown.
func (s *Series) Column(name string) []float64 {
	idx := -1
	for i, c := range s.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(s.Rows))
	for i, row := range s.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

func (s *Series) Len() int { return len(s.Rows) }

func seriesFromSamples(samples []reactor.Snapshot) *Series {
	s := &Series{
		Columns: append([]string(nil), reactor.Columns...),
		Ticks:   make([]uint64, 0, len(samples)),
		Times:   make([]float64, 0, len(samples)),
		Rows:    make([][]float64, 0, len(samples)),
	}
	for _, snap := range samples {
		s.Ticks = append(s.Ticks, snap.Tick)
		s.Times = append(s.Times, snap.Time)
		s.Rows = append(s.Rows, snap.Values())
	}
	return s
}

// NewRunID returns an id of the form reactor_<unix>_<8 hex chars>.
func NewRunID(now time.Time) string {
	return fmt.Sprintf("reactor_%d_%s", now.Unix(), uuid.NewString()[:8])
}

func newMetadata(info RunInfo, res *sim.Result) RunMetadata {
	now := time.Now()
	meta := RunMetadata{
		ID:        NewRunID(now),
		Name:      info.Name,
		Scenario:  info.Scenario,
		Timestamp: now,
		Dt:        info.Dt,
		Speed:     info.Speed,
		Duration:  info.Duration,
		Outcome:   res.Outcome.String(),
		Ticks:     res.Ticks,
		SimTime:   res.Final.Time,
		Samples:   len(res.Samples),
		Metrics:   res.Metrics,
		Events:    make([]EventRecord, 0, len(res.Events)),
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}
	for _, ev := range res.Events {
		meta.Events = append(meta.Events, EventRecord{Kind: ev.Kind.String(), Tick: ev.Tick, Time: ev.Time})
	}
	return meta
}

func sortRuns(runs []RunMetadata) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
}

// Open returns the backend named by backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		s := NewFileStore(dir)
		if err := s.Init(); err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		return OpenSQL(filepath.Join(dir, sqliteFile))
	}
	return nil, fmt.Errorf("unknown store backend %q (valid: %s, %s)", backend, BackendFile, BackendSQLite)
}
