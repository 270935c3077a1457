package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/sim"
)

// SQLStore keeps runs in a SQLite database with runs, samples and events
// tables. Sample columns follow reactor.Columns.
type SQLStore struct {
	conn *sqlx.DB
}

type runRow struct {
	ID          string  `db:"id"`
	Name        string  `db:"name"`
	Scenario    string  `db:"scenario"`
	CreatedAt   string  `db:"created_at"`
	Dt          float64 `db:"dt"`
	Speed       float64 `db:"speed"`
	Duration    float64 `db:"duration"`
	Outcome     string  `db:"outcome"`
	Ticks       int     `db:"ticks"`
	SimTime     float64 `db:"sim_time"`
	Samples     int     `db:"samples"`
	MetricsJSON string  `db:"metrics_json"`
}

// OpenSQL opens or creates the database at path.
func OpenSQL(path string) (*SQLStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLStore) Close() error {
	return s.conn.Close()
}

func (s *SQLStore) migrate() error {
	cols := make([]string, len(reactor.Columns))
	for i, c := range reactor.Columns {
		cols[i] = c + " REAL NOT NULL"
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		scenario TEXT NOT NULL,
		created_at TEXT NOT NULL,
		dt REAL NOT NULL,
		speed REAL NOT NULL,
		duration REAL NOT NULL,
		outcome TEXT NOT NULL,
		ticks INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		samples INTEGER NOT NULL,
		metrics_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		time REAL NOT NULL,
		` + strings.Join(cols, ",\n\t\t") + `,
		PRIMARY KEY (run_id, seq)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		time REAL NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLStore) Save(info RunInfo, res *sim.Result) (string, error) {
	meta := newMetadata(info, res)
	metricsJSON, err := json.Marshal(meta.Metrics)
	if err != nil {
		return "", err
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO runs
		(id, name, scenario, created_at, dt, speed, duration, outcome, ticks, sim_time, samples, metrics_json)
		VALUES (:id, :name, :scenario, :created_at, :dt, :speed, :duration, :outcome, :ticks, :sim_time, :samples, :metrics_json)`,
		runRow{
			ID:          meta.ID,
			Name:        meta.Name,
			Scenario:    meta.Scenario,
			CreatedAt:   meta.Timestamp.UTC().Format(time.RFC3339Nano),
			Dt:          meta.Dt,
			Speed:       meta.Speed,
			Duration:    meta.Duration,
			Outcome:     meta.Outcome,
			Ticks:       meta.Ticks,
			SimTime:     meta.SimTime,
			Samples:     meta.Samples,
			MetricsJSON: string(metricsJSON),
		})
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", meta.ID, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(reactor.Columns)+4), ", ")
	stmt, err := tx.Preparex(`INSERT INTO samples (run_id, seq, tick, time, ` +
		strings.Join(reactor.Columns, ", ") + `) VALUES (` + placeholders + `)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, snap := range res.Samples {
		args := make([]any, 0, len(reactor.Columns)+4)
		args = append(args, meta.ID, i, int64(snap.Tick), snap.Time)
		for _, v := range snap.Values() {
			args = append(args, v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return "", fmt.Errorf("insert sample %d: %w", i, err)
		}
	}

	for _, ev := range meta.Events {
		_, err := tx.Exec("INSERT INTO events (run_id, tick, time, kind) VALUES (?, ?, ?, ?)",
			meta.ID, int64(ev.Tick), ev.Time, ev.Kind)
		if err != nil {
			return "", fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *SQLStore) List() ([]RunMetadata, error) {
	var rows []runRow
	if err := s.conn.Select(&rows, "SELECT * FROM runs ORDER BY created_at"); err != nil {
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(rows))
	for _, row := range rows {
		meta, err := s.metadata(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}

	sortRuns(runs)
	return runs, nil
}

func (s *SQLStore) Load(runID string) (*RunMetadata, error) {
	var row runRow
	err := s.conn.Get(&row, "SELECT * FROM runs WHERE id = ?", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, err
	}
	return s.metadata(row)
}

func (s *SQLStore) metadata(row runRow) (*RunMetadata, error) {
	ts, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", row.ID, err)
	}

	meta := &RunMetadata{
		ID:        row.ID,
		Name:      row.Name,
		Scenario:  row.Scenario,
		Timestamp: ts,
		Dt:        row.Dt,
		Speed:     row.Speed,
		Duration:  row.Duration,
		Outcome:   row.Outcome,
		Ticks:     row.Ticks,
		SimTime:   row.SimTime,
		Samples:   row.Samples,
		Metrics:   map[string]float64{},
		Events:    []EventRecord{},
	}
	if err := json.Unmarshal([]byte(row.MetricsJSON), &meta.Metrics); err != nil {
		return nil, fmt.Errorf("run %s metrics: %w", row.ID, err)
	}

	err = s.conn.Select(&meta.Events,
		"SELECT kind, tick, time FROM events WHERE run_id = ? ORDER BY id", row.ID)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *SQLStore) LoadSeries(runID string) (*Series, error) {
	if _, err := s.Load(runID); err != nil {
		return nil, err
	}

	rows, err := s.conn.Queryx(`SELECT tick, time, `+strings.Join(reactor.Columns, ", ")+
		` FROM samples WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := &Series{Columns: append([]string(nil), reactor.Columns...)}
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}

		series.Ticks = append(series.Ticks, uint64(toFloat(vals[0])))
		series.Times = append(series.Times, toFloat(vals[1]))
		row := make([]float64, len(vals)-2)
		for i, v := range vals[2:] {
			row[i] = toFloat(v)
		}
		series.Rows = append(series.Rows, row)
	}
	return series, rows.Err()
}

// toFloat converts a scanned SQLite value. Integral REALs may come back as
// int64.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case []byte:
		f, _ := strconv.ParseFloat(string(n), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}
