// Package history persists runs to sqlite: one row per run, one row per tick
// of telemetry, one row per published alarm/trip event.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/scenario"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	started_at TEXT NOT NULL,
	dt         REAL NOT NULL,
	duration   REAL NOT NULL,
	policy     TEXT NOT NULL,
	final      TEXT,
	scrammed   INTEGER NOT NULL DEFAULT 0,
	meltdown   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS ticks (
	run_id        TEXT NOT NULL,
	time          REAL NOT NULL,
	core_temp     REAL NOT NULL,
	reactor_power REAL NOT NULL,
	pressure      REAL NOT NULL,
	water         REAL NOT NULL,
	steam         REAL NOT NULL,
	turbine_rpm   REAL NOT NULL,
	grid_voltage  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS ticks_run ON ticks(run_id, time);
CREATE TABLE IF NOT EXISTS events (
	run_id  TEXT NOT NULL,
	time    REAL NOT NULL,
	topic   TEXT NOT NULL,
	message TEXT NOT NULL
);
`

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqEvent
)

type req struct {
	kind  reqKind
	runID string
	state reactor.State
	event scenario.RecordedEvent
}

// Store writes through a single goroutine so recording a tick never blocks
// the simulation loop on sqlite.
type Store struct {
	db  *sql.DB
	log *slog.Logger

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history: empty db path")
	}
	if logger == nil {
		logger = slog.Default()
	}
	// The pool hands the writer goroutine and callers separate sqlite
	// connections; without a busy timeout a write on one fails immediately
	// with SQLITE_BUSY while the other holds the lock.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:  db,
		log: logger,
		ch:  make(chan req, 1024),
	}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

func (s *Store) writer() {
	defer s.wg.Done()
	for r := range s.ch {
		var err error
		switch r.kind {
		case reqTick:
			_, err = s.db.Exec(
				`INSERT INTO ticks (run_id, time, core_temp, reactor_power, pressure, water, steam, turbine_rpm, grid_voltage)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.runID, r.state.Time, r.state.CoreTemp, r.state.ReactorPower,
				r.state.Pressure, r.state.Water, r.state.Steam, r.state.TurbineRPM,
				r.state.GridVoltage)
		case reqEvent:
			_, err = s.db.Exec(
				`INSERT INTO events (run_id, time, topic, message) VALUES (?, ?, ?, ?)`,
				r.runID, r.event.Time, r.event.Topic.String(), r.event.Message)
		}
		if err != nil {
			s.log.Error("history write failed", "kind", int(r.kind), "run", r.runID, "err", err)
		}
	}
}

// Close drains pending writes and closes the database.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.ch) })
	s.wg.Wait()
	return s.db.Close()
}

// RunMetadata describes one stored run.
type RunMetadata struct {
	ID        string
	Name      string
	StartedAt time.Time
	Dt        float64
	Duration  float64
	Policy    string
	Scrammed  bool
	Meltdown  bool
}

// CreateRun registers a run and returns its id.
func (s *Store) CreateRun(name string, dt, duration float64, policyName string) (string, error) {
	id := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	_, err := s.db.Exec(
		`INSERT INTO runs (id, name, started_at, dt, duration, policy) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, time.Now().UTC().Format(time.RFC3339), dt, duration, policyName)
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordTick queues one telemetry row. Drops the row rather than blocking if
// the writer has fallen behind.
func (s *Store) RecordTick(runID string, st reactor.State) {
	select {
	case s.ch <- req{kind: reqTick, runID: runID, state: st}:
	default:
		s.log.Warn("history writer saturated, dropping tick", "run", runID, "time", st.Time)
	}
}

// RecordTicks inserts a run's telemetry in a single transaction, blocking
// until every row is committed. Batch replay of a completed run must use this
// rather than RecordTick: the non-blocking path sheds rows once the writer
// falls behind, which a tight replay loop does immediately.
func (s *Store) RecordTicks(runID string, states []reactor.State) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO ticks (run_id, time, core_temp, reactor_power, pressure, water, steam, turbine_rpm, grid_voltage)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, st := range states {
		if _, err := stmt.Exec(runID, st.Time, st.CoreTemp, st.ReactorPower,
			st.Pressure, st.Water, st.Steam, st.TurbineRPM, st.GridVoltage); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) RecordEvent(runID string, ev scenario.RecordedEvent) {
	select {
	case s.ch <- req{kind: reqEvent, runID: runID, event: ev}:
	default:
		s.log.Warn("history writer saturated, dropping event", "run", runID)
	}
}

// FinishRun stores the final snapshot on the run row.
func (s *Store) FinishRun(runID string, final reactor.State) error {
	blob, err := json.Marshal(final)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE runs SET final = ?, scrammed = ?, meltdown = ? WHERE id = ?`,
		string(blob), boolInt(final.Scrammed), boolInt(final.Meltdown), runID)
	return err
}

func (s *Store) ListRuns() ([]RunMetadata, error) {
	rows, err := s.db.Query(
		`SELECT id, name, started_at, dt, duration, policy, scrammed, meltdown
		 FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var m RunMetadata
		var started string
		var scrammed, meltdown int
		if err := rows.Scan(&m.ID, &m.Name, &started, &m.Dt, &m.Duration, &m.Policy, &scrammed, &meltdown); err != nil {
			return nil, err
		}
		m.StartedAt, _ = time.Parse(time.RFC3339, started)
		m.Scrammed = scrammed != 0
		m.Meltdown = meltdown != 0
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// TickRow is one telemetry sample as stored.
type TickRow struct {
	Time         float64 `json:"time"`
	CoreTemp     float64 `json:"core_temp"`
	ReactorPower float64 `json:"reactor_power"`
	Pressure     float64 `json:"pressure"`
	Water        float64 `json:"water"`
	Steam        float64 `json:"steam"`
	TurbineRPM   float64 `json:"turbine_rpm"`
	GridVoltage  float64 `json:"grid_voltage"`
}

func (s *Store) Ticks(runID string) ([]TickRow, error) {
	rows, err := s.db.Query(
		`SELECT time, core_temp, reactor_power, pressure, water, steam, turbine_rpm, grid_voltage
		 FROM ticks WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ticks []TickRow
	for rows.Next() {
		var tr TickRow
		if err := rows.Scan(&tr.Time, &tr.CoreTemp, &tr.ReactorPower, &tr.Pressure,
			&tr.Water, &tr.Steam, &tr.TurbineRPM, &tr.GridVoltage); err != nil {
			return nil, err
		}
		ticks = append(ticks, tr)
	}
	return ticks, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
