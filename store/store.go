// Package store persists completed simulation runs to SQLite, giving the
// specification's "summary may be serialized... under a timestamped name"
// language a concrete home, entirely at the orchestrator level — the
// systolic core package never imports this package.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
)

// Run is one completed simulation's persisted summary.
type Run struct {
	ID                string
	CreatedAt         time.Time
	ThreadNumber      int
	ArraySize         int
	Sparsity          float64
	IsLimitedBuffer   bool
	BufferDepth       int
	TotalClock        int
	MeanUtilization   float64
	StdUtilization    float64
	LoadHistoryJSON   string
	UtilizationPerPEJ string
}

// Store wraps a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	thread_number INTEGER NOT NULL,
	array_size INTEGER NOT NULL,
	sparsity REAL NOT NULL,
	is_limited_buffer INTEGER NOT NULL,
	buffer_depth INTEGER NOT NULL,
	total_clock INTEGER NOT NULL,
	mean_utilization REAL NOT NULL,
	std_utilization REAL NOT NULL,
	load_history_json TEXT NOT NULL,
	utilization_per_pe_json TEXT NOT NULL
);
`

// Open opens (creating if necessary) a SQLite database at path and ensures
// the runs table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts r, assigning a new xid-generated ID and the current time
// if they are unset.
func (s *Store) SaveRun(r Run) (Run, error) {
	if r.ID == "" {
		r.ID = xid.New().String()
	}
	if r.CreatedAt.IsZero() {
		// Round(0) strips the monotonic reading so this matches the value
		// GetRun/ListRuns reconstruct from the stored RFC3339Nano string.
		r.CreatedAt = time.Now().Round(0)
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, created_at, thread_number, array_size, sparsity,
			is_limited_buffer, buffer_depth, total_clock, mean_utilization,
			std_utilization, load_history_json, utilization_per_pe_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.Format(time.RFC3339Nano), r.ThreadNumber, r.ArraySize,
		r.Sparsity, boolToInt(r.IsLimitedBuffer), r.BufferDepth, r.TotalClock,
		r.MeanUtilization, r.StdUtilization, r.LoadHistoryJSON, r.UtilizationPerPEJ,
	)
	if err != nil {
		return Run{}, fmt.Errorf("store: saving run: %w", err)
	}
	return r, nil
}

// GetRun fetches a single run by ID.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, thread_number, array_size, sparsity,
			is_limited_buffer, buffer_depth, total_clock, mean_utilization,
			std_utilization, load_history_json, utilization_per_pe_json
		 FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns every persisted run, most recent first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, thread_number, array_size, sparsity,
			is_limited_buffer, buffer_depth, total_clock, mean_utilization,
			std_utilization, load_history_json, utilization_per_pe_json
		 FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var createdAt string
	var limited int
	if err := row.Scan(&r.ID, &createdAt, &r.ThreadNumber, &r.ArraySize, &r.Sparsity,
		&limited, &r.BufferDepth, &r.TotalClock, &r.MeanUtilization, &r.StdUtilization,
		&r.LoadHistoryJSON, &r.UtilizationPerPEJ); err != nil {
		return Run{}, fmt.Errorf("store: scanning run: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("store: parsing created_at: %w", err)
	}
	r.CreatedAt = ts
	r.IsLimitedBuffer = limited != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// MarshalFloatGrid serializes a [][]float64 grid (such as
// systolic.Summary.UtilizationPerPE) to JSON for storage.
func MarshalFloatGrid(grid [][]float64) (string, error) {
	data, err := json.Marshal(grid)
	if err != nil {
		return "", fmt.Errorf("store: marshaling grid: %w", err)
	}
	return string(data), nil
}

// MarshalLoadHistories serializes a map of buffer occupancy histories (such
// as systolic.Summary.LoadHistories) to JSON for storage.
func MarshalLoadHistories(histories map[string][][]int) (string, error) {
	data, err := json.Marshal(histories)
	if err != nil {
		return "", fmt.Errorf("store: marshaling load histories: %w", err)
	}
	return string(data), nil
}

// MeanStd returns the mean and population standard deviation of every
// value in grid, the summary statistic persisted alongside each run.
func MeanStd(grid [][]float64) (mean, std float64) {
	var sum float64
	var n int
	for _, row := range grid {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	mean = sum / float64(n)

	var sqDiff float64
	for _, row := range grid {
		for _, v := range row {
			d := v - mean
			sqDiff += d * d
		}
	}
	std = math.Sqrt(sqDiff / float64(n))
	return mean, std
}
