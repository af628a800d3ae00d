// Package store persists probing run history to a sqlite database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mastercactapus/probecnc/coord"
	"github.com/mastercactapus/probecnc/probe"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS probe_runs (
			run_id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			options TEXT NOT NULL,
			depth DOUBLE NOT NULL,
			start_distance DOUBLE NOT NULL,
			feed_rate DOUBLE NOT NULL,
			tool_number INTEGER NOT NULL,
			x DOUBLE NOT NULL,
			y DOUBLE NOT NULL,
			z DOUBLE NOT NULL,
			angle DOUBLE,
			points TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record is one completed probing run.
type Record struct {
	ID   int64
	Kind string

	// Options is the cycle configuration as it was submitted.
	Options json.RawMessage

	Run probe.Run

	Point  coord.Point
	Angle  *float64
	Points []coord.Point

	CreatedAt time.Time
}

func (s *Store) record(kind string, opt interface{}, run probe.Run, res *probe.Result) (int64, error) {
	optData, err := json.Marshal(opt)
	if err != nil {
		return 0, err
	}
	pointData, err := json.Marshal(res.Points)
	if err != nil {
		return 0, err
	}

	var angle sql.NullFloat64
	if res.Angle != nil {
		angle = sql.NullFloat64{Float64: *res.Angle, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO probe_runs
			(kind, options, depth, start_distance, feed_rate, tool_number, x, y, z, angle, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kind, string(optData),
		run.Depth, run.StartDistance, run.FeedRate, run.ToolNumber,
		res.Point.X, res.Point.Y, res.Point.Z,
		angle, string(pointData), time.Now().Unix(),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) RecordCentre(opt probe.CentreOptions, run probe.Run, res *probe.Result) (int64, error) {
	return s.record("centre", opt, run, res)
}

func (s *Store) RecordEdge(opt probe.EdgeOptions, run probe.Run, res *probe.Result) (int64, error) {
	return s.record("edge", opt, run, res)
}

func (s *Store) RecordSurface(opt probe.SurfaceOptions, run probe.Run, point coord.Point, points []coord.Point) (int64, error) {
	return s.record("surface", opt, run, &probe.Result{Point: point, Points: points})
}

const selectRun = `
	SELECT run_id, kind, options, depth, start_distance, feed_rate, tool_number, x, y, z, angle, points, created_at
	FROM probe_runs
`

func scanRecord(scan func(...interface{}) error) (*Record, error) {
	var rec Record
	var opts, points string
	var angle sql.NullFloat64
	var created int64
	err := scan(
		&rec.ID, &rec.Kind, &opts,
		&rec.Run.Depth, &rec.Run.StartDistance, &rec.Run.FeedRate, &rec.Run.ToolNumber,
		&rec.Point.X, &rec.Point.Y, &rec.Point.Z,
		&angle, &points, &created,
	)
	if err != nil {
		return nil, err
	}
	rec.Options = json.RawMessage(opts)
	if angle.Valid {
		rec.Angle = &angle.Float64
	}
	if err = json.Unmarshal([]byte(points), &rec.Points); err != nil {
		return nil, err
	}
	rec.CreatedAt = time.Unix(created, 0)
	return &rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Record, error) {
	rows, err := s.db.Query(selectRun+"ORDER BY run_id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (s *Store) GetRun(id int64) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRow(selectRun+"WHERE run_id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no run with id %d", id)
	}
	return rec, err
}
