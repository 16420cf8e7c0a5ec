// Package runlog keeps a local sqlite record of pipeline runs: profile, row
// counts, duration, selected features, and the per-column fill-rate roles.
// It is a convenience for inspecting past runs, not part of the pipeline's
// success criteria; the pipeline runs fine without a database path.
package runlog

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DataFileName is the default database file name.
const DataFileName = "runs.db"

//go:embed sql/*
var f embed.FS

// Run is one recorded pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	Profile    string    `json:"profile"`
	Started    time.Time `json:"started"`
	DurationMS int64     `json:"duration_ms"`
	TrainRows  int       `json:"train_rows"`
	TestRows   int       `json:"test_rows"`
	OutPath    string    `json:"out_path"`
	Features   []string  `json:"features"`
}

// ColumnStat is one column's completeness classification within a run.
type ColumnStat struct {
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	FillRate float64 `json:"fill_rate"`
}

// Init creates the database schema when the file does not exist yet.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		db, err := Open(dbFilePath)
		if err != nil {
			return errors.Wrapf(err, "error opening database: %s", dbFilePath)
		}
		defer db.Close()

		log.Debug("creating db schema...")
		b, err := f.ReadFile("sql/ddl.sql")
		if err != nil {
			return errors.Wrap(err, "failed to read the schema creation file")
		}
		if _, err := db.Exec(string(b)); err != nil {
			return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
		}
		log.Debug("db schema created")
	}
	return nil
}

// Open returns a connection to the database at the given path.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}

// NewRunID derives a unique run identifier from the start time.
func NewRunID(started time.Time) string {
	return fmt.Sprintf("run-%d", started.UnixNano())
}

// Save records one run and its column stats in a single transaction.
func Save(db *sql.DB, r Run, cols []ColumnStat) error {
	if db == nil {
		return errors.New("database not initialized")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	_, err = tx.Exec(
		`INSERT INTO run (id, profile, started, duration_ms, train_rows, test_rows, out_path, features)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Profile, r.Started.UTC().Format(time.RFC3339Nano), r.DurationMS,
		r.TrainRows, r.TestRows, r.OutPath, strings.Join(r.Features, ","),
	)
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return errors.Wrap(rerr, "failed to rollback transaction")
		}
		return errors.Wrap(err, "failed to insert run")
	}

	for _, c := range cols {
		_, err = tx.Exec(
			`INSERT INTO run_column (run_id, name, role, fill_rate) VALUES (?, ?, ?, ?)`,
			r.ID, c.Name, c.Role, c.FillRate,
		)
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				return errors.Wrap(rerr, "failed to rollback transaction")
			}
			return errors.Wrapf(err, "failed to insert column stat: %s", c.Name)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// List returns the most recent runs, newest first.
func List(db *sql.DB, limit int) ([]Run, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(
		`SELECT id, profile, started, duration_ms, train_rows, test_rows, out_path, features
		 FROM run ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, features string
		if err := rows.Scan(&r.ID, &r.Profile, &started, &r.DurationMS,
			&r.TrainRows, &r.TestRows, &r.OutPath, &features); err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, errors.Wrapf(err, "failed to parse run time: %s", started)
		}
		if features != "" {
			r.Features = strings.Split(features, ",")
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "failed to read runs")
}

// Columns returns the column stats recorded for one run.
func Columns(db *sql.DB, runID string) ([]ColumnStat, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := db.Query(
		`SELECT name, role, fill_rate FROM run_column WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query columns for run: %s", runID)
	}
	defer rows.Close()

	var out []ColumnStat
	for rows.Next() {
		var c ColumnStat
		if err := rows.Scan(&c.Name, &c.Role, &c.FillRate); err != nil {
			return nil, errors.Wrap(err, "failed to scan column stat")
		}
		out = append(out, c)
	}
	return out, errors.Wrap(rows.Err(), "failed to read column stats")
}
