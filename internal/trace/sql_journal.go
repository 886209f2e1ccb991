package trace

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const createTable = `CREATE TABLE IF NOT EXISTS call_events (
	seq BIGINT NOT NULL,
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	callable VARCHAR(255) NOT NULL,
	kind VARCHAR(8) NOT NULL,
	status INTEGER NOT NULL,
	err TEXT NOT NULL,
	position INTEGER NOT NULL,
	depth INTEGER NOT NULL,
	at_unix_nano BIGINT NOT NULL
)`

// SQLJournal writes events through database/sql. Supported drivers are
// sqlite3, mysql and postgres.
type SQLJournal struct {
	db     *sql.DB
	driver string

	mu  sync.Mutex
	seq int64
}

func Open(driver, dsn string) (*SQLJournal, error) {
	switch driver {
	case "sqlite3", "postgres":
	case "mysql":
		if _, err := mysql.ParseDSN(dsn); err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported trace driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s journal: %w", driver, err)
	}
	if driver == "sqlite3" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	j := &SQLJournal{db: db, driver: driver}
	if err := j.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("trace journal opened", slog.String("driver", driver), slog.Int64("seq", j.seq))
	return j, nil
}

func (j *SQLJournal) migrate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create call_events: %w", err)
	}
	var maxSeq sql.NullInt64
	if err := j.db.QueryRowContext(ctx, "SELECT MAX(seq) FROM call_events").Scan(&maxSeq); err != nil {
		return fmt.Errorf("failed to read call_events: %w", err)
	}
	j.seq = maxSeq.Int64
	return nil
}

// placeholders returns n bind markers in the driver's dialect.
func (j *SQLJournal) placeholders(n int) string {
	marks := make([]string, n)
	for i := range marks {
		if j.driver == "postgres" {
			marks[i] = "$" + strconv.Itoa(i+1)
		} else {
			marks[i] = "?"
		}
	}
	return strings.Join(marks, ", ")
}

func (j *SQLJournal) Record(ctx context.Context, ev Event) error {
	fill(&ev)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.seq++

	query := "INSERT INTO call_events (seq, id, callable, kind, status, err, position, depth, at_unix_nano) VALUES (" +
		j.placeholders(9) + ")"
	_, err := j.db.ExecContext(ctx, query,
		j.seq, ev.ID.String(), ev.Callable, string(ev.Kind), ev.Status, ev.Err, ev.Position, ev.Depth, ev.At.UnixNano())
	if err != nil {
		j.seq--
		return fmt.Errorf("failed to record call event: %w", err)
	}
	return nil
}

// Events returns the newest limit events, oldest first.
func (j *SQLJournal) Events(ctx context.Context, limit int) ([]Event, error) {
	query := "SELECT id, callable, kind, status, err, position, depth, at_unix_nano FROM call_events ORDER BY seq DESC LIMIT " +
		j.placeholders(1)
	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query call events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			id, kind string
			at       int64
			ev       Event
		)
		if err := rows.Scan(&id, &ev.Callable, &kind, &ev.Status, &ev.Err, &ev.Position, &ev.Depth, &at); err != nil {
			return nil, fmt.Errorf("failed to scan call event: %w", err)
		}
		ev.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("bad event id %q: %w", id, err)
		}
		ev.Kind = Kind(kind)
		ev.At = time.Unix(0, at)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, k := 0, len(events)-1; i < k; i, k = i+1, k-1 {
		events[i], events[k] = events[k], events[i]
	}
	return events, nil
}

func (j *SQLJournal) Close() error {
	return j.db.Close()
}
