// Package journal records the control actions (goto, undo, redo) received by
// the debug server in SQLite, so a session's remote navigation can be
// reviewed after the fact.
//
// Persistence from request handlers is asynchronous: RecordAsync queues the
// entry and a background loop inserts batches. When the buffer is full the
// entry is written synchronously instead of being dropped.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/timetravel/idgen"
)

// Schema is the DDL for the journal table.
const Schema = `
CREATE TABLE IF NOT EXISTS control_journal (
    entry_id    TEXT PRIMARY KEY,
    timestamp   INTEGER NOT NULL,
    action      TEXT NOT NULL,
    cursor      INTEGER,
    trace_id    TEXT,
    remote_addr TEXT
);
CREATE INDEX IF NOT EXISTS idx_control_journal_time
    ON control_journal(timestamp DESC);
`

// Entry is one control action as received over HTTP.
type Entry struct {
	EntryID    string    `json:"entry_id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"` // "goto", "undo", "redo"
	Cursor     *int      `json:"cursor,omitempty"`
	TraceID    string    `json:"trace_id,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
}

const (
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Journal persists entries. Create with New, release with Close.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
	newID  idgen.Generator
	ch     chan *Entry
	stop   chan struct{}
	done   chan struct{}
}

// Option configures a Journal.
type Option func(*Journal)

// WithIDGenerator sets the generator for entry IDs. Default: "jrn_" + UUIDv7.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(j *Journal) { j.newID = gen }
}

// WithLogger sets the logger for persistence failures. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

// New applies Schema to db and starts the flush loop. bufferSize bounds the
// async queue; values <= 0 use 256.
func New(db *sql.DB, bufferSize int, opts ...Option) (*Journal, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("journal: init schema: %w", err)
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}
	j := &Journal{
		db:     db,
		logger: slog.Default(),
		newID:  idgen.Prefixed("jrn_", idgen.Default),
		ch:     make(chan *Entry, bufferSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(j)
	}
	go j.flushLoop()
	return j, nil
}

// Record inserts e synchronously.
func (j *Journal) Record(ctx context.Context, e Entry) error {
	j.fillDefaults(&e)
	if err := j.insert(ctx, j.db, &e); err != nil {
		return fmt.Errorf("journal: insert: %w", err)
	}
	return nil
}

// RecordAsync queues e. Falls back to a synchronous insert if the buffer is full.
func (j *Journal) RecordAsync(e Entry) {
	j.fillDefaults(&e)
	select {
	case j.ch <- &e:
	default:
		j.logger.Warn("journal: buffer full, sync fallback", "action", e.Action)
		if err := j.insert(context.Background(), j.db, &e); err != nil {
			j.logger.Error("journal: sync fallback failed", "error", err)
		}
	}
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT entry_id, timestamp, action, cursor, trace_id, remote_addr
		FROM control_journal
		ORDER BY timestamp DESC, entry_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var ts int64
		var cursor sql.NullInt64
		var traceID, remote sql.NullString
		if err := rows.Scan(&e.EntryID, &ts, &e.Action, &cursor, &traceID, &remote); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts).UTC()
		if cursor.Valid {
			c := int(cursor.Int64)
			e.Cursor = &c
		}
		e.TraceID = traceID.String
		e.RemoteAddr = remote.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close flushes queued entries and stops the flush loop. The database is
// left open; it belongs to the caller.
func (j *Journal) Close() error {
	close(j.stop)
	<-j.done
	return nil
}

func (j *Journal) fillDefaults(e *Entry) {
	if e.EntryID == "" {
		e.EntryID = j.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (j *Journal) insert(ctx context.Context, x execer, e *Entry) error {
	var cursor sql.NullInt64
	if e.Cursor != nil {
		cursor = sql.NullInt64{Int64: int64(*e.Cursor), Valid: true}
	}
	_, err := x.ExecContext(ctx, `INSERT INTO control_journal
		(entry_id, timestamp, action, cursor, trace_id, remote_addr)
		VALUES (?,?,?,?,?,?)`,
		e.EntryID, e.Timestamp.UnixMilli(), e.Action, cursor, e.TraceID, e.RemoteAddr)
	return err
}

func (j *Journal) flushLoop() {
	defer close(j.done)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	batch := make([]*Entry, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			j.logger.Error("journal: begin tx", "error", err)
			return
		}
		for _, e := range batch {
			if err := j.insert(ctx, tx, e); err != nil {
				j.logger.Error("journal: insert", "error", err, "entry_id", e.EntryID)
			}
		}
		if err := tx.Commit(); err != nil {
			j.logger.Error("journal: commit", "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-j.stop:
			for {
				select {
				case e := <-j.ch:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		case e := <-j.ch:
			batch = append(batch, e)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
