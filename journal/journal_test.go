package journal

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/hazyhaar/timetravel/dbopen"
	"github.com/hazyhaar/timetravel/idgen"
)

func setupJournal(t *testing.T, bufferSize int) (*Journal, *sql.DB) {
	t.Helper()
	db := dbopen.OpenMemory(t)
	j, err := New(db, bufferSize)
	if err != nil {
		t.Fatal(err)
	}
	return j, db
}

func intp(n int) *int { return &n }

func TestNew_CreatesTable(t *testing.T) {
	j, db := setupJournal(t, 0)
	defer j.Close()

	var count int
	db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='control_journal'").Scan(&count)
	if count != 1 {
		t.Fatal("control_journal table not created")
	}
}

func TestRecord_Sync(t *testing.T) {
	j, _ := setupJournal(t, 0)
	defer j.Close()

	ctx := context.Background()
	if err := j.Record(ctx, Entry{Action: "goto", Cursor: intp(3), TraceID: "abcd1234"}); err != nil {
		t.Fatal(err)
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("entries: got %d, want 1", len(got))
	}
	e := got[0]
	if e.Action != "goto" || e.Cursor == nil || *e.Cursor != 3 || e.TraceID != "abcd1234" {
		t.Fatalf("entry: %+v", e)
	}
	if len(e.EntryID) < 4 || e.EntryID[:4] != "jrn_" {
		t.Fatalf("entry_id: got %q, want jrn_ prefix", e.EntryID)
	}
	if e.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}
}

func TestRecord_NilCursor(t *testing.T) {
	j, _ := setupJournal(t, 0)
	defer j.Close()

	ctx := context.Background()
	if err := j.Record(ctx, Entry{Action: "undo"}); err != nil {
		t.Fatal(err)
	}
	got, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Cursor != nil {
		t.Fatalf("got %+v, want one entry without cursor", got)
	}
}

func TestRecordAsync_FlushedOnClose(t *testing.T) {
	j, _ := setupJournal(t, 16)

	for i := 0; i < 5; i++ {
		j.RecordAsync(Entry{Action: "redo"})
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := j.Recent(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("entries after close: got %d, want 5", len(got))
	}
}

func TestRecordAsync_FullBufferFallsBack(t *testing.T) {
	// WHAT: entries beyond the buffer are still persisted.
	// WHY: a burst of remote clicks must not silently vanish from the journal.
	db := dbopen.OpenMemory(t)
	j, err := New(db, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		j.RecordAsync(Entry{Action: "undo"})
	}
	j.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM control_journal").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 50 {
		t.Fatalf("rows: got %d, want 50", count)
	}
}

func TestRecent_NewestFirstAndLimit(t *testing.T) {
	db := dbopen.OpenMemory(t)
	j, err := New(db, 0, WithIDGenerator(idgen.Sequence("e")))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := j.Record(ctx, Entry{Action: "goto", Cursor: intp(i), Timestamp: base.Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("entries: got %d, want 3", len(got))
	}
	for i, want := range []int{4, 3, 2} {
		if *got[i].Cursor != want {
			t.Fatalf("entry %d: cursor %d, want %d", i, *got[i].Cursor, want)
		}
	}
	if got[0].EntryID != "e5" {
		t.Fatalf("entry_id: got %q, want e5", got[0].EntryID)
	}
	if !got[0].Timestamp.Equal(base.Add(4 * time.Second)) {
		t.Fatalf("timestamp: got %v", got[0].Timestamp)
	}
}
