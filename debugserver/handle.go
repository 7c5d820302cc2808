package debugserver

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/hazyhaar/timetravel/debugger"
	"github.com/hazyhaar/timetravel/journal"
	"github.com/hazyhaar/timetravel/snapshot"
)

// errNoDispatcher is returned by POST routes before SetDispatcher.
var errNoDispatcher = errors.New("debugserver: no dispatcher set")

// Dispatcher forwards a control action to the application. It is called from
// HTTP goroutines and must not block on the action being applied.
type Dispatcher func(debugger.Control)

// Handle is the live link between one debugged application and the server.
type Handle[A, M any] struct {
	snap       snapshot.Holder[debugger.Model[A, M]]
	dispatcher atomic.Pointer[Dispatcher]
	recorder   Recorder
}

// handleBase is what the Server keeps of a Handle once the type parameters
// are erased.
type handleBase interface {
	detach()
	initialized() bool
}

// SetDispatcher installs the callback used by /goto, /undo and /redo.
func (h *Handle[A, M]) SetDispatcher(fn Dispatcher) {
	if fn == nil {
		h.dispatcher.Store(nil)
		return
	}
	h.dispatcher.Store(&fn)
}

// View publishes m. The model must not be mutated afterwards; models
// produced by debugger.Reduce satisfy this.
func (h *Handle[A, M]) View(m debugger.Model[A, M]) {
	h.snap.Publish(m)
}

func (h *Handle[A, M]) detach() {
	h.dispatcher.Store(nil)
}

func (h *Handle[A, M]) initialized() bool {
	return h.snap.Published()
}

// dispatch journals c when a recorder is configured, then forwards it.
func (h *Handle[A, M]) dispatch(r *http.Request, c debugger.Control) error {
	fn := h.dispatcher.Load()
	if fn == nil {
		return errNoDispatcher
	}
	if h.recorder != nil {
		h.recorder.RecordAsync(journalEntry(r, c))
	}
	GetLogger(r.Context()).Debug("debugserver: dispatch", "control", c.String())
	(*fn)(c)
	return nil
}

func journalEntry(r *http.Request, c debugger.Control) journal.Entry {
	e := journal.Entry{
		TraceID:    GetTraceID(r.Context()),
		RemoteAddr: r.RemoteAddr,
	}
	switch c := c.(type) {
	case debugger.Goto:
		cursor := c.Cursor
		e.Action = "goto"
		e.Cursor = &cursor
	case debugger.Undo:
		e.Action = "undo"
	case debugger.Redo:
		e.Action = "redo"
	}
	return e
}
