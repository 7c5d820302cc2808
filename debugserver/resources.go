package debugserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/hazyhaar/timetravel/debugger"
)

// rootResource serves GET /.
type rootResource[A, M any] struct {
	self *Handle[A, M]
}

func (res rootResource[A, M]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m, err := res.self.snap.Load()
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, r, http.StatusOK, m.Status())
}

// stepResource serves GET /step?cursor=N.
type stepResource[A, M any] struct {
	self *Handle[A, M]
}

func (res stepResource[A, M]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorArg(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	m, err := res.self.snap.Load()
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	step, ok := m.Step(cursor)
	if !ok {
		// Past the end: empty 200, the client probes until it gets nothing.
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, r, http.StatusOK, step)
}

// gotoResource serves POST /goto?cursor=N. The cursor is not checked
// against the history size; the application decides what an out-of-range
// goto means.
type gotoResource[A, M any] struct {
	self *Handle[A, M]
}

func (res gotoResource[A, M]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cursor, err := cursorArg(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	control(w, r, res.self, debugger.Goto{Cursor: cursor})
}

// undoResource serves POST /undo.
type undoResource[A, M any] struct {
	self *Handle[A, M]
}

func (res undoResource[A, M]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	control(w, r, res.self, debugger.Undo{})
}

// redoResource serves POST /redo.
type redoResource[A, M any] struct {
	self *Handle[A, M]
}

func (res redoResource[A, M]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	control(w, r, res.self, debugger.Redo{})
}

func control[A, M any](w http.ResponseWriter, r *http.Request, h *Handle[A, M], c debugger.Control) {
	if err := h.dispatch(r, c); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// cursorArg parses the cursor query parameter as a non-negative int.
func cursorArg(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return 0, fmt.Errorf("missing cursor parameter")
	}
	n, err := strconv.ParseUint(raw, 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor %q: must be a non-negative integer", raw)
	}
	return int(n), nil
}
