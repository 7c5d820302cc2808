// Package debugger implements the time-travel model that wraps an
// application reducer: every applied action is recorded with its resulting
// state, and a cursor selects which recorded state is current.
//
// Models are values. The reducer returned by Reduce never writes into a
// backing array element that an earlier model can see, so a model may be
// published to concurrent readers as soon as it is returned.
package debugger

// Entry is one recorded step: the action and the state it produced.
type Entry[A, M any] struct {
	Action A
	Model  M
}

// Model is the debugger state. Cursor 0 selects Init; Cursor k > 0 selects
// History[k-1].Model. Invariant: 0 <= Cursor <= len(History).
type Model[A, M any] struct {
	Init    M
	History []Entry[A, M]
	Cursor  int
}

// New returns a model positioned at init with an empty history.
func New[A, M any](init M) Model[A, M] {
	return Model[A, M]{Init: init}
}

// Current returns the state selected by the cursor.
func (m Model[A, M]) Current() M {
	if m.Cursor == 0 {
		return m.Init
	}
	return m.History[m.Cursor-1].Model
}

// Size is the number of recorded steps.
func (m Model[A, M]) Size() int {
	return len(m.History)
}

// Status is the {size, cursor} projection served by the root endpoint.
type Status struct {
	Size   int `json:"size"`
	Cursor int `json:"cursor"`
}

// Status projects m.
func (m Model[A, M]) Status() Status {
	return Status{Size: len(m.History), Cursor: m.Cursor}
}

// Step is the projection of one history index. Action is nil only for index
// 0, the initial state.
type Step[A, M any] struct {
	Action *A `json:"action"`
	Model  M  `json:"model"`
}

// Step returns the projection for index n, or false when n is outside
// [0, Size()].
func (m Model[A, M]) Step(n int) (Step[A, M], bool) {
	if n < 0 || n > len(m.History) {
		return Step[A, M]{}, false
	}
	if n == 0 {
		return Step[A, M]{Model: m.Init}, true
	}
	e := m.History[n-1]
	act := e.Action
	return Step[A, M]{Action: &act, Model: e.Model}, true
}
