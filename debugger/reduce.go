package debugger

import "slices"

// Reducer is an application reducer.
type Reducer[M, A any] func(M, A) M

// Reduce returns the debugger reducer around inner with unbounded history.
func Reduce[A, M any](inner Reducer[M, A]) func(Model[A, M], Action[A]) Model[A, M] {
	return ReduceWithLimit(inner, 0)
}

// ReduceWithLimit is Reduce keeping at most limit history entries. When an
// append overflows, the oldest entries are dropped and the last dropped
// state becomes Init. limit <= 0 means unbounded.
//
// Control semantics:
//   - Goto(n) sets the cursor when 0 <= n <= Size(), otherwise it is ignored.
//   - Undo at cursor 0 and Redo at cursor Size() are no-ops.
//
// An application action is applied to Current(); any steps after the cursor
// are discarded before the new step is appended.
func ReduceWithLimit[A, M any](inner Reducer[M, A], limit int) func(Model[A, M], Action[A]) Model[A, M] {
	return func(m Model[A, M], act Action[A]) Model[A, M] {
		if c, ok := act.Control(); ok {
			return applyControl(m, c)
		}
		a, _ := act.Base()
		next := inner(m.Current(), a)

		// Appending in place is only safe at the tip: no earlier model can
		// see elements past its own length, and no later model exists yet.
		// After an undo, clip so append copies instead of overwriting the
		// redo branch that older snapshots still reference.
		history := m.History
		if m.Cursor < len(history) {
			history = slices.Clip(history[:m.Cursor])
		}
		history = append(history, Entry[A, M]{Action: a, Model: next})
		m.History = history
		m.Cursor = len(history)

		if limit > 0 && len(m.History) > limit {
			drop := len(m.History) - limit
			m.Init = m.History[drop-1].Model
			m.History = slices.Clone(m.History[drop:])
			m.Cursor = len(m.History)
		}
		return m
	}
}

func applyControl[A, M any](m Model[A, M], c Control) Model[A, M] {
	switch c := c.(type) {
	case Goto:
		if c.Cursor >= 0 && c.Cursor <= len(m.History) {
			m.Cursor = c.Cursor
		}
	case Undo:
		if m.Cursor > 0 {
			m.Cursor--
		}
	case Redo:
		if m.Cursor < len(m.History) {
			m.Cursor++
		}
	}
	return m
}
