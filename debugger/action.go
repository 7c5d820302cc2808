package debugger

import "strconv"

// Control is a request to move the cursor. It is sent to the application,
// which applies it through its own action loop.
type Control interface {
	control()
	String() string
}

// Goto moves the cursor to an absolute index.
type Goto struct {
	Cursor int
}

// Undo moves the cursor one step back.
type Undo struct{}

// Redo moves the cursor one step forward.
type Redo struct{}

func (Goto) control() {}
func (Undo) control() {}
func (Redo) control() {}

func (g Goto) String() string { return "goto(" + strconv.Itoa(g.Cursor) + ")" }
func (Undo) String() string   { return "undo" }
func (Redo) String() string   { return "redo" }

// Action is what a debugged store dispatches: either an application action
// or a Control.
type Action[A any] struct {
	base    A
	control Control
}

// Base wraps an application action.
func Base[A any](a A) Action[A] {
	return Action[A]{base: a}
}

// Wrap wraps a control action.
func Wrap[A any](c Control) Action[A] {
	return Action[A]{control: c}
}

// Control returns the wrapped control action, if any.
func (a Action[A]) Control() (Control, bool) {
	return a.control, a.control != nil
}

// Base returns the wrapped application action, if any.
func (a Action[A]) Base() (A, bool) {
	return a.base, a.control == nil
}
