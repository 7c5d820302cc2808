package debugger

import "testing"

func concat(s string, a string) string { return s + a }

func build(t *testing.T, acts ...string) Model[string, string] {
	t.Helper()
	reduce := Reduce[string, string](concat)
	m := New[string]("")
	for _, a := range acts {
		m = reduce(m, Base(a))
	}
	return m
}

func TestModel_Step(t *testing.T) {
	m := Model[string, string]{
		Init: "A",
		History: []Entry[string, string]{
			{Action: "inc", Model: "B"},
			{Action: "inc", Model: "C"},
		},
		Cursor: 2,
	}

	if got := m.Status(); got != (Status{Size: 2, Cursor: 2}) {
		t.Fatalf("Status: got %+v", got)
	}

	s, ok := m.Step(0)
	if !ok || s.Action != nil || s.Model != "A" {
		t.Fatalf("Step(0): got %+v ok=%v", s, ok)
	}
	s, ok = m.Step(2)
	if !ok || s.Action == nil || *s.Action != "inc" || s.Model != "C" {
		t.Fatalf("Step(2): got %+v ok=%v", s, ok)
	}
	for _, n := range []int{-1, 3, 5} {
		if _, ok := m.Step(n); ok {
			t.Fatalf("Step(%d): expected out of range", n)
		}
	}
}

func TestModel_Current(t *testing.T) {
	m := build(t, "a", "b")
	if got := m.Current(); got != "ab" {
		t.Fatalf("Current: got %q", got)
	}
	m.Cursor = 0
	if got := m.Current(); got != "" {
		t.Fatalf("Current at 0: got %q", got)
	}
}

func TestReduce_AppendsAtTip(t *testing.T) {
	m := build(t, "a", "b", "c")
	if m.Size() != 3 || m.Cursor != 3 {
		t.Fatalf("got size=%d cursor=%d", m.Size(), m.Cursor)
	}
	if m.History[2].Action != "c" || m.History[2].Model != "abc" {
		t.Fatalf("last entry: %+v", m.History[2])
	}
}

func TestReduce_Controls(t *testing.T) {
	reduce := Reduce[string, string](concat)
	m := build(t, "a", "b", "c")

	tests := []struct {
		name   string
		from   int
		ctl    Control
		cursor int
	}{
		{"undo", 3, Undo{}, 2},
		{"undo at start is no-op", 0, Undo{}, 0},
		{"redo", 1, Redo{}, 2},
		{"redo at end is no-op", 3, Redo{}, 3},
		{"goto", 3, Goto{Cursor: 1}, 1},
		{"goto zero", 2, Goto{Cursor: 0}, 0},
		{"goto end", 0, Goto{Cursor: 3}, 3},
		{"goto past end is ignored", 2, Goto{Cursor: 9}, 2},
		{"goto negative is ignored", 2, Goto{Cursor: -1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := m
			in.Cursor = tt.from
			out := reduce(in, Wrap[string](tt.ctl))
			if out.Cursor != tt.cursor {
				t.Fatalf("cursor: got %d, want %d", out.Cursor, tt.cursor)
			}
			if out.Size() != 3 {
				t.Fatalf("control changed history size to %d", out.Size())
			}
		})
	}
}

func TestReduce_ActionAfterUndoDropsRedoBranch(t *testing.T) {
	reduce := Reduce[string, string](concat)
	m := build(t, "a", "b", "c")
	m = reduce(m, Wrap[string](Undo{}))
	m = reduce(m, Wrap[string](Undo{}))
	m = reduce(m, Base("x"))

	if m.Size() != 2 || m.Cursor != 2 {
		t.Fatalf("got size=%d cursor=%d, want 2/2", m.Size(), m.Cursor)
	}
	if m.Current() != "ax" {
		t.Fatalf("Current: got %q, want ax", m.Current())
	}
}

func TestReduce_OlderModelsUnchanged(t *testing.T) {
	// WHAT: a model returned earlier keeps its history after later actions.
	// WHY: published snapshots are read concurrently without copying.
	reduce := Reduce[string, string](concat)
	m := build(t, "a", "b", "c")
	old := reduce(m, Wrap[string](Undo{}))

	_ = reduce(old, Base("x"))

	if old.History[2].Action != "c" || old.History[2].Model != "abc" {
		t.Fatalf("old snapshot mutated: %+v", old.History[2])
	}
}

func TestReduceWithLimit(t *testing.T) {
	reduce := ReduceWithLimit[string, string](concat, 2)
	m := New[string]("")
	for _, a := range []string{"a", "b", "c", "d"} {
		m = reduce(m, Base(a))
	}
	if m.Size() != 2 || m.Cursor != 2 {
		t.Fatalf("got size=%d cursor=%d", m.Size(), m.Cursor)
	}
	if m.Init != "ab" {
		t.Fatalf("Init: got %q, want ab", m.Init)
	}
	if m.History[0].Model != "abc" || m.History[1].Model != "abcd" {
		t.Fatalf("history: %+v", m.History)
	}
}

func TestControl_String(t *testing.T) {
	cases := map[Control]string{
		Goto{Cursor: 1}: "goto(1)",
		Undo{}:          "undo",
		Redo{}:          "redo",
	}
	for c, want := range cases {
		if got := c.String(); got != want {
			t.Errorf("%T: got %q, want %q", c, got, want)
		}
	}
}

func TestAction_Accessors(t *testing.T) {
	a := Base("inc")
	if _, ok := a.Control(); ok {
		t.Fatal("base action reports control")
	}
	if v, ok := a.Base(); !ok || v != "inc" {
		t.Fatalf("Base: got %q ok=%v", v, ok)
	}
	c := Wrap[string](Redo{})
	if v, ok := c.Control(); !ok || v != (Redo{}) {
		t.Fatalf("Control: got %v ok=%v", v, ok)
	}
	if _, ok := c.Base(); ok {
		t.Fatal("control action reports base")
	}
}
