// Package signal implements the single-bit net abstraction: current and
// previous value, rising/falling toggle counters, and constant signals.
// A Table is the arena that owns every Signal by value; a Handle is a
// stable index into that arena, following the id<->name binding style of
// confignew/idbinding.go but generalized from string names to a dense
// integer arena since nets have no stable name outside debug output.
package signal

import "github.com/sarchlab/gatesim/bitvec"

// Handle identifies a Signal within its owning Table. It is stable for
// the Table's lifetime.
type Handle int

// Signal is a single-bit net: current value, the value as of the last
// completed evaluation pass, and toggle counters.
type Signal struct {
	Name     string
	Current  bitvec.Bit
	Previous bitvec.Bit
	Rising   uint64
	Falling  uint64
	constant bool
}

// IsConstant reports whether the signal is a degenerate constant net
// (writes rejected, transitions never counted).
func (s Signal) IsConstant() bool { return s.constant }

// Table is the arena owning every Signal belonging to one design
// (shared across the whole module hierarchy so that a sub-module's
// aliased port handles are literally the same index as the parent's).
type Table struct {
	signals []Signal
}

// NewTable returns an empty signal arena.
func NewTable() *Table {
	return &Table{}
}

// Alloc allocates a fresh net, current and previous value 0.
func (t *Table) Alloc(name string) Handle {
	t.signals = append(t.signals, Signal{Name: name})
	return Handle(len(t.signals) - 1)
}

// AllocConstant allocates a constant net fixed at value v.
func (t *Table) AllocConstant(name string, v bitvec.Bit) Handle {
	t.signals = append(t.signals, Signal{Name: name, Current: v, Previous: v, constant: true})
	return Handle(len(t.signals) - 1)
}

// Get returns a read-only snapshot of the signal.
func (t *Table) Get(h Handle) Signal {
	return t.signals[h]
}

// Write assigns a new value to a signal, updating rising/falling toggle
// counters whenever the value actually changes. Writing a constant
// signal is an error.
func (t *Table) Write(h Handle, v bitvec.Bit) error {
	s := &t.signals[h]
	if s.constant {
		return errConstantWrite(s.Name)
	}
	if s.Current == v {
		return nil
	}
	s.Previous = s.Current
	if v == bitvec.One {
		s.Rising++
	} else {
		s.Falling++
	}
	s.Current = v
	return nil
}

// ForceValue sets a signal's current and previous value directly,
// without touching toggle counters. Used by reset()/reset_clocked,
// which zero state but leave (reset_clocked) or also zero (reset) the
// counters explicitly and separately.
func (t *Table) ForceValue(h Handle, v bitvec.Bit) {
	s := &t.signals[h]
	if s.constant {
		return
	}
	s.Current = v
	s.Previous = v
}

// SyncPrevious resyncs Previous to the current value for every given
// handle. Called once per completed evaluation pass so that, at rest,
// Previous always equals Current; mid-pass, Write still records each
// signal's pre-toggle value in Previous for edge-sensitive cells.
func (t *Table) SyncPrevious(handles []Handle) {
	for _, h := range handles {
		s := &t.signals[h]
		s.Previous = s.Current
	}
}

// ResetCounts zeros the rising/falling counters for the given handles
// without touching current values.
func (t *Table) ResetCounts(handles []Handle) {
	for _, h := range handles {
		s := &t.signals[h]
		s.Rising = 0
		s.Falling = 0
	}
}

// ResetCountsAll zeros every signal's counters.
func (t *Table) ResetCountsAll() {
	for i := range t.signals {
		t.signals[i].Rising = 0
		t.signals[i].Falling = 0
	}
}

// Toggles returns the rising+falling sum over the given handles.
func (t *Table) Toggles(handles []Handle) (rising, falling uint64) {
	for _, h := range handles {
		s := t.signals[h]
		rising += s.Rising
		falling += s.Falling
	}
	return rising, falling
}

func errConstantWrite(name string) error {
	return &constantWriteError{name: name}
}

type constantWriteError struct{ name string }

func (e *constantWriteError) Error() string {
	return "signal: write to constant signal " + e.name
}
