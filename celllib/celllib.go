// Package celllib implements the process-wide cell library: a registry
// mapping cell type names to evaluator functions plus declarative pin,
// area, and sequential metadata.
//
// The registry is built once (via NewDefaultLibrary, mirroring the
// "process-wide, initialized once, then read-only" instruction-table
// policy in core/instruction.go) and is safe for concurrent reads
// thereafter.
package celllib

import "github.com/sarchlab/gatesim/bitvec"

// Evaluator is a pure, side-effect-free function from ordered input bits
// to ordered output bits. For a sequential entry, the clock pin is still
// present (in declared order) among the inputs but is ignored by the
// evaluator; engine.Engine uses the evaluator's result only to compute
// the flip-flop's next state, never committing it outside a clock edge.
type Evaluator func(inputs []bitvec.Bit) []bitvec.Bit

// Entry is one cell type's declarative metadata and behavioral model.
type Entry struct {
	TypeName   string
	InputPins  []string
	OutputPins []string
	Area       int
	Sequential bool
	ClockPin   string // only meaningful when Sequential
	ResetPin   string // optional per-cell synchronous reset pin; "" if none
	Eval       Evaluator
}

// HasPin reports whether name is one of the entry's declared pins.
func (e Entry) HasPin(name string) bool {
	for _, p := range e.InputPins {
		if p == name {
			return true
		}
	}
	for _, p := range e.OutputPins {
		if p == name {
			return true
		}
	}
	return false
}

// Library is the process-wide registry of cell types.
type Library struct {
	entries map[string]Entry
}

// NewLibrary returns an empty, writable library. Callers normally start
// from NewDefaultLibrary and Register additional entries before treating
// it as read-only.
func NewLibrary() *Library {
	return &Library{entries: make(map[string]Entry)}
}

// Register adds a cell type. It is an error to register the same type
// name twice.
func (l *Library) Register(e Entry) error {
	if _, ok := l.entries[e.TypeName]; ok {
		return &duplicateTypeError{typeName: e.TypeName}
	}
	l.entries[e.TypeName] = e
	return nil
}

// Lookup returns the entry for typeName, if registered.
func (l *Library) Lookup(typeName string) (Entry, bool) {
	e, ok := l.entries[typeName]
	return e, ok
}

type duplicateTypeError struct{ typeName string }

func (e *duplicateTypeError) Error() string {
	return "celllib: cell type already registered: " + e.typeName
}

// NewDefaultLibrary returns a library pre-registered with the base
// gates (BUF, NOT, NAND, NOR, DFF) plus a handful of composite derived
// gates (AND, OR, XOR, XNOR) commonly needed to express synthesized
// netlists concisely, in the same spirit as pre-registering a composite
// evaluator such as full_adder.
func NewDefaultLibrary() *Library {
	lib := NewLibrary()

	must := func(e Entry) {
		if err := lib.Register(e); err != nil {
			panic(err)
		}
	}

	must(Entry{
		TypeName:   "BUF",
		InputPins:  []string{"A"},
		OutputPins: []string{"Y"},
		Area:       1,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{in[0]}
		},
	})

	must(Entry{
		TypeName:   "NOT",
		InputPins:  []string{"A"},
		OutputPins: []string{"Y"},
		Area:       1,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{negate(in[0])}
		},
	})

	must(Entry{
		TypeName:   "NAND",
		InputPins:  []string{"A", "B"},
		OutputPins: []string{"Y"},
		Area:       2,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{negate(and(in[0], in[1]))}
		},
	})

	must(Entry{
		TypeName:   "NOR",
		InputPins:  []string{"A", "B"},
		OutputPins: []string{"Y"},
		Area:       2,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{negate(or(in[0], in[1]))}
		},
	})

	must(Entry{
		TypeName:   "AND",
		InputPins:  []string{"A", "B"},
		OutputPins: []string{"Y"},
		Area:       3,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{and(in[0], in[1])}
		},
	})

	must(Entry{
		TypeName:   "OR",
		InputPins:  []string{"A", "B"},
		OutputPins: []string{"Y"},
		Area:       3,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{or(in[0], in[1])}
		},
	})

	must(Entry{
		TypeName:   "XOR",
		InputPins:  []string{"A", "B"},
		OutputPins: []string{"Y"},
		Area:       4,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{xor(in[0], in[1])}
		},
	})

	must(Entry{
		TypeName:   "XNOR",
		InputPins:  []string{"A", "B"},
		OutputPins: []string{"Y"},
		Area:       4,
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{negate(xor(in[0], in[1]))}
		},
	})

	must(Entry{
		TypeName:   "DFF",
		InputPins:  []string{"C", "D"},
		OutputPins: []string{"Q"},
		Area:       6,
		Sequential: true,
		ClockPin:   "C",
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			// Each call to eval_clocked already represents one clock
			// edge; in[0] (the clock pin) is carried for pin-shape
			// uniformity but not read.
			return []bitvec.Bit{in[1]}
		},
	})

	must(Entry{
		TypeName:   "DFFR",
		InputPins:  []string{"C", "D", "R"},
		OutputPins: []string{"Q"},
		Area:       8,
		Sequential: true,
		ClockPin:   "C",
		ResetPin:   "R",
		Eval: func(in []bitvec.Bit) []bitvec.Bit {
			return []bitvec.Bit{in[1]}
		},
	})

	return lib
}

func negate(a bitvec.Bit) bitvec.Bit {
	if a == bitvec.Zero {
		return bitvec.One
	}
	return bitvec.Zero
}

func and(a, b bitvec.Bit) bitvec.Bit {
	if a == bitvec.One && b == bitvec.One {
		return bitvec.One
	}
	return bitvec.Zero
}

func or(a, b bitvec.Bit) bitvec.Bit {
	if a == bitvec.One || b == bitvec.One {
		return bitvec.One
	}
	return bitvec.Zero
}

func xor(a, b bitvec.Bit) bitvec.Bit {
	if a != b {
		return bitvec.One
	}
	return bitvec.Zero
}
