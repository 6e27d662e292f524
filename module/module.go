// Package module implements the netlist data model above Signal: cell
// instances, modules, components (the recursive cell/submodule union),
// and ports. A Module owns its cells and child components by value or
// by slice; all Signal handles are indices into a single shared
// signal.Table owned by the top-level design, so that a sub-module's
// port aliases the exact same handle as the parent's connection.
package module

import (
	"github.com/sarchlab/gatesim/celllib"
	"github.com/sarchlab/gatesim/signal"
)

// Direction is a port or cell-pin direction.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
	DirInout
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	default:
		return "unknown"
	}
}

// CellInstance is a bound instance of a library cell inside a module.
type CellInstance struct {
	Name     string
	Type     string
	Entry    celllib.Entry
	Inputs   map[string]signal.Handle
	Outputs  map[string]signal.Handle
	HasReset bool
	Reset    signal.Handle // valid only if HasReset
}

// ComponentKind distinguishes a leaf cell from a nested sub-module.
type ComponentKind int

const (
	LeafCell ComponentKind = iota
	SubModule
)

// Component is one node in a module's evaluation order: either a leaf
// cell instance or a nested module instance.
type Component struct {
	Kind ComponentKind
	Name string
	Cell *CellInstance // set when Kind == LeafCell
	Sub  *Module       // set when Kind == SubModule
}

// Port is a named, ordered bundle of signal handles at a module's
// boundary. Clock/reset role assignment is tracked separately, by
// config.Config (ClockPort/ResetPort name lookups), not here.
type Port struct {
	Name      string
	Bits      []signal.Handle
	Direction Direction
}

// Module is a named collection of cells, nested sub-components, signals,
// and ports.
type Module struct {
	Name      string
	Signals   *signal.Table // shared with the whole design
	Ports     map[string]*Port
	PortOrder []string

	// OwnHandles are the signal handles first allocated while building
	// this module (its own internal nets and, for the top module, its
	// own port bits). Aliased port handles belonging to a parent are
	// NOT included here, so recursive toggle/area aggregation never
	// double-counts a net.
	OwnHandles []signal.Handle

	// EvalOrder is the topologically sorted list of combinational
	// components (leaf cells that are not sequential, plus every
	// sub-module instance) to walk during eval(). Sequential leaf cells
	// are excluded; see SequentialCells.
	EvalOrder []*Component

	// SequentialCells are this module's own flip-flop cell instances
	// (not recursive).
	SequentialCells []*CellInstance

	// AllCells indexes every leaf cell instance directly owned by this
	// module (combinational and sequential), by name.
	// cell_breakdown/area walk Components instead.
	AllCells map[string]*CellInstance

	// Components lists every direct child component (cells and
	// sub-modules) in ascending cell-name order, independent of
	// EvalOrder; used for module_names() pre-order traversal.
	Components []*Component
}

// NewModule returns an empty module bound to the given shared signal
// table.
func NewModule(name string, signals *signal.Table) *Module {
	return &Module{
		Name:     name,
		Signals:  signals,
		Ports:    make(map[string]*Port),
		AllCells: make(map[string]*CellInstance),
	}
}

// Port looks up a port by name.
func (m *Module) Port(name string) (*Port, bool) {
	p, ok := m.Ports[name]
	return p, ok
}
