// Package engine implements the combinational and sequential evaluation
// algorithms: topological propagation, clocked flip-flop updates with
// synchronous reset, and toggle/area/cell-count aggregation over a
// module tree.
//
// There is no event queue, timestamp, or delta-cycle here: Eval is a
// single deterministic walk of a module's precomputed topological
// order, and EvalClocked is two such walks bracketing an atomic
// flip-flop commit.
package engine

import (
	"sort"

	"github.com/sarchlab/gatesim/bitvec"
	"github.com/sarchlab/gatesim/module"
	"github.com/sarchlab/gatesim/signal"
)

// Engine evaluates module trees against a shared signal table.
type Engine struct {
	signals *signal.Table
}

// New returns an Engine operating on the given shared signal arena.
func New(signals *signal.Table) *Engine {
	return &Engine{signals: signals}
}

// Eval performs one combinational settle pass: walk the module's
// topological order, recursing into each sub-module at its position in
// that order (they appear as ordinary nodes in EvalOrder) and
// evaluating each leaf cell's library
// function. Once the pass settles, every signal's Previous is resynced
// to its Current value.
func (e *Engine) Eval(m *module.Module) {
	e.settle(m)
	e.signals.SyncPrevious(AllHandles(m))
}

func (e *Engine) settle(m *module.Module) {
	for _, comp := range m.EvalOrder {
		switch comp.Kind {
		case module.SubModule:
			e.settle(comp.Sub)
		case module.LeafCell:
			e.evalCell(comp.Cell)
		}
	}
}

func (e *Engine) evalCell(cell *module.CellInstance) {
	inputs := make([]bitvec.Bit, len(cell.Entry.InputPins))
	for i, pin := range cell.Entry.InputPins {
		inputs[i] = e.signals.Get(cell.Inputs[pin]).Current
	}
	outputs := cell.Entry.Eval(inputs)
	for i, pin := range cell.Entry.OutputPins {
		e.signals.Write(cell.Outputs[pin], outputs[i])
	}
}

// EvalClocked performs one clocked step: settle combinational logic,
// sample every flip-flop's D (and reset) input, commit all next-Q
// values atomically, then settle again so downstream combinational
// logic observes the new state.
//
// facadeReset is the facade-level synchronous reset value applied to
// every flip-flop whose library entry does NOT declare a per-cell reset
// pin; an explicit per-cell reset pin always wins over it.
func (e *Engine) EvalClocked(top *module.Module, facadeReset bitvec.Bit) {
	e.settle(top)

	cells := CollectSequential(top)
	next := make([]bitvec.Bit, len(cells))
	for i, cell := range cells {
		next[i] = e.nextQ(cell, facadeReset)
	}
	for i, cell := range cells {
		e.signals.Write(cell.Outputs["Q"], next[i])
	}

	e.settle(top)
	e.signals.SyncPrevious(AllHandles(top))
}

func (e *Engine) nextQ(cell *module.CellInstance, facadeReset bitvec.Bit) bitvec.Bit {
	if cell.HasReset {
		if e.signals.Get(cell.Reset).Current == bitvec.One {
			return bitvec.Zero
		}
	} else if facadeReset == bitvec.One {
		return bitvec.Zero
	}

	inputs := make([]bitvec.Bit, len(cell.Entry.InputPins))
	for i, pin := range cell.Entry.InputPins {
		inputs[i] = e.signals.Get(cell.Inputs[pin]).Current
	}
	outputs := cell.Entry.Eval(inputs)
	return outputs[outputPinIndex(cell.Entry.OutputPins, "Q")]
}

func outputPinIndex(pins []string, name string) int {
	for i, p := range pins {
		if p == name {
			return i
		}
	}
	return 0
}

// Reset zeros all toggle counters and clears every net (including
// flip-flop outputs) to 0.
func (e *Engine) Reset(top *module.Module) {
	e.ResetToggleCounts(top)
	for _, h := range AllHandles(top) {
		e.signals.ForceValue(h, bitvec.Zero)
	}
}

// ResetClocked clears only flip-flop outputs to 0 (one synchronous
// reset cycle), leaving toggle counters intact.
func (e *Engine) ResetClocked(top *module.Module) {
	for _, cell := range CollectSequential(top) {
		e.signals.ForceValue(cell.Outputs["Q"], bitvec.Zero)
	}
}

// ResetToggleCounts zeros every signal's rising/falling counters within
// the module tree rooted at top, without touching current values.
func (e *Engine) ResetToggleCounts(top *module.Module) {
	e.signals.ResetCounts(AllHandles(top))
}

// TotalToggleCount returns the sum of rising+falling counters over every
// signal owned within the module tree rooted at m.
func (e *Engine) TotalToggleCount(m *module.Module) uint64 {
	rising, falling := e.signals.Toggles(AllHandles(m))
	return rising + falling
}

// AllHandles returns every signal handle owned anywhere within the
// module tree rooted at m (its own nets/ports plus every descendant
// sub-module's own nets/ports, never double-counting an aliased
// boundary handle).
func AllHandles(m *module.Module) []signal.Handle {
	handles := append([]signal.Handle(nil), m.OwnHandles...)
	for _, comp := range m.Components {
		if comp.Kind == module.SubModule {
			handles = append(handles, AllHandles(comp.Sub)...)
		}
	}
	return handles
}

// CollectSequential returns every flip-flop cell instance in the module
// tree rooted at m, in a stable pre-order (m's own sequential cells
// first, in ascending cell-name order, then each child sub-module's,
// recursed in Components order). This is the order in which
// EvalClocked's atomic commit iterates, and matters only for
// determinism of, e.g., log output, since the commit itself is
// simultaneous.
func CollectSequential(m *module.Module) []*module.CellInstance {
	cells := append([]*module.CellInstance(nil), m.SequentialCells...)
	for _, comp := range m.Components {
		if comp.Kind == module.SubModule {
			cells = append(cells, CollectSequential(comp.Sub)...)
		}
	}
	return cells
}

// CellBreakdown returns {type name -> instance count} summed
// recursively over the module tree rooted at m.
func CellBreakdown(m *module.Module) map[string]int {
	out := make(map[string]int)
	walkCells(m, func(cell *module.CellInstance) {
		out[cell.Type]++
	})
	return out
}

// Area returns the sum of library-declared area over every cell
// instance reachable from m.
func Area(m *module.Module) int {
	total := 0
	walkCells(m, func(cell *module.CellInstance) {
		total += cell.Entry.Area
	})
	return total
}

func walkCells(m *module.Module, fn func(*module.CellInstance)) {
	for _, comp := range m.Components {
		switch comp.Kind {
		case module.LeafCell:
			fn(comp.Cell)
		case module.SubModule:
			walkCells(comp.Sub, fn)
		}
	}
}

// ModuleNames returns the fully-qualified instance path of m and every
// descendant sub-module, in stable pre-order.
func ModuleNames(m *module.Module) []string {
	names := []string{m.Name}
	for _, comp := range m.Components {
		if comp.Kind == module.SubModule {
			names = append(names, ModuleNames(comp.Sub)...)
		}
	}
	sort.Strings(names[1:]) // keep root first; stabilize siblings with equal-depth collisions
	return names
}
