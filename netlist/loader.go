// Package netlist implements the NetlistLoader: translating an external
// JSON netlist description into the module/cell/signal data model,
// including hierarchy flattening of module instances into SubModule
// components.
//
// The JSON shape mirrors a Yosys-style "modules" document: each module
// is defined once with its own local bit-id namespace, and a cell
// instantiating another module supplies parent-level bit ids via
// "connections" that this loader aliases onto the callee's ports.
package netlist

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/sarchlab/gatesim/celllib"
	"github.com/sarchlab/gatesim/internal/gatesimerr"
	"github.com/sarchlab/gatesim/module"
	"github.com/sarchlab/gatesim/signal"
)

// Loader translates netlist JSON into a *module.Module tree, against a
// fixed cell library.
type Loader struct {
	library *celllib.Library
}

// NewLoader returns a Loader bound to the given cell library.
func NewLoader(library *celllib.Library) *Loader {
	return &Loader{library: library}
}

// Load parses r as netlist JSON and builds the module tree rooted at
// topName, flattening every cell whose type names another module in the
// document into a SubModule component. It returns the shared signal
// table alongside the top module, since callers (design.Design) need it
// for port I/O and reset.
func (l *Loader) Load(r io.Reader, topName string) (*module.Module, *signal.Table, error) {
	var doc jsonDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if ge, ok := err.(*gatesimerr.Error); ok {
			return nil, nil, ge // e.g. BadConstantLiteral from rawBit
		}
		return nil, nil, gatesimerr.New(gatesimerr.NetlistParse, topName, err.Error())
	}

	topDef, ok := doc.Modules[topName]
	if !ok {
		return nil, nil, gatesimerr.New(gatesimerr.NetlistParse, topName, "top module not found in document")
	}

	ctx := &buildContext{
		doc:     doc.Modules,
		library: l.library,
		signals: signal.NewTable(),
		driven:  make(map[signal.Handle]string),
	}

	top, err := ctx.buildModule(topName, topDef, topName, nil)
	if err != nil {
		return nil, nil, err
	}

	return top, ctx.signals, nil
}

type buildContext struct {
	doc     map[string]jsonModule
	library *celllib.Library
	signals *signal.Table
	driven  map[signal.Handle]string // global across the whole design
}

// topoNode is one candidate in a module's combinational evaluation
// order: a non-sequential leaf cell or a sub-module instance.
type topoNode struct {
	comp    *module.Component
	name    string
	inputs  []signal.Handle
	outputs []signal.Handle
}

func (ctx *buildContext) buildModule(
	typeName string,
	def jsonModule,
	instPath string,
	portBindings map[string][]signal.Handle,
) (*module.Module, error) {
	aliased := make(map[int]signal.Handle)
	localIDs := make(map[int]signal.Handle)
	ownSet := make(map[signal.Handle]struct{})
	var zeroH, oneH *signal.Handle

	if portBindings != nil {
		for name, bound := range portBindings {
			portDef, ok := def.Ports[name]
			if !ok {
				return nil, gatesimerr.Newf(gatesimerr.PinMismatch, instPath, "binds unknown port %q", name)
			}
			if len(bound) != len(portDef.Bits) {
				return nil, gatesimerr.Newf(gatesimerr.PortWidthMismatch, instPath+"."+name,
					"declared width %d, connection supplies %d", len(portDef.Bits), len(bound))
			}
			for i, b := range portDef.Bits {
				if !b.isConst {
					aliased[b.id] = bound[i]
				}
			}
		}
	}

	resolve := func(b rawBit) signal.Handle {
		if b.isConst {
			if b.constVal == 0 {
				if zeroH == nil {
					h := ctx.signals.AllocConstant(instPath+".$0", 0)
					zeroH = &h
					ownSet[h] = struct{}{}
				}
				return *zeroH
			}
			if oneH == nil {
				h := ctx.signals.AllocConstant(instPath+".$1", 1)
				oneH = &h
				ownSet[h] = struct{}{}
			}
			return *oneH
		}
		if h, ok := aliased[b.id]; ok {
			return h
		}
		if h, ok := localIDs[b.id]; ok {
			return h
		}
		h := ctx.signals.Alloc(fmt.Sprintf("%s.n%d", instPath, b.id))
		localIDs[b.id] = h
		ownSet[h] = struct{}{}
		return h
	}

	mod := module.NewModule(instPath, ctx.signals)

	// Ports, in deterministic name order.
	portNames := sortedKeys(def.Ports)
	for _, name := range portNames {
		pd := def.Ports[name]
		dir, err := parseDirection(pd.Direction)
		if err != nil {
			return nil, gatesimerr.New(gatesimerr.NetlistParse, instPath+"."+name, err.Error())
		}
		bits := make([]signal.Handle, len(pd.Bits))
		for i, b := range pd.Bits {
			bits[i] = resolve(b)
		}
		mod.Ports[name] = &module.Port{Name: name, Bits: bits, Direction: dir}
		mod.PortOrder = append(mod.PortOrder, name)
	}

	// Cells, in deterministic name order: ties break on cell name
	// ascending.
	var nodes []*topoNode
	cellNames := sortedKeys(def.Cells)
	for _, cellName := range cellNames {
		cellDef := def.Cells[cellName]
		fullName := instPath + "." + cellName

		if entry, ok := ctx.library.Lookup(cellDef.Type); ok {
			inst, node, err := ctx.buildLeafCell(cellName, fullName, cellDef, entry, resolve)
			if err != nil {
				return nil, err
			}
			mod.AllCells[cellName] = inst
			comp := &module.Component{Kind: module.LeafCell, Name: cellName, Cell: inst}
			mod.Components = append(mod.Components, comp)
			if entry.Sequential {
				mod.SequentialCells = append(mod.SequentialCells, inst)
			} else {
				node.comp = comp
				nodes = append(nodes, node)
			}
			continue
		}

		if childDef, ok := ctx.doc[cellDef.Type]; ok {
			sub, node, err := ctx.buildSubModuleCell(cellName, fullName, cellDef, childDef, resolve)
			if err != nil {
				return nil, err
			}
			comp := &module.Component{Kind: module.SubModule, Name: cellName, Sub: sub}
			mod.Components = append(mod.Components, comp)
			node.comp = comp
			nodes = append(nodes, node)
			continue
		}

		return nil, gatesimerr.New(gatesimerr.UnknownCellType, cellDef.Type,
			"cell "+fullName+" references a type that is neither a library cell nor a module")
	}

	order, err := topoSort(nodes)
	if err != nil {
		return nil, err
	}
	mod.EvalOrder = order

	mod.OwnHandles = make([]signal.Handle, 0, len(ownSet))
	for h := range ownSet {
		mod.OwnHandles = append(mod.OwnHandles, h)
	}
	sort.Slice(mod.OwnHandles, func(i, j int) bool { return mod.OwnHandles[i] < mod.OwnHandles[j] })

	return mod, nil
}

func (ctx *buildContext) buildLeafCell(
	cellName, fullName string,
	cellDef jsonCell,
	entry celllib.Entry,
	resolve func(rawBit) signal.Handle,
) (*module.CellInstance, *topoNode, error) {
	if err := checkPinSet(fullName, cellDef, entry); err != nil {
		return nil, nil, err
	}

	inst := &module.CellInstance{
		Name:    cellName,
		Type:    cellDef.Type,
		Entry:   entry,
		Inputs:  make(map[string]signal.Handle),
		Outputs: make(map[string]signal.Handle),
	}
	node := &topoNode{name: fullName}

	bindPin := func(pin string, isInput, isOutput bool) error {
		bits := cellDef.Connections[pin]
		if len(bits) != 1 {
			return gatesimerr.Newf(gatesimerr.PortWidthMismatch, fullName+"."+pin,
				"gate pin width must be 1, got %d", len(bits))
		}
		h := resolve(bits[0])
		if isInput {
			inst.Inputs[pin] = h
			node.inputs = append(node.inputs, h)
		}
		if isOutput {
			inst.Outputs[pin] = h
			node.outputs = append(node.outputs, h)
			if owner, ok := ctx.driven[h]; ok {
				return gatesimerr.Newf(gatesimerr.MultiDriver, fmt.Sprintf("net in %s", fullName),
					"driven by both %s and %s", owner, fullName+"."+pin)
			}
			ctx.driven[h] = fullName + "." + pin
		}
		return nil
	}

	for _, pin := range entry.InputPins {
		if err := bindPin(pin, true, false); err != nil {
			return nil, nil, err
		}
	}
	for _, pin := range entry.OutputPins {
		if err := bindPin(pin, false, true); err != nil {
			return nil, nil, err
		}
	}

	if entry.Sequential && entry.ResetPin != "" {
		if bits, ok := cellDef.Connections[entry.ResetPin]; ok && len(bits) == 1 {
			inst.HasReset = true
			inst.Reset = resolve(bits[0])
		}
	}

	return inst, node, nil
}

func (ctx *buildContext) buildSubModuleCell(
	cellName, fullName string,
	cellDef jsonCell,
	childDef jsonModule,
	resolve func(rawBit) signal.Handle,
) (*module.Module, *topoNode, error) {
	declared := sortedKeys(childDef.Ports)
	provided := sortedStringKeys(cellDef.PortDirections)
	if !equalStrings(declared, provided) {
		return nil, nil, gatesimerr.Newf(gatesimerr.PinMismatch, fullName,
			"port set %v does not match module %s's declared ports %v", provided, cellDef.Type, declared)
	}

	bindings := make(map[string][]signal.Handle, len(declared))
	node := &topoNode{name: fullName}

	for _, portName := range declared {
		childPort := childDef.Ports[portName]
		conn, ok := cellDef.Connections[portName]
		if !ok {
			return nil, nil, gatesimerr.Newf(gatesimerr.PinMismatch, fullName+"."+portName, "missing connection")
		}
		if len(conn) != len(childPort.Bits) {
			return nil, nil, gatesimerr.Newf(gatesimerr.PortWidthMismatch, fullName+"."+portName,
				"declared width %d, connection supplies %d", len(childPort.Bits), len(conn))
		}

		dirStr := cellDef.PortDirections[portName]
		dir, err := parseDirection(dirStr)
		if err != nil {
			return nil, nil, gatesimerr.New(gatesimerr.NetlistParse, fullName+"."+portName, err.Error())
		}

		handles := make([]signal.Handle, len(conn))
		for i, b := range conn {
			handles[i] = resolve(b)
		}
		bindings[portName] = handles

		// Output/inout nets are not claimed here: the child's own cells
		// drive the aliased handles and register as their drivers when the
		// child is built, so the single-driver check runs against them.
		switch dir {
		case module.DirInput:
			node.inputs = append(node.inputs, handles...)
		case module.DirOutput:
			node.outputs = append(node.outputs, handles...)
		case module.DirInout:
			node.inputs = append(node.inputs, handles...)
			node.outputs = append(node.outputs, handles...)
		}
	}

	sub, err := ctx.buildModule(cellDef.Type, childDef, fullName, bindings)
	if err != nil {
		return nil, nil, err
	}
	return sub, node, nil
}

func (ctx *buildContext) markDriven(handles []signal.Handle, driver string) error {
	for _, h := range handles {
		if owner, ok := ctx.driven[h]; ok {
			return gatesimerr.Newf(gatesimerr.MultiDriver, driver, "net also driven by %s", owner)
		}
		ctx.driven[h] = driver
	}
	return nil
}

func checkPinSet(fullName string, cellDef jsonCell, entry celllib.Entry) error {
	want := make(map[string]bool, len(entry.InputPins)+len(entry.OutputPins))
	for _, p := range entry.InputPins {
		want[p] = true
	}
	for _, p := range entry.OutputPins {
		want[p] = true
	}

	got := make(map[string]bool, len(cellDef.PortDirections))
	for p := range cellDef.PortDirections {
		got[p] = true
	}

	for p := range want {
		if !got[p] {
			return gatesimerr.Newf(gatesimerr.PinMismatch, fullName, "missing pin %q", p)
		}
	}
	for p := range got {
		if !want[p] {
			return gatesimerr.Newf(gatesimerr.PinMismatch, fullName, "unexpected pin %q", p)
		}
	}
	for p := range want {
		if _, ok := cellDef.Connections[p]; !ok {
			return gatesimerr.Newf(gatesimerr.PinMismatch, fullName, "pin %q has no connection", p)
		}
	}
	return nil
}

func parseDirection(s string) (module.Direction, error) {
	switch s {
	case "input":
		return module.DirInput, nil
	case "output":
		return module.DirOutput, nil
	case "inout":
		return module.DirInout, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedStringKeys(m map[string]string) []string {
	return sortedKeys(m)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
