// Package design implements the DesignFacade: the user-visible type
// that binds a loaded module tree to a port configuration and exposes
// eval/eval_clocked/reset/reset_clocked plus the reporting operations
// (cell_breakdown, area, module_names, total_toggle_count).
package design

import (
	"io"
	"math/big"

	"github.com/sarchlab/gatesim/bitvec"
	"github.com/sarchlab/gatesim/celllib"
	"github.com/sarchlab/gatesim/config"
	"github.com/sarchlab/gatesim/engine"
	"github.com/sarchlab/gatesim/internal/gatesimerr"
	"github.com/sarchlab/gatesim/internal/telemetry"
	"github.com/sarchlab/gatesim/module"
	"github.com/sarchlab/gatesim/netlist"
	"github.com/sarchlab/gatesim/signal"
)

// Design binds a module tree (loaded from a netlist) to a port
// configuration, and is the sole entry point callers use to drive
// simulation.
type Design struct {
	top     *module.Module
	signals *signal.Table
	engine  *engine.Engine
	cfg     config.Config
	monitor *telemetry.Monitor
}

// New loads a netlist from r, resolves its top module by name, validates
// cfg against that module's ports, and returns a ready-to-use Design.
// monitor may be nil; when non-nil, the Design registers its area/toggle
// gauges with it (purely additive, never required for eval correctness).
func New(library *celllib.Library, r io.Reader, topModuleName string, cfg config.Config, monitor *telemetry.Monitor) (*Design, error) {
	loader := netlist.NewLoader(library)
	top, signals, err := loader.Load(r, topModuleName)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(top, cfg); err != nil {
		return nil, err
	}

	d := &Design{
		top:     top,
		signals: signals,
		engine:  engine.New(signals),
		cfg:     cfg,
		monitor: monitor,
	}

	if monitor != nil {
		monitor.Register(topModuleName, d)
	}

	return d, nil
}

func validateConfig(top *module.Module, cfg config.Config) error {
	if cfg.ClockPort != "" {
		if _, ok := top.Port(cfg.ClockPort); !ok {
			return gatesimerr.New(gatesimerr.PortWidthMismatch, cfg.ClockPort, "clock port not found in top module")
		}
	}
	if cfg.ResetPort != "" {
		if _, ok := top.Port(cfg.ResetPort); !ok {
			return gatesimerr.New(gatesimerr.PortWidthMismatch, cfg.ResetPort, "reset port not found in top module")
		}
	}
	for name, shape := range cfg.Ports {
		p, ok := top.Port(name)
		if !ok {
			return gatesimerr.New(gatesimerr.PortWidthMismatch, name, "configured port not found in top module")
		}
		want := shape.Rows * shape.Cols * shape.Width
		if want != len(p.Bits) {
			return gatesimerr.Newf(gatesimerr.PortWidthMismatch, name,
				"configured shape implies %d bits, port declares %d", want, len(p.Bits))
		}
	}
	return nil
}

// Eval performs one combinational settle pass.
func (d *Design) Eval() {
	d.engine.Eval(d.top)
}

// EvalClocked performs one clocked step, sampling the configured reset
// port (if any) as the facade-level synchronous reset.
func (d *Design) EvalClocked() {
	facadeReset := bitvec.Zero
	if d.cfg.ResetPort != "" {
		p, _ := d.top.Port(d.cfg.ResetPort)
		facadeReset = d.signals.Get(p.Bits[0]).Current
	}
	d.engine.EvalClocked(d.top, facadeReset)
}

// Reset zeros all toggle counters and clears every net to 0.
func (d *Design) Reset() {
	d.engine.Reset(d.top)
}

// ResetClocked clears only flip-flop outputs, leaving counters intact.
func (d *Design) ResetClocked() {
	d.engine.ResetClocked(d.top)
}

// ResetToggleCounts zeros every counter without touching current values.
func (d *Design) ResetToggleCounts() {
	d.engine.ResetToggleCounts(d.top)
}

// TotalToggleCount sums rising+falling counters over moduleName
// (recursively), or over the whole design when moduleName is "".
func (d *Design) TotalToggleCount(moduleName string) (uint64, error) {
	m, err := d.resolveModule(moduleName)
	if err != nil {
		return 0, err
	}
	return d.engine.TotalToggleCount(m), nil
}

// CellBreakdown sums {type name -> instance count} over moduleName
// (recursively), or over the whole design when moduleName is "".
func (d *Design) CellBreakdown(moduleName string) (map[string]int, error) {
	m, err := d.resolveModule(moduleName)
	if err != nil {
		return nil, err
	}
	return engine.CellBreakdown(m), nil
}

// Area sums library-declared area over moduleName (recursively), or
// over the whole design when moduleName is "".
func (d *Design) Area(moduleName string) (int, error) {
	m, err := d.resolveModule(moduleName)
	if err != nil {
		return 0, err
	}
	return engine.Area(m), nil
}

// ModuleNames returns the fully-qualified instance path of the top
// module and every descendant sub-module, in stable pre-order.
func (d *Design) ModuleNames() []string {
	return engine.ModuleNames(d.top)
}

func (d *Design) resolveModule(name string) (*module.Module, error) {
	if name == "" {
		return d.top, nil
	}
	if found := findModule(d.top, name); found != nil {
		return found, nil
	}
	return nil, gatesimerr.New(gatesimerr.NetlistParse, name, "no such module instance")
}

func findModule(m *module.Module, name string) *module.Module {
	if m.Name == name {
		return m
	}
	for _, comp := range m.Components {
		if comp.Kind == module.SubModule {
			if found := findModule(comp.Sub, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// WritePort validates and commits an array write to a configured data
// port: values is a row-major rows x cols matrix of integers, each
// decomposed into the port's declared element width (little-endian
// within the element) and signedness. Writing the clock port is
// rejected; the engine controls it during EvalClocked.
func (d *Design) WritePort(name string, values [][]*big.Int) error {
	if name == d.cfg.ClockPort {
		return gatesimerr.New(gatesimerr.ShapeMismatch, name, "writing the clock port is forbidden")
	}

	shape, ok := d.cfg.Ports[name]
	if !ok {
		return gatesimerr.New(gatesimerr.ShapeMismatch, name, "port is not configured")
	}
	if len(values) != shape.Rows {
		return gatesimerr.Newf(gatesimerr.ShapeMismatch, name, "expected %d rows, got %d", shape.Rows, len(values))
	}

	// Stage every element into a BitVec, and check that no port bit is a
	// constant net, before committing anything, so a shape, range, or
	// constant-bit error leaves every element untouched: no partial
	// write ever occurs.
	staged := make([]bitvec.Bit, 0, shape.Rows*shape.Cols*shape.Width)
	for r, row := range values {
		if len(row) != shape.Cols {
			return gatesimerr.Newf(gatesimerr.ShapeMismatch, name, "row %d: expected %d cols, got %d", r, shape.Cols, len(row))
		}
		for _, elem := range row {
			var bv bitvec.BitVec
			var err error
			if shape.Signed {
				bv, err = bitvec.FromInt(elem, shape.Width)
			} else {
				bv, err = bitvec.FromUint(elem, shape.Width)
			}
			if err != nil {
				return gatesimerr.New(gatesimerr.ValueOutOfRange, name, err.Error())
			}
			staged = append(staged, bv.Bits()...)
		}
	}

	p, _ := d.top.Port(name)
	for i, h := range p.Bits {
		if d.signals.Get(h).IsConstant() {
			return gatesimerr.Newf(gatesimerr.ValueOutOfRange, name, "bit %d is a constant net", i)
		}
	}
	for i, h := range p.Bits {
		if err := d.signals.Write(h, staged[i]); err != nil {
			return gatesimerr.Newf(gatesimerr.ValueOutOfRange, name, "bit %d: %v", i, err)
		}
	}
	return nil
}

// ReadPort performs the inverse of WritePort: gather the port's bit
// list, regroup into W-bit chunks, and interpret each chunk as signed or
// unsigned per the port's configured shape.
func (d *Design) ReadPort(name string) ([][]*big.Int, error) {
	shape, ok := d.cfg.Ports[name]
	if !ok {
		if name != d.cfg.ClockPort && name != d.cfg.ResetPort {
			return nil, gatesimerr.New(gatesimerr.ShapeMismatch, name, "port is not configured")
		}
		p, _ := d.top.Port(name)
		bits := make([]bitvec.Bit, len(p.Bits))
		for i, h := range p.Bits {
			bits[i] = d.signals.Get(h).Current
		}
		return [][]*big.Int{{bitvec.FromBits(bits).Uint()}}, nil
	}

	p, _ := d.top.Port(name)
	out := make([][]*big.Int, shape.Rows)
	idx := 0
	for r := 0; r < shape.Rows; r++ {
		row := make([]*big.Int, shape.Cols)
		for c := 0; c < shape.Cols; c++ {
			bits := make([]bitvec.Bit, shape.Width)
			for w := 0; w < shape.Width; w++ {
				bits[w] = d.signals.Get(p.Bits[idx]).Current
				idx++
			}
			bv := bitvec.FromBits(bits)
			if shape.Signed {
				row[c] = bv.Int()
			} else {
				row[c] = bv.Uint()
			}
		}
		out[r] = row
	}
	return out, nil
}
