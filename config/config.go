// Package config builds the port configuration a design.Design binds to
// its top module: which port is the clock, which is the reset, and the
// declared shape (rows, cols, element width, signedness) of every data
// port.
//
// The fluent Builder mirrors the value-receiver "WithX(...) Build()"
// style of config.DeviceBuilder / api.DriverBuilder. Those builders
// panic on invalid input, since they run at simulation setup in a
// throwaway CLI process; gatesim's Builder always returns an error from
// Build instead, since gatesim is meant to be embedded, and a caller
// constructing a Design from untrusted or generated data should never
// have a panic escape a library call.
package config

import "github.com/sarchlab/gatesim/internal/gatesimerr"

// PortShape describes how a named port's bit list is interpreted as an
// array of signed or unsigned integers.
type PortShape struct {
	Name   string
	Rows   int
	Cols   int
	Width  int
	Signed bool
}

// Config is the fully-resolved port configuration for one Design.
type Config struct {
	ClockPort string
	ResetPort string
	Ports     map[string]PortShape
	PortOrder []string
}

// Builder accumulates port role/shape declarations before producing a
// Config.
type Builder struct {
	clockPort string
	resetPort string
	ports     []PortShape
}

// NewBuilder returns an empty port configuration builder.
func NewBuilder() Builder {
	return Builder{}
}

// WithClock names the port that drives every flip-flop's clock pin.
func (b Builder) WithClock(name string) Builder {
	b.clockPort = name
	return b
}

// WithReset names the port that drives the facade-level synchronous
// reset, for flip-flops that declare no per-cell reset pin.
func (b Builder) WithReset(name string) Builder {
	b.resetPort = name
	return b
}

// WithPort declares a data port's array shape: rows*cols elements, each
// width bits wide, interpreted as signed two's-complement if signed is
// true.
func (b Builder) WithPort(name string, rows, cols, width int, signed bool) Builder {
	b.ports = append(b.ports, PortShape{Name: name, Rows: rows, Cols: cols, Width: width, Signed: signed})
	return b
}

// Build validates the accumulated declarations and produces a Config.
// A clock port is optional: a purely combinational design has none, and
// callers never invoke EvalClocked on it.
func (b Builder) Build() (Config, error) {
	cfg := Config{
		ClockPort: b.clockPort,
		ResetPort: b.resetPort,
		Ports:     make(map[string]PortShape, len(b.ports)),
	}
	for _, p := range b.ports {
		if _, dup := cfg.Ports[p.Name]; dup {
			return Config{}, gatesimerr.Newf(gatesimerr.NetlistParse, p.Name, "port declared more than once")
		}
		if p.Rows <= 0 || p.Cols <= 0 || p.Width <= 0 {
			return Config{}, gatesimerr.Newf(gatesimerr.ShapeMismatch, p.Name,
				"rows, cols, and width must all be positive, got rows=%d cols=%d width=%d", p.Rows, p.Cols, p.Width)
		}
		cfg.Ports[p.Name] = p
		cfg.PortOrder = append(cfg.PortOrder, p.Name)
	}
	return cfg, nil
}
