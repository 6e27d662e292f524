package engine_test

import (
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gatesim/bitvec"
	"github.com/sarchlab/gatesim/celllib"
	"github.com/sarchlab/gatesim/celllib/mockcelllib"
	"github.com/sarchlab/gatesim/engine"
	"github.com/sarchlab/gatesim/module"
	"github.com/sarchlab/gatesim/netlist"
	"github.com/sarchlab/gatesim/signal"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Engine Suite")
}

const dffChainNetlist = `{
  "modules": {
    "chain": {
      "ports": {
        "clk": {"direction": "input", "bits": [2]},
        "d":   {"direction": "input", "bits": [3]},
        "q":   {"direction": "output", "bits": [6]}
      },
      "cells": {
        "ff0": {
          "type": "DFF",
          "port_directions": {"C": "input", "D": "input", "Q": "output"},
          "connections": {"C": [2], "D": [3], "Q": [4]}
        },
        "ff1": {
          "type": "DFF",
          "port_directions": {"C": "input", "D": "input", "Q": "output"},
          "connections": {"C": [2], "D": [4], "Q": [5]}
        },
        "ff2": {
          "type": "DFF",
          "port_directions": {"C": "input", "D": "input", "Q": "output"},
          "connections": {"C": [2], "D": [5], "Q": [6]}
        }
      }
    }
  }
}`

const adderNetlist = `{
  "modules": {
    "top": {
      "ports": {
        "a": {"direction": "input", "bits": [2, 3]},
        "b": {"direction": "input", "bits": [4, 5]},
        "s": {"direction": "output", "bits": [6, 7]}
      },
      "cells": {
        "x0": {
          "type": "XOR",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [2], "B": [4], "Y": [6]}
        },
        "a0": {
          "type": "AND",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [2], "B": [4], "Y": [8]}
        },
        "x1": {
          "type": "XOR",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [3], "B": [5], "Y": [9]}
        },
        "a1": {
          "type": "AND",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [3], "B": [5], "Y": [10]}
        },
        "a2": {
          "type": "AND",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [9], "B": [8], "Y": [11]}
        },
        "xc": {
          "type": "XOR",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [9], "B": [8], "Y": [7]}
        },
        "oc": {
          "type": "OR",
          "port_directions": {"A": "input", "B": "input", "Y": "output"},
          "connections": {"A": [11], "B": [10], "Y": [12]}
        }
      }
    }
  }
}`

var _ = Describe("Engine", func() {
	var lib *celllib.Library

	BeforeEach(func() {
		lib = celllib.NewDefaultLibrary()
	})

	Context("combinational eval", func() {
		It("settles a half-adder-style sum within one pass and is idempotent", func() {
			loader := netlist.NewLoader(lib)
			top, signals, err := loader.Load(strings.NewReader(adderNetlist), "top")
			Expect(err).NotTo(HaveOccurred())

			e := engine.New(signals)
			writeBit(signals, top, "a", 0, bitvec.One)  // a=01
			writeBit(signals, top, "b", 0, bitvec.One)  // b=01
			e.Eval(top)

			s := readPort(signals, top, "s")
			Expect(s).To(Equal([]bitvec.Bit{bitvec.Zero, bitvec.One})) // 01+01=10

			before := snapshotCounts(signals, top)
			e.Eval(top)
			after := snapshotCounts(signals, top)
			Expect(after).To(Equal(before), "idempotent re-eval must not change any counter")
		})
	})

	Context("clocked eval", func() {
		It("propagates D through a 3-deep DFF chain over three cycles with D held at 1", func() {
			loader := netlist.NewLoader(lib)
			top, signals, err := loader.Load(strings.NewReader(dffChainNetlist), "chain")
			Expect(err).NotTo(HaveOccurred())

			e := engine.New(signals)
			writeBit(signals, top, "d", 0, bitvec.One)

			e.EvalClocked(top, bitvec.Zero)
			Expect(readPort(signals, top, "q")).To(Equal([]bitvec.Bit{bitvec.Zero}))
			e.EvalClocked(top, bitvec.Zero)
			Expect(readPort(signals, top, "q")).To(Equal([]bitvec.Bit{bitvec.Zero}))
			e.ResetToggleCounts(top)

			e.EvalClocked(top, bitvec.Zero)
			Expect(readPort(signals, top, "q")).To(Equal([]bitvec.Bit{bitvec.One}))

			qHandle := top.Ports["q"].Bits[0]
			snap := signals.Get(qHandle)
			Expect(snap.Rising).To(Equal(uint64(1)))
			Expect(snap.Falling).To(Equal(uint64(0)))
		})

		It("clears every flip-flop to 0 when reset is asserted", func() {
			loader := netlist.NewLoader(lib)
			top, signals, err := loader.Load(strings.NewReader(dffChainNetlist), "chain")
			Expect(err).NotTo(HaveOccurred())

			e := engine.New(signals)
			writeBit(signals, top, "d", 0, bitvec.One)
			e.EvalClocked(top, bitvec.Zero)
			e.EvalClocked(top, bitvec.Zero)
			e.EvalClocked(top, bitvec.Zero)

			e.EvalClocked(top, bitvec.One)
			Expect(readPort(signals, top, "q")).To(Equal([]bitvec.Bit{bitvec.Zero}))
		})
	})

	Context("reset", func() {
		It("reset zeros toggle counters and all net values", func() {
			loader := netlist.NewLoader(lib)
			top, signals, err := loader.Load(strings.NewReader(adderNetlist), "top")
			Expect(err).NotTo(HaveOccurred())

			e := engine.New(signals)
			writeBit(signals, top, "a", 0, bitvec.One)
			writeBit(signals, top, "b", 0, bitvec.One)
			e.Eval(top)

			e.Reset(top)
			for _, h := range engine.AllHandles(top) {
				Expect(signals.Get(h).Current).To(Equal(bitvec.Zero))
			}
			rising, falling := signals.Toggles(engine.AllHandles(top))
			Expect(rising + falling).To(BeZero())
		})
	})

	Context("area and cell breakdown", func() {
		It("sums library-declared area over every reachable cell", func() {
			loader := netlist.NewLoader(lib)
			top, _, err := loader.Load(strings.NewReader(adderNetlist), "top")
			Expect(err).NotTo(HaveOccurred())

			breakdown := engine.CellBreakdown(top)
			Expect(breakdown["XOR"]).To(Equal(3))
			Expect(breakdown["AND"]).To(Equal(3))
			Expect(breakdown["OR"]).To(Equal(1))

			wantArea := 3*4 + 3*3 + 1*3
			Expect(engine.Area(top)).To(Equal(wantArea))
		})
	})

	Context("evaluator invocation", func() {
		It("calls the cell's evaluator exactly once per eval pass", func() {
			ctrl := gomock.NewController(GinkgoT())
			defer ctrl.Finish()

			behavior := mockcelllib.NewMockCellBehavior(ctrl)
			behavior.EXPECT().Eval(gomock.Any()).Return([]bitvec.Bit{bitvec.One}).Times(1)

			customLib := celllib.NewLibrary()
			Expect(customLib.Register(celllib.Entry{
				TypeName:   "PROBE",
				InputPins:  []string{"A"},
				OutputPins: []string{"Y"},
				Area:       1,
				Eval:       behavior.Eval,
			})).To(Succeed())

			const doc = `{"modules":{"top":{
				"ports":{"a":{"direction":"input","bits":[2]},"y":{"direction":"output","bits":[3]}},
				"cells":{"p0":{"type":"PROBE","port_directions":{"A":"input","Y":"output"},"connections":{"A":[2],"Y":[3]}}}
			}}}`
			loader := netlist.NewLoader(customLib)
			top, signals, err := loader.Load(strings.NewReader(doc), "top")
			Expect(err).NotTo(HaveOccurred())

			engine.New(signals).Eval(top)
		})
	})
})

func writeBit(signals *signal.Table, top *module.Module, port string, idx int, v bitvec.Bit) {
	p, ok := top.Ports[port]
	Expect(ok).To(BeTrue(), "port %q must exist", port)
	Expect(signals.Write(p.Bits[idx], v)).To(Succeed())
}

func readPort(signals *signal.Table, top *module.Module, port string) []bitvec.Bit {
	p, ok := top.Ports[port]
	Expect(ok).To(BeTrue(), "port %q must exist", port)
	out := make([]bitvec.Bit, len(p.Bits))
	for i, h := range p.Bits {
		out[i] = signals.Get(h).Current
	}
	return out
}

func snapshotCounts(signals *signal.Table, top *module.Module) []uint64 {
	handles := engine.AllHandles(top)
	out := make([]uint64, 0, len(handles)*2)
	for _, h := range handles {
		s := signals.Get(h)
		out = append(out, s.Rising, s.Falling)
	}
	return out
}
