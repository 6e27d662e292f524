package netlist_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gatesim/bitvec"
	"github.com/sarchlab/gatesim/celllib"
	"github.com/sarchlab/gatesim/internal/gatesimerr"
	"github.com/sarchlab/gatesim/module"
	"github.com/sarchlab/gatesim/netlist"
)

func TestNetlist(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Netlist Suite")
}

func kindOf(err error) gatesimerr.Kind {
	ge, ok := err.(*gatesimerr.Error)
	ExpectWithOffset(1, ok).To(BeTrue(), "expected a *gatesimerr.Error, got %T: %v", err, err)
	return ge.Kind
}

var _ = Describe("Loader", func() {
	var lib *celllib.Library

	BeforeEach(func() {
		lib = celllib.NewDefaultLibrary()
	})

	Describe("hierarchy flattening", func() {
		It("aliases a sub-module's port bits onto the parent's connection handles", func() {
			const doc = `{
				"modules": {
					"inv2": {
						"ports": {
							"a": {"direction": "input", "bits": [2]},
							"y": {"direction": "output", "bits": [3]}
						},
						"cells": {
							"n0": {
								"type": "NOT",
								"port_directions": {"A": "input", "Y": "output"},
								"connections": {"A": [2], "Y": [4]}
							},
							"n1": {
								"type": "NOT",
								"port_directions": {"A": "input", "Y": "output"},
								"connections": {"A": [4], "Y": [3]}
							}
						}
					},
					"top": {
						"ports": {
							"a": {"direction": "input", "bits": [2]},
							"y": {"direction": "output", "bits": [3]}
						},
						"cells": {
							"u0": {
								"type": "inv2",
								"port_directions": {"a": "input", "y": "output"},
								"connections": {"a": [2], "y": [3]}
							}
						}
					}
				}
			}`
			loader := netlist.NewLoader(lib)
			top, signals, err := loader.Load(strings.NewReader(doc), "top")
			Expect(err).NotTo(HaveOccurred())

			Expect(signals.Write(top.Ports["a"].Bits[0], 1)).To(Succeed())

			var sub *module.Module
			for _, c := range top.Components {
				if c.Kind == module.SubModule {
					sub = c.Sub
				}
			}
			Expect(sub).NotTo(BeNil())
			Expect(sub.Ports["a"].Bits[0]).To(Equal(top.Ports["a"].Bits[0]),
				"sub-module port must alias the exact same handle as the parent connection")
		})
	})

	Describe("malformed input rejection", func() {
		It("rejects invalid JSON as NetlistParse", func() {
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader("{not json"), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.NetlistParse))
		})

		It("rejects a missing top module as NetlistParse", func() {
			const doc = `{"modules": {"other": {"ports": {}, "cells": {}}}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.NetlistParse))
		})

		It("rejects a bare integer 0 or 1 bit literal as BadConstantLiteral", func() {
			const doc = `{"modules": {"top": {
				"ports": {"y": {"direction": "output", "bits": [0]}},
				"cells": {}
			}}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.BadConstantLiteral))
		})

		It("rejects an unrecognized string bit literal as BadConstantLiteral", func() {
			const doc = `{"modules": {"top": {
				"ports": {"y": {"direction": "output", "bits": ["z"]}},
				"cells": {}
			}}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.BadConstantLiteral))
		})

		It("rejects an unknown cell type as UnknownCellType", func() {
			const doc = `{"modules": {"top": {
				"ports": {"a": {"direction": "input", "bits": [2]}, "y": {"direction": "output", "bits": [3]}},
				"cells": {
					"u0": {
						"type": "FROBNICATE",
						"port_directions": {"A": "input", "Y": "output"},
						"connections": {"A": [2], "Y": [3]}
					}
				}
			}}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.UnknownCellType))
		})

		It("rejects a cell with a mismatched pin set as PinMismatch", func() {
			const doc = `{"modules": {"top": {
				"ports": {"a": {"direction": "input", "bits": [2]}, "y": {"direction": "output", "bits": [3]}},
				"cells": {
					"u0": {
						"type": "NOT",
						"port_directions": {"A": "input", "Y": "output", "EXTRA": "input"},
						"connections": {"A": [2], "Y": [3], "EXTRA": [2]}
					}
				}
			}}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.PinMismatch))
		})

		It("rejects two outputs driving the same net as MultiDriver", func() {
			const doc = `{"modules": {"top": {
				"ports": {
					"a": {"direction": "input", "bits": [2]},
					"b": {"direction": "input", "bits": [3]},
					"y": {"direction": "output", "bits": [4]}
				},
				"cells": {
					"n0": {
						"type": "NOT",
						"port_directions": {"A": "input", "Y": "output"},
						"connections": {"A": [2], "Y": [4]}
					},
					"n1": {
						"type": "NOT",
						"port_directions": {"A": "input", "Y": "output"},
						"connections": {"A": [3], "Y": [4]}
					}
				}
			}}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.MultiDriver))
		})

		It("rejects a combinational cycle as CombinationalCycle", func() {
			const doc = `{"modules": {"top": {
				"ports": {},
				"cells": {
					"n0": {
						"type": "NOT",
						"port_directions": {"A": "input", "Y": "output"},
						"connections": {"A": [2], "Y": [3]}
					},
					"n1": {
						"type": "NOT",
						"port_directions": {"A": "input", "Y": "output"},
						"connections": {"A": [3], "Y": [2]}
					}
				}
			}}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.CombinationalCycle))
		})

		It("rejects a sub-module connection whose width does not match the declared port as PortWidthMismatch", func() {
			const doc = `{"modules": {
				"buf2": {
					"ports": {
						"a": {"direction": "input", "bits": [2, 3]},
						"y": {"direction": "output", "bits": [4, 5]}
					},
					"cells": {
						"b0": {
							"type": "BUF",
							"port_directions": {"A": "input", "Y": "output"},
							"connections": {"A": [2], "Y": [4]}
						},
						"b1": {
							"type": "BUF",
							"port_directions": {"A": "input", "Y": "output"},
							"connections": {"A": [3], "Y": [5]}
						}
					}
				},
				"top": {
					"ports": {
						"a": {"direction": "input", "bits": [2]},
						"y": {"direction": "output", "bits": [3, 4]}
					},
					"cells": {
						"u0": {
							"type": "buf2",
							"port_directions": {"a": "input", "y": "output"},
							"connections": {"a": [2], "y": [3, 4]}
						}
					}
				}
			}}`
			_, _, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).To(HaveOccurred())
			Expect(kindOf(err)).To(Equal(gatesimerr.PortWidthMismatch))
		})
	})

	Describe("constant literals", func() {
		It("binds \"1\" to a per-instance constant signal that rejects writes", func() {
			const doc = `{"modules": {"top": {
				"ports": {"y": {"direction": "output", "bits": [2]}},
				"cells": {
					"n0": {
						"type": "BUF",
						"port_directions": {"A": "input", "Y": "output"},
						"connections": {"A": ["1"], "Y": [2]}
					}
				}
			}}}`
			top, signals, err := netlist.NewLoader(lib).Load(strings.NewReader(doc), "top")
			Expect(err).NotTo(HaveOccurred())

			// BUF forwards its constant-1 input to Y only after eval; before
			// any eval the output net itself starts at its own default 0.
			Expect(signals.Get(top.Ports["y"].Bits[0]).Current).To(Equal(bitvec.Zero))

			cell := top.AllCells["n0"]
			Expect(signals.Get(cell.Inputs["A"]).IsConstant()).To(BeTrue())
			Expect(signals.Write(cell.Inputs["A"], bitvec.Zero)).To(HaveOccurred())
		})
	})
})
