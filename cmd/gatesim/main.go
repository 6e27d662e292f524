// Command gatesim loads a gate-level netlist and a port configuration,
// drives it for a number of clocked cycles with pseudo-random input
// vectors, and prints an area/toggle/cell-breakdown report.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"math/rand"
	"net/http"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/gatesim/celllib"
	"github.com/sarchlab/gatesim/config"
	"github.com/sarchlab/gatesim/design"
	"github.com/sarchlab/gatesim/internal/telemetry"
)

func main() {
	netlistPath := flag.String("netlist", "", "path to the netlist JSON document")
	topName := flag.String("top", "", "name of the top module within the netlist")
	configPath := flag.String("config", "", "path to the port configuration YAML")
	cycles := flag.Int("cycles", 1, "number of clocked cycles to run")
	seed := flag.Int64("seed", 1, "seed for the pseudo-random input driver")
	metricsAddr := flag.String("metrics-addr", "", "if set, serve telemetry HTTP metrics on this address")
	flag.Parse()

	if *netlistPath == "" || *topName == "" || *configPath == "" {
		flag.Usage()
		log.Fatalf("gatesim: -netlist, -top, and -config are all required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("gatesim: loading config: %v", err)
	}

	netlistFile, err := os.Open(*netlistPath)
	if err != nil {
		log.Fatalf("gatesim: opening netlist: %v", err)
	}
	defer netlistFile.Close()

	monitor := telemetry.NewMonitor()
	lib := celllib.NewDefaultLibrary()

	d, err := design.New(lib, netlistFile, *topName, cfg, monitor)
	if err != nil {
		log.Fatalf("gatesim: loading design: %v", err)
	}

	if *metricsAddr != "" {
		go func() {
			slog.Info("serving telemetry", "addr", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, monitor.HTTPHandler()); err != nil {
				slog.Error("telemetry server stopped", "err", err)
			}
		}()
	}

	fmt.Printf("loaded %q from %s (%d module instances)\n", *topName, *netlistPath, len(d.ModuleNames()))

	rng := rand.New(rand.NewSource(*seed))
	for c := 0; c < *cycles; c++ {
		driveInputs(d, cfg, rng)
		d.EvalClocked()
		telemetry.Trace("cycle complete", "cycle", c)
	}

	printReport(d)

	atexit.Exit(0)
}

func loadConfig(path string) (config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return config.Config{}, err
	}
	defer f.Close()
	return config.LoadPortConfigYAML(f)
}

// driveInputs writes a pseudo-random value to every configured data port
// other than the clock and reset ports, which the engine and the caller
// control directly.
func driveInputs(d *design.Design, cfg config.Config, rng *rand.Rand) {
	for _, name := range cfg.PortOrder {
		if name == cfg.ClockPort || name == cfg.ResetPort {
			continue
		}
		shape := cfg.Ports[name]
		row := make([][]*big.Int, shape.Rows)
		for r := range row {
			row[r] = make([]*big.Int, shape.Cols)
			for c := range row[r] {
				row[r][c] = randomElement(rng, shape.Width, shape.Signed)
			}
		}
		if err := d.WritePort(name, row); err != nil {
			log.Fatalf("gatesim: writing port %q: %v", name, err)
		}
	}
}

func randomElement(rng *rand.Rand, width int, signed bool) *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(width))
	v := new(big.Int).Rand(rng, limit)
	if signed {
		half := new(big.Int).Rsh(limit, 1)
		if v.Cmp(half) >= 0 {
			v.Sub(v, limit)
		}
	}
	return v
}

func printReport(d *design.Design) {
	area, err := d.Area("")
	if err != nil {
		log.Fatalf("gatesim: area: %v", err)
	}
	toggles, err := d.TotalToggleCount("")
	if err != nil {
		log.Fatalf("gatesim: total_toggle_count: %v", err)
	}
	breakdown, err := d.CellBreakdown("")
	if err != nil {
		log.Fatalf("gatesim: cell_breakdown: %v", err)
	}

	fmt.Println(telemetry.RenderAreaReport(d.ModuleNames()[0], area, toggles, breakdown))
	fmt.Println(telemetry.RenderBreakdown("Cell Breakdown", breakdown))
}
