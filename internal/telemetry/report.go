package telemetry

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderBreakdown renders a {type name -> instance count} map as a
// two-column table, sorted by type name for determinism, in the same
// go-pretty style as core/util.go's PrintState register/buffer tables.
func RenderBreakdown(title string, breakdown map[string]int) string {
	t := table.NewWriter()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Cell Type", "Count"})

	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		t.AppendRow(table.Row{name, breakdown[name]})
		total += breakdown[name]
	}
	t.AppendFooter(table.Row{"Total", total})

	return t.Render()
}

// RenderAreaReport renders a single module's area, total toggle count,
// and number of distinct cell types in its breakdown as one table.
func RenderAreaReport(moduleName string, area int, toggles uint64, breakdown map[string]int) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Area Report: %s", moduleName))
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Area", area})
	t.AppendRow(table.Row{"Total Toggles", toggles})
	t.AppendRow(table.Row{"Distinct Cell Types", len(breakdown)})
	return t.Render()
}
