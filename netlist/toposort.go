package netlist

import (
	"sort"

	"github.com/sarchlab/gatesim/internal/gatesimerr"
	"github.com/sarchlab/gatesim/module"
	"github.com/sarchlab/gatesim/signal"
)

// topoSort linearizes combinational components (non-sequential leaf
// cells and sub-module instances) such that every component is ordered
// after every component driving one of its inputs. Ties are broken by
// ascending component name for determinism.
func topoSort(nodes []*topoNode) ([]*module.Component, error) {
	consumers := make(map[signal.Handle][]*topoNode)
	indegree := make(map[*topoNode]int, len(nodes))
	edgeSeen := make(map[[2]*topoNode]bool)

	for _, n := range nodes {
		indegree[n] = 0
	}
	for _, n := range nodes {
		for _, h := range n.inputs {
			consumers[h] = append(consumers[h], n)
		}
	}
	for _, n := range nodes {
		for _, h := range n.outputs {
			for _, consumer := range consumers[h] {
				if consumer == n {
					continue
				}
				key := [2]*topoNode{n, consumer}
				if edgeSeen[key] {
					continue
				}
				edgeSeen[key] = true
				indegree[consumer]++
			}
		}
	}

	var ready []*topoNode
	for _, n := range nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	var order []*module.Component
	visited := make(map[*topoNode]bool, len(nodes))

	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].name < ready[j].name })
		n := ready[0]
		ready = ready[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		order = append(order, n.comp)

		for _, h := range n.outputs {
			for _, consumer := range consumers[h] {
				if consumer == n || visited[consumer] {
					continue
				}
				key := [2]*topoNode{n, consumer}
				if !edgeSeen[key] {
					continue
				}
				indegree[consumer]--
				if indegree[consumer] == 0 {
					ready = append(ready, consumer)
				}
			}
		}
	}

	if len(order) < len(nodes) {
		for _, n := range nodes {
			if !visited[n] {
				return nil, gatesimerr.New(gatesimerr.CombinationalCycle, n.name,
					"cell participates in a combinational cycle")
			}
		}
	}

	return order, nil
}
