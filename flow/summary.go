package flow

import "github.com/ngflow/flowcore/core"

// BuildSummary constructs a FlowSummary from a graph's current flow
// state: per-edge flow and residual capacity, the set of nodes
// reachable from src in the residual graph, and the saturated edges
// crossing that reachable/unreachable boundary (the min cut).
//
// Complexity: O(V+E).
func BuildSummary(g *core.Graph, src string, totalFlow float64) *FlowSummary {
	summary := &FlowSummary{
		TotalFlow:        totalFlow,
		EdgeFlow:         map[string]float64{},
		ResidualCap:      map[string]float64{},
		Reachable:        map[string]bool{},
		CostDistribution: map[float64]float64{},
	}

	for _, e := range g.Edges() {
		summary.EdgeFlow[e.ID] = e.Flow
		summary.ResidualCap[e.ID] = e.Capacity - e.Flow
	}

	stack := []string{src}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if summary.Reachable[n] {
			continue
		}
		summary.Reachable[n] = true
		for _, nbr := range g.Neighbors(n) {
			for _, eid := range g.EdgesBetween(n, nbr) {
				e, err := g.GetEdge(eid)
				if err == nil && e.Capacity-e.Flow >= MinCap && !summary.Reachable[nbr] {
					stack = append(stack, nbr)
				}
			}
		}
	}

	for _, e := range g.Edges() {
		if summary.Reachable[e.From] && !summary.Reachable[e.To] && e.Capacity-e.Flow < MinCap {
			summary.MinCut = append(summary.MinCut, e.ID)
		}
	}

	return summary
}

// SaturatedEdges runs MaxFlow and returns every edge ID whose residual
// capacity is at most tolerance afterwards, identifying the bottleneck
// candidates for sensitivity analysis.
func SaturatedEdges(g *core.Graph, src, dst string, opts MaxFlowOptions, tolerance float64) ([]string, error) {
	total, workGraph, err := MaxFlow(g, src, dst, opts)
	if err != nil {
		return nil, err
	}
	summary := BuildSummary(workGraph, src, total)

	var out []string
	for eid, residual := range summary.ResidualCap {
		if residual <= tolerance {
			out = append(out, eid)
		}
	}

	return out, nil
}

// RunSensitivity perturbs each saturated edge's capacity by
// changeAmount (clamped at zero) and reports the resulting change in
// total flow, keyed by edge ID. Each probe runs on its own clone of g.
func RunSensitivity(g *core.Graph, src, dst string, opts MaxFlowOptions, changeAmount float64) (map[string]float64, error) {
	baseline, _, err := MaxFlow(g, src, dst, opts)
	if err != nil {
		return nil, err
	}

	saturated, err := SaturatedEdges(g, src, dst, opts, 1e-10)
	if err != nil {
		return nil, err
	}

	out := map[string]float64{}
	for _, eid := range saturated {
		trial := g.Clone()
		e, err := trial.GetEdge(eid)
		if err != nil {
			continue
		}
		newCap := e.Capacity + changeAmount
		if newCap < 0 {
			newCap = 0
		}
		e.Capacity = newCap

		trialFlow, _, err := MaxFlow(trial, src, dst, MaxFlowOptions{Placement: opts.Placement, InPlace: true})
		if err != nil {
			continue
		}
		out[eid] = trialFlow - baseline
	}

	return out, nil
}
