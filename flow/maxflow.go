package flow

import (
	"math"

	"github.com/ngflow/flowcore/core"
	"github.com/ngflow/flowcore/edgeselect"
	"github.com/ngflow/flowcore/spf"
)

// MaxFlowOptions configures one MaxFlow call.
type MaxFlowOptions struct {
	// Placement selects how flow is split among parallel equal-cost
	// paths/edges. Defaults to Proportional.
	Placement Placement
	// ShortestPath, if true, places flow along a single shortest
	// augmenting pass and returns immediately instead of iterating to
	// the true max flow.
	ShortestPath bool
	// ResetFlowGraph clears any pre-existing flow data before running.
	ResetFlowGraph bool
	// InPlace mutates the caller's graph directly. The zero value runs
	// against a Clone(), leaving the caller's graph untouched.
	InPlace bool
}

// MaxFlow computes the maximum flow from src to dst by repeatedly
// finding a capacity-constrained shortest augmenting structure
// (ALL_MIN_COST_WITH_CAP_REMAINING under ECMP) and placing flow along
// it until no further augmenting structure exists or the last pass
// placed less than MinFlow.
//
// Returns the total flow placed and the graph the flow was actually
// placed on (a clone unless opts.InPlace is set).
//
// Complexity: O(augmentations * (V+E) log V).
func MaxFlow(g *core.Graph, src, dst string, opts MaxFlowOptions) (float64, *core.Graph, error) {
	total, _, workGraph, err := runMaxFlow(g, src, dst, opts)

	return total, workGraph, err
}

// MaxFlowWithSummary is MaxFlow plus a FlowSummary of the final flow
// state: per-edge flows, residuals, the residual-reachable set, the min
// cut, and the distribution of placed volume over augmenting-path cost.
func MaxFlowWithSummary(g *core.Graph, src, dst string, opts MaxFlowOptions) (float64, *FlowSummary, *core.Graph, error) {
	total, costDist, workGraph, err := runMaxFlow(g, src, dst, opts)
	if err != nil {
		return total, nil, workGraph, err
	}

	summary := BuildSummary(workGraph, src, total)
	summary.CostDistribution = costDist

	return total, summary, workGraph, nil
}

func runMaxFlow(g *core.Graph, src, dst string, opts MaxFlowOptions) (float64, map[float64]float64, *core.Graph, error) {
	costDist := map[float64]float64{}

	if src == dst {
		workGraph := g
		if !opts.InPlace {
			workGraph = g.Clone()
		}
		if opts.ResetFlowGraph {
			workGraph.ResetFlows()
		}
		return 0, costDist, workGraph, nil
	}

	if !g.HasNode(src) {
		return 0, nil, nil, ErrSourceNotFound
	}
	if !g.HasNode(dst) {
		return 0, nil, nil, ErrSinkNotFound
	}

	workGraph := g
	if !opts.InPlace {
		workGraph = g.Clone()
	}
	if opts.ResetFlowGraph {
		workGraph.ResetFlows()
	}

	sel := edgeselect.Selector{Kind: edgeselect.AllMinCostWithCapRemaining}

	var totalFlow float64
	for {
		res, err := spf.Run(workGraph, src, sel, true, nil, nil)
		if err != nil {
			return totalFlow, costDist, workGraph, err
		}
		pathCost, ok := res.Costs[dst]
		if !ok {
			break
		}
		pred := buildPredMap(res.Preds)

		meta, err := PlaceFlow(workGraph, src, dst, pred, math.Inf(1), core.FlowIndex{Src: src, Dst: dst}, opts.Placement)
		if err != nil {
			return totalFlow, costDist, workGraph, err
		}
		if meta.PlacedFlow < MinFlow {
			break
		}
		totalFlow += meta.PlacedFlow
		costDist[pathCost] += meta.PlacedFlow

		if opts.ShortestPath {
			break
		}
	}

	return totalFlow, costDist, workGraph, nil
}
