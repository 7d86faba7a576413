package flow_test

import (
	"testing"

	"github.com/ngflow/flowcore/core"
	"github.com/ngflow/flowcore/edgeselect"
	"github.com/ngflow/flowcore/flow"
	"github.com/ngflow/flowcore/spf"
	"github.com/stretchr/testify/require"
)

func TestMaxFlow_LineGraph(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(10))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(5))

	total, _, err := flow.MaxFlow(g, "A", "C", flow.MaxFlowOptions{Placement: flow.Proportional})
	require.NoError(t, err)
	require.InDelta(t, 5.0, total, 1e-9)
}

func TestMaxFlow_SquareGraph_ECMP(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("A", "C", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("B", "D", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("C", "D", 1, core.WithCapacity(5))

	total, _, err := flow.MaxFlow(g, "A", "D", flow.MaxFlowOptions{Placement: flow.Proportional})
	require.NoError(t, err)
	require.InDelta(t, 10.0, total, 1e-9)
}

func TestMaxFlow_SrcEqualsDst(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))

	total, _, err := flow.MaxFlow(g, "A", "A", flow.MaxFlowOptions{})
	require.NoError(t, err)
	require.Equal(t, 0.0, total)
}

func TestMaxFlow_DoesNotMutateOriginalByDefault(t *testing.T) {
	g := core.NewGraph()
	eid, _ := g.AddEdge("A", "B", 1, core.WithCapacity(5))

	_, _, err := flow.MaxFlow(g, "A", "B", flow.MaxFlowOptions{})
	require.NoError(t, err)

	e, _ := g.GetEdge(eid)
	require.Equal(t, 0.0, e.Flow)
}

func TestBuildSummary_MinCut(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(5))

	total, workGraph, err := flow.MaxFlow(g, "A", "C", flow.MaxFlowOptions{})
	require.NoError(t, err)
	summary := flow.BuildSummary(workGraph, "A", total)
	require.True(t, summary.Reachable["A"])
	require.NotEmpty(t, summary.MinCut)
}

// Three parallel B->C edges of differing cost and capacity: the full
// max flow exploits all of them, while a single shortest-path
// augmentation is restricted to the two cost-1 edges.
func TestMaxFlow_LineCapacitySplit(t *testing.T) {
	newGraph := func() *core.Graph {
		g := core.NewGraph()
		_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))
		_, _ = g.AddEdge("B", "A", 1, core.WithCapacity(5))
		_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(1))
		_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(3))
		_, _ = g.AddEdge("B", "C", 2, core.WithCapacity(7))
		_, _ = g.AddEdge("C", "B", 1, core.WithCapacity(1))
		_, _ = g.AddEdge("C", "B", 1, core.WithCapacity(3))
		_, _ = g.AddEdge("C", "B", 2, core.WithCapacity(7))

		return g
	}

	total, _, err := flow.MaxFlow(newGraph(), "A", "C", flow.MaxFlowOptions{Placement: flow.Proportional})
	require.NoError(t, err)
	require.InDelta(t, 5.0, total, 1e-9)

	shortest, _, err := flow.MaxFlow(newGraph(), "A", "C", flow.MaxFlowOptions{Placement: flow.Proportional, ShortestPath: true})
	require.NoError(t, err)
	require.InDelta(t, 4.0, shortest, 1e-9)
}

// A square graph where the full max flow must reroute through a
// higher-cost detour, and a single shortest-path augmentation (under
// both placement disciplines) is restricted to the cheap two-hop path.
func TestMaxFlow_SquareWithRerouting(t *testing.T) {
	newGraph := func() *core.Graph {
		g := core.NewGraph()
		_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(1))
		_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(2))
		_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(1))
		_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(2))
		_, _ = g.AddEdge("A", "D", 2, core.WithCapacity(3))
		_, _ = g.AddEdge("D", "C", 2, core.WithCapacity(3))

		return g
	}

	total, _, err := flow.MaxFlow(newGraph(), "A", "C", flow.MaxFlowOptions{Placement: flow.Proportional})
	require.NoError(t, err)
	require.InDelta(t, 6.0, total, 1e-9)

	shortestProportional, _, err := flow.MaxFlow(newGraph(), "A", "C", flow.MaxFlowOptions{Placement: flow.Proportional, ShortestPath: true})
	require.NoError(t, err)
	require.InDelta(t, 3.0, shortestProportional, 1e-9)

	shortestBalanced, _, err := flow.MaxFlow(newGraph(), "A", "C", flow.MaxFlowOptions{Placement: flow.EqualBalanced, ShortestPath: true})
	require.NoError(t, err)
	require.InDelta(t, 2.0, shortestBalanced, 1e-9)
}

// A six-node topology with two disjoint A->C routes (via B and via E)
// that must both be exploited to reach the full max flow of 10.
func TestMaxFlow_Graph3(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(2))
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(4))
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(6))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(1))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(2))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(3))
	_, _ = g.AddEdge("C", "D", 2, core.WithCapacity(3))
	_, _ = g.AddEdge("A", "E", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("E", "C", 1, core.WithCapacity(4))
	_, _ = g.AddEdge("A", "D", 4, core.WithCapacity(2))
	_, _ = g.AddEdge("C", "F", 1, core.WithCapacity(1))
	_, _ = g.AddEdge("F", "D", 1, core.WithCapacity(2))

	total, _, err := flow.MaxFlow(g, "A", "C", flow.MaxFlowOptions{Placement: flow.Proportional})
	require.NoError(t, err)
	require.InDelta(t, 10.0, total, 1e-9)
}

func TestSaturatedEdges(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(5))

	saturated, err := flow.SaturatedEdges(g, "A", "C", flow.MaxFlowOptions{}, 1e-9)
	require.NoError(t, err)
	require.Len(t, saturated, 2)
}

// Idempotency pair: by default MaxFlow works on a clone, so repeated
// calls see the same input graph; with InPlace the first call saturates
// the graph and the second finds nothing left.
func TestMaxFlow_IdempotentOnClone(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(5))

	first, _, err := flow.MaxFlow(g, "A", "C", flow.MaxFlowOptions{})
	require.NoError(t, err)
	second, _, err := flow.MaxFlow(g, "A", "C", flow.MaxFlowOptions{})
	require.NoError(t, err)
	require.Equal(t, first, second)

	for _, e := range g.Edges() {
		require.Equal(t, 0.0, e.Flow)
	}
}

func TestMaxFlow_InPlaceSecondCallReturnsZero(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(5))

	first, _, err := flow.MaxFlow(g, "A", "C", flow.MaxFlowOptions{InPlace: true})
	require.NoError(t, err)
	require.InDelta(t, 5.0, first, 1e-9)

	second, _, err := flow.MaxFlow(g, "A", "C", flow.MaxFlowOptions{InPlace: true})
	require.NoError(t, err)
	require.Equal(t, 0.0, second)
}

func TestMaxFlowWithSummary_MinCutCapacityEqualsTotalFlow(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(10))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(4))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(3))
	_, _ = g.AddEdge("A", "D", 2, core.WithCapacity(5))
	_, _ = g.AddEdge("D", "C", 2, core.WithCapacity(2))

	total, summary, workGraph, err := flow.MaxFlowWithSummary(g, "A", "C", flow.MaxFlowOptions{})
	require.NoError(t, err)
	require.InDelta(t, 9.0, total, 1e-9)

	var cutCapacity float64
	for _, eid := range summary.MinCut {
		e, err := workGraph.GetEdge(eid)
		require.NoError(t, err)
		cutCapacity += e.Capacity
	}
	require.InDelta(t, total, cutCapacity, 1e-9)
}

func TestMaxFlowWithSummary_CostDistribution(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(3))
	_, _ = g.AddEdge("B", "C", 1, core.WithCapacity(3))
	_, _ = g.AddEdge("A", "D", 2, core.WithCapacity(2))
	_, _ = g.AddEdge("D", "C", 2, core.WithCapacity(2))

	_, summary, _, err := flow.MaxFlowWithSummary(g, "A", "C", flow.MaxFlowOptions{})
	require.NoError(t, err)
	require.InDelta(t, 3.0, summary.CostDistribution[2.0], 1e-9)
	require.InDelta(t, 2.0, summary.CostDistribution[4.0], 1e-9)
}

// Fractions leaving the source sum to 1 for a Proportional capacity
// calculation with positive total flow.
func TestCalcGraphCapacity_ProportionalFractionsSumToOne(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(4))
	_, _ = g.AddEdge("A", "C", 1, core.WithCapacity(6))
	_, _ = g.AddEdge("B", "D", 1, core.WithCapacity(4))
	_, _ = g.AddEdge("C", "D", 1, core.WithCapacity(6))

	res, err := spf.Run(g, "A", edgeselect.Selector{Kind: edgeselect.AllMinCost}, true, nil, nil)
	require.NoError(t, err)

	pred := flow.PredMap{}
	for node, ps := range res.Preds {
		pred[node] = map[string][]string{}
		for _, p := range ps {
			pred[node][p.PrevNode] = p.Edges
		}
	}

	total, flowDict, err := flow.CalcGraphCapacity(g, "A", "D", pred, flow.Proportional)
	require.NoError(t, err)
	require.InDelta(t, 10.0, total, 1e-9)

	var leavingSrc float64
	for _, fraction := range flowDict["A"] {
		if fraction > 0 {
			leavingSrc += fraction
		}
	}
	require.InDelta(t, 1.0, leavingSrc, 1e-9)
}

// EqualBalanced placement puts placed/K on each of K equal parallel
// edges at a branch.
func TestPlaceFlow_EqualBalancedSplitsEvenly(t *testing.T) {
	g := core.NewGraph()
	e1, _ := g.AddEdge("A", "B", 1, core.WithCapacity(10))
	e2, _ := g.AddEdge("A", "B", 1, core.WithCapacity(10))

	res, err := spf.Run(g, "A", edgeselect.Selector{Kind: edgeselect.AllMinCost}, true, nil, nil)
	require.NoError(t, err)
	pred := flow.PredMap{"B": {"A": res.Preds["B"][0].Edges}}

	idx := core.FlowIndex{Src: "A", Dst: "B"}
	meta, err := flow.PlaceFlow(g, "A", "B", pred, 8, idx, flow.EqualBalanced)
	require.NoError(t, err)
	require.InDelta(t, 8.0, meta.PlacedFlow, 1e-9)

	for _, eid := range []string{e1, e2} {
		e, err := g.GetEdge(eid)
		require.NoError(t, err)
		require.InDelta(t, 4.0, e.Flow, 1e-9)
	}
}

// Place-then-remove round trip restores every flow attribute; removing
// an absent flow index a second time is a no-op.
func TestPlaceFlow_RemoveFlowRoundTrip(t *testing.T) {
	g := core.NewGraph()
	eid, _ := g.AddEdge("A", "B", 1, core.WithCapacity(10))

	pred := flow.PredMap{"B": {"A": []string{eid}}}
	idx := core.FlowIndex{Src: "A", Dst: "B", Class: 1, Seq: 0}

	meta, err := flow.PlaceFlow(g, "A", "B", pred, 7, idx, flow.Proportional)
	require.NoError(t, err)
	require.InDelta(t, 7.0, meta.PlacedFlow, 1e-9)
	require.True(t, meta.Edges[eid])

	e, _ := g.GetEdge(eid)
	require.InDelta(t, 7.0, e.Flow, 1e-9)
	require.InDelta(t, 7.0, e.Flows[idx], 1e-9)
	n, _ := g.GetNode("A")
	require.InDelta(t, 7.0, n.Flow, 1e-9)

	flow.RemoveFlow(g, idx)
	e, _ = g.GetEdge(eid)
	require.InDelta(t, 0.0, e.Flow, 1e-9)
	require.Empty(t, e.Flows)
	n, _ = g.GetNode("A")
	require.InDelta(t, 0.0, n.Flow, 1e-9)

	flow.RemoveFlow(g, idx) // second removal must not fail or change anything
	e, _ = g.GetEdge(eid)
	require.InDelta(t, 0.0, e.Flow, 1e-9)
}

// Aggregate edge flow always equals the sum of its per-flow entries.
func TestPlaceFlow_AggregateMatchesPerFlowSum(t *testing.T) {
	g := core.NewGraph()
	eid, _ := g.AddEdge("A", "B", 1, core.WithCapacity(10))
	pred := flow.PredMap{"B": {"A": []string{eid}}}

	idx1 := core.FlowIndex{Src: "A", Dst: "B", Seq: 0}
	idx2 := core.FlowIndex{Src: "A", Dst: "B", Seq: 1}
	_, err := flow.PlaceFlow(g, "A", "B", pred, 4, idx1, flow.Proportional)
	require.NoError(t, err)
	_, err = flow.PlaceFlow(g, "A", "B", pred, 3, idx2, flow.Proportional)
	require.NoError(t, err)

	e, _ := g.GetEdge(eid)
	var sum float64
	for _, v := range e.Flows {
		sum += v
	}
	require.InDelta(t, e.Flow, sum, 1e-9)
	require.LessOrEqual(t, e.Flow, e.Capacity+1e-9)
}

func TestCalcGraphCapacity_UnreachableSinkReturnsZero(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))
	require.NoError(t, g.AddNode("Z"))

	total, _, err := flow.CalcGraphCapacity(g, "A", "Z", flow.PredMap{}, flow.Proportional)
	require.NoError(t, err)
	require.Equal(t, 0.0, total)
}

func TestCalcGraphCapacity_UnknownNodeFails(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(5))

	_, _, err := flow.CalcGraphCapacity(g, "missing", "B", flow.PredMap{}, flow.Proportional)
	require.ErrorIs(t, err, flow.ErrSourceNotFound)

	_, _, err = flow.CalcGraphCapacity(g, "A", "missing", flow.PredMap{}, flow.Proportional)
	require.ErrorIs(t, err, flow.ErrSinkNotFound)
}

// A parallel bundle containing a zero-capacity member is banned
// entirely under EqualBalanced (min(cap) * K == 0).
func TestCalcGraphCapacity_EqualBalancedBansZeroCapacityBundle(t *testing.T) {
	g := core.NewGraph()
	e1, _ := g.AddEdge("A", "B", 1, core.WithCapacity(0))
	e2, _ := g.AddEdge("A", "B", 1, core.WithCapacity(5))

	pred := flow.PredMap{"B": {"A": []string{e1, e2}}}
	total, _, err := flow.CalcGraphCapacity(g, "A", "B", pred, flow.EqualBalanced)
	require.NoError(t, err)
	require.Equal(t, 0.0, total)
}

func TestRunSensitivity_RaisingBottleneckRaisesFlow(t *testing.T) {
	g := core.NewGraph()
	_, _ = g.AddEdge("A", "B", 1, core.WithCapacity(10))
	bottleneck, _ := g.AddEdge("B", "C", 1, core.WithCapacity(5))

	deltas, err := flow.RunSensitivity(g, "A", "C", flow.MaxFlowOptions{}, 1.0)
	require.NoError(t, err)
	require.InDelta(t, 1.0, deltas[bottleneck], 1e-9)
}
