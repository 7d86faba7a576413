package flow

import (
	"errors"

	"github.com/ngflow/flowcore/spf"
)

// ErrSourceNotFound is returned when the source node does not exist in
// the graph.
var ErrSourceNotFound = errors.New("flow: source node not found")

// ErrSinkNotFound is returned when the destination node does not exist
// in the graph.
var ErrSinkNotFound = errors.New("flow: sink node not found")

// ErrUnsupportedPlacement is returned for an unrecognized Placement
// value.
var ErrUnsupportedPlacement = errors.New("flow: unsupported flow placement")

// MinFlow (2^-12) is the threshold below which flow values are clamped
// to zero and flow placements are rejected.
const MinFlow = 1.0 / 4096

// MinCap (2^-12) is the threshold below which residual capacities are
// treated as exhausted when building residual and level graphs.
const MinCap = 1.0 / 4096

// Placement selects how flow is distributed across parallel equal-cost
// paths or edges.
type Placement int

const (
	// Proportional splits flow proportional to each edge's residual
	// capacity (a Dinic-like blocking-flow distribution).
	Proportional Placement = iota
	// EqualBalanced splits flow equally among parallel equal-cost
	// paths/edges, regardless of their individual capacities.
	EqualBalanced
)

// PredMap is a forward-adjacency predecessor map: PredMap[node][prev]
// lists the parallel edge IDs from prev to node. It is the structure
// spf.Result.Preds is converted into before being handed to this
// package, decoupling flow from spf's own Pred slice shape.
type PredMap map[string]map[string][]string

// PlacementMeta reports the outcome of one PlaceFlow call.
type PlacementMeta struct {
	PlacedFlow    float64
	RemainingFlow float64
	Nodes         map[string]bool
	Edges         map[string]bool
}

// FlowSummary reports detailed analytics for one MaxFlow computation.
type FlowSummary struct {
	TotalFlow    float64
	EdgeFlow     map[string]float64
	ResidualCap  map[string]float64
	Reachable    map[string]bool
	MinCut       []string
	// CostDistribution maps each distinct path cost used during
	// sequential augmentation to the total flow volume placed over
	// paths of that cost.
	CostDistribution map[float64]float64
}

// buildPredMap converts an spf.Result's Preds (node -> []spf.Pred) into
// a PredMap keyed by node then predecessor.
func buildPredMap(preds map[string][]spf.Pred) PredMap {
	out := PredMap{}
	for node, ps := range preds {
		out[node] = map[string][]string{}
		for _, p := range ps {
			out[node][p.PrevNode] = p.Edges
		}
	}

	return out
}
