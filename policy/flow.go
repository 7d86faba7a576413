package policy

import (
	"github.com/ngflow/flowcore/core"
	"github.com/ngflow/flowcore/flow"
	"github.com/ngflow/flowcore/pathresolver"
)

// Flow represents a fraction of a demand routed along one PathBundle.
// It can model an MPLS LSP, an ECMP-forwarded IP flow, or any traffic
// that follows a fixed set of paths.
type Flow struct {
	// PathBundle is the set of paths this flow is allowed to use.
	PathBundle *pathresolver.PathBundle
	// Index tags every edge/node contribution this flow makes, so it
	// can later be removed independently of other flows.
	Index core.FlowIndex
	// ExcludedEdges and ExcludedNodes restrict path-finding when this
	// flow is (re-)created, carried forward across re-optimizations.
	ExcludedEdges map[string]bool
	ExcludedNodes map[string]bool
	// PlacedFlow is the cumulative volume successfully placed by this
	// flow so far.
	PlacedFlow float64
}

// newFlow constructs a Flow for the given bundle and index.
func newFlow(pb *pathresolver.PathBundle, idx core.FlowIndex, excludedEdges, excludedNodes map[string]bool) *Flow {
	return &Flow{
		PathBundle:    pb,
		Index:         idx,
		ExcludedEdges: excludedEdges,
		ExcludedNodes: excludedNodes,
	}
}

// buildPredFromBundle converts a PathBundle's edge tuples into the
// flow package's forward PredMap shape (PredMap[node][prev] = edges).
func buildPredFromBundle(pb *pathresolver.PathBundle) flow.PredMap {
	out := flow.PredMap{}
	for _, t := range pb.EdgeTuples() {
		if out[t.To] == nil {
			out[t.To] = map[string][]string{}
		}
		out[t.To][t.From] = t.Edges
	}

	return out
}

// placeFlow attempts to place up to toPlace units of volume for this
// flow on g, tagging every touched edge/node with f.Index. Returns the
// amount actually placed and the amount left over.
func (f *Flow) placeFlow(g *core.Graph, toPlace float64, placement flow.Placement) (float64, float64) {
	if toPlace < flow.MinFlow {
		return 0, toPlace
	}

	pred := buildPredFromBundle(f.PathBundle)
	meta, err := flow.PlaceFlow(g, f.PathBundle.Src, f.PathBundle.Dst, pred, toPlace, f.Index, placement)
	if err != nil {
		return 0, toPlace
	}

	f.PlacedFlow += meta.PlacedFlow

	return meta.PlacedFlow, meta.RemainingFlow
}

// removeFlow zeroes this flow's contribution to g and resets
// PlacedFlow to zero.
func (f *Flow) removeFlow(g *core.Graph) {
	flow.RemoveFlow(g, f.Index)
	f.PlacedFlow = 0
}
