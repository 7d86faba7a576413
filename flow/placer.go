package flow

import (
	"math"

	"github.com/ngflow/flowcore/core"
)

// PlaceFlow places up to requested units of flow from src to dst along
// the capacity structure described by pred, tagging every touched edge
// and node with flowIndex so it can later be removed independently of
// other flows. Returns metadata describing what was actually placed.
//
// Complexity: O(V+E).
func PlaceFlow(g *core.Graph, src, dst string, pred PredMap, requested float64, flowIndex core.FlowIndex, placement Placement) (*PlacementMeta, error) {
	remCap, flowDict, err := CalcGraphCapacity(g, src, dst, pred, placement)
	if err != nil {
		return nil, err
	}

	placed := math.Min(remCap, requested)
	var remaining float64
	if math.IsInf(requested, 1) {
		remaining = math.Inf(1)
	} else {
		remaining = math.Max(requested-remCap, 0)
	}

	if placed < MinFlow {
		return &PlacementMeta{PlacedFlow: 0, RemainingFlow: requested, Nodes: map[string]bool{}, Edges: map[string]bool{}}, nil
	}

	meta := &PlacementMeta{
		PlacedFlow:    placed,
		RemainingFlow: remaining,
		Nodes:         map[string]bool{src: true, dst: true},
		Edges:         map[string]bool{},
	}

	for nodeA, toDict := range flowDict {
		for nodeB, fraction := range toDict {
			if fraction <= 0 {
				continue
			}
			meta.Nodes[nodeA] = true
			meta.Nodes[nodeB] = true

			nA, err := g.GetNode(nodeA)
			if err != nil {
				continue
			}
			contribution := fraction * placed
			nA.Flow += contribution
			nA.Flows[flowIndex] += contribution

			// pred is keyed [head][tail]; the positive flowDict entry
			// (nodeA, nodeB) is the forward tail→head pair.
			edgeList := pred[nodeB][nodeA]
			switch placement {
			case Proportional:
				var totalRemCap float64
				edgesObjs := make([]*core.Edge, 0, len(edgeList))
				for _, eid := range edgeList {
					e, err := g.GetEdge(eid)
					if err != nil {
						continue
					}
					edgesObjs = append(edgesObjs, e)
					totalRemCap += e.Capacity - e.Flow
				}
				if totalRemCap > 0 {
					for _, e := range edgesObjs {
						unused := e.Capacity - e.Flow
						if unused <= 0 {
							continue
						}
						subflow := fraction * placed / totalRemCap * unused
						if subflow > 0 {
							meta.Edges[e.ID] = true
							e.Flow += subflow
							e.Flows[flowIndex] += subflow
						}
					}
				}
			case EqualBalanced:
				if len(edgeList) > 0 {
					subflow := (fraction * placed) / float64(len(edgeList))
					for _, eid := range edgeList {
						e, err := g.GetEdge(eid)
						if err != nil {
							continue
						}
						meta.Edges[eid] = true
						e.Flow += subflow
						e.Flows[flowIndex] += subflow
					}
				}
			}
		}
	}

	return meta, nil
}

// RemoveFlow subtracts one flowIndex's contribution from every edge and
// node it touched, keeping node Flow/Flows consistent with edge
// Flow/Flows at all times. Removing an index with no contributions is a
// no-op.
//
// Complexity: O(V+E).
func RemoveFlow(g *core.Graph, flowIndex core.FlowIndex) {
	for _, e := range g.Edges() {
		if removed, ok := e.Flows[flowIndex]; ok {
			e.Flow -= removed
			delete(e.Flows, flowIndex)
		}
	}
	for _, n := range g.Nodes() {
		if removed, ok := n.Flows[flowIndex]; ok {
			n.Flow -= removed
			delete(n.Flows, flowIndex)
		}
	}
}

// RemoveAllFlows zeroes Flow and clears Flows on every edge and node,
// matching remove_flow_from_graph's flow_index=None case.
//
// Complexity: O(V+E).
func RemoveAllFlows(g *core.Graph) {
	g.ResetFlows()
}
