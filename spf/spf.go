package spf

import (
	"container/heap"
	"errors"
	"math"

	"github.com/ngflow/flowcore/core"
	"github.com/ngflow/flowcore/edgeselect"
)

// ErrSourceNotFound is returned when the source node is absent from the
// graph.
var ErrSourceNotFound = errors.New("spf: source node not found")

// Pred records one predecessor hop: coming from PrevNode via one or
// more parallel edges tied for the minimum cost (ECMP bundle).
type Pred struct {
	PrevNode string
	Edges    []string
}

// Result is the output of Run: shortest cost to every reached node, and
// every ECMP predecessor bundle per node (empty for the source).
type Result struct {
	Costs map[string]float64
	Preds map[string][]Pred
}

// nodeItem is one entry in the priority queue.
type nodeItem struct {
	id    string
	cost  float64
	index int
}

type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].cost < pq[j].cost }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i]; pq[i].index = i; pq[j].index = j }
func (pq *nodePQ) Push(x interface{}) {
	item := x.(*nodeItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]

	return item
}

// Run computes shortest-path costs from src to every reachable node,
// using sel to choose among parallel edges at each hop. When multipath
// is true, every predecessor tied for a node's minimum cost is
// recorded (ECMP); when false, only the first-discovered minimum-cost
// predecessor is kept and later ties are ignored — this changes SPF's
// relaxation step itself, not just which predecessors get reported.
// excludedEdges/excludedNodes, when non-nil, are removed from
// consideration (used by KSP's spur-path search).
//
// Complexity: O((V+E) log V) using a lazy-decrease-key binary heap.
func Run(g *core.Graph, src string, sel edgeselect.Selector, multipath bool, excludedEdges map[string]bool, excludedNodes map[string]bool) (*Result, error) {
	if !g.HasNode(src) {
		return nil, ErrSourceNotFound
	}

	costs := map[string]float64{src: 0}
	preds := map[string][]Pred{src: {}}
	visited := map[string]bool{}

	pq := &nodePQ{}
	heap.Init(pq)
	heap.Push(pq, &nodeItem{id: src, cost: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(*nodeItem)
		if visited[cur.id] {
			continue
		}
		visited[cur.id] = true

		for _, nbr := range g.Neighbors(cur.id) {
			if excludedNodes[nbr] {
				continue
			}
			parallel := g.EdgesBetween(cur.id, nbr)
			edgeObjs := make([]*core.Edge, 0, len(parallel))
			for _, eid := range parallel {
				e, err := g.GetEdge(eid)
				if err == nil {
					edgeObjs = append(edgeObjs, e)
				}
			}

			hopCost, chosen, err := sel.Select(edgeObjs, excludedEdges)
			if err != nil || len(chosen) == 0 || math.IsInf(hopCost, 1) {
				continue
			}

			candidate := cur.cost + hopCost
			existing, seen := costs[nbr]
			switch {
			case !seen || candidate < existing-1e-12:
				costs[nbr] = candidate
				preds[nbr] = []Pred{{PrevNode: cur.id, Edges: chosen}}
				heap.Push(pq, &nodeItem{id: nbr, cost: candidate})
			case multipath && math.Abs(candidate-existing) <= 1e-12:
				preds[nbr] = append(preds[nbr], Pred{PrevNode: cur.id, Edges: chosen})
			}
		}
	}

	return &Result{Costs: costs, Preds: preds}, nil
}
