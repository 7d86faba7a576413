package spf

import (
	"math"
	"sort"
	"strings"

	"github.com/ngflow/flowcore/core"
	"github.com/ngflow/flowcore/edgeselect"
)

// PathElement is one hop of a Path: the node reached, and the ECMP
// bundle of edges used to continue to the next element (empty for the
// final element).
type PathElement struct {
	Node  string
	Edges []string
}

// Path is a complete route from source to destination.
type Path []PathElement

// Cost sums the given per-edge cost lookup over the first edge of each
// element's bundle (all edges in a bundle share the same cost).
func (p Path) Cost(g *core.Graph) float64 {
	var total float64
	for _, el := range p {
		if len(el.Edges) == 0 {
			continue
		}
		e, err := g.GetEdge(el.Edges[0])
		if err == nil {
			total += e.Cost
		}
	}

	return total
}

// canonicalKey produces a stable string for deduplicating candidate
// paths by the sorted edge-id tuple of each hop.
func (p Path) canonicalKey() string {
	ids := make([]string, 0, len(p))
	for _, el := range p {
		if len(el.Edges) > 0 {
			sorted := append([]string(nil), el.Edges...)
			sort.Strings(sorted)
			ids = append(ids, strings.Join(sorted, ","))
		}
	}

	return strings.Join(ids, "|")
}

// toResult converts a concrete Path into the (costs, pred) shape every
// other public operation returns, assigning each node its cumulative
// cost along this one path and a single-predecessor chain.
func (p Path) toResult(g *core.Graph) *Result {
	if len(p) == 0 {
		return &Result{Costs: map[string]float64{}, Preds: map[string][]Pred{}}
	}

	costs := map[string]float64{p[0].Node: 0}
	preds := map[string][]Pred{p[0].Node: {}}

	var cum float64
	for i := 0; i < len(p)-1; i++ {
		edges := p[i].Edges
		if len(edges) == 0 {
			continue
		}
		e, err := g.GetEdge(edges[0])
		if err == nil {
			cum += e.Cost
		}
		next := p[i+1].Node
		costs[next] = cum
		preds[next] = []Pred{{PrevNode: p[i].Node, Edges: edges}}
	}

	return &Result{Costs: costs, Preds: preds}
}

// candidate is one entry in Yen's candidate list, kept sorted by (cost,
// monotonic id) so that ties break in discovery order deterministically.
type candidate struct {
	cost float64
	seq  int
	path Path
}

// KSPOptions configures one Yen's-algorithm run.
type KSPOptions struct {
	// MaxK bounds how many paths are returned. Zero or negative means
	// unbounded (limited only by the graph's simple-path count).
	MaxK int
	// MaxPathCost rejects any candidate whose cost exceeds this
	// absolute bound. Nil disables the bound.
	MaxPathCost *float64
	// MaxPathCostFactor rejects any candidate whose cost exceeds
	// FirstCost * MaxPathCostFactor. Nil disables the bound.
	MaxPathCostFactor *float64
	// Multipath is forwarded to every internal SPF call; it does not
	// change which single path Yen's algorithm walks (spur extraction
	// always follows one predecessor per hop), only how many tied
	// predecessors each internal Run call reports.
	Multipath bool
	// ExcludedEdges and ExcludedNodes are excluded from every internal
	// SPF call, in addition to the per-spur exclusions Yen's algorithm
	// adds on top.
	ExcludedEdges map[string]bool
	ExcludedNodes map[string]bool
}

// KSP runs Yen's algorithm from src to dst, yielding up to MaxK
// loopless shortest-path (costs, pred) records in non-decreasing cost
// order. Ties between candidates of equal cost are broken by discovery
// order via a monotonic sequence counter, keeping output deterministic.
//
// Terminates early when dst is unreachable (returns nil, nil), when
// the candidate pool is exhausted, or when the next candidate's cost
// exceeds min(MaxPathCost, firstCost*MaxPathCostFactor).
//
// Complexity: O(K * V * (V+E) log V).
func KSP(g *core.Graph, src, dst string, sel edgeselect.Selector, opts KSPOptions) ([]*Result, error) {
	first, err := shortestSinglePath(g, src, dst, sel, opts.Multipath, opts.ExcludedEdges, opts.ExcludedNodes)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}

	firstCost := first.Cost(g)
	bound := math.Inf(1)
	if opts.MaxPathCost != nil {
		bound = *opts.MaxPathCost
	}
	if opts.MaxPathCostFactor != nil {
		bound = math.Min(bound, firstCost**opts.MaxPathCostFactor)
	}

	maxK := opts.MaxK
	if maxK <= 0 {
		maxK = math.MaxInt32
	}

	paths := []Path{*first}
	results := []*Result{first.toResult(g)}
	seen := map[string]bool{first.canonicalKey(): true}
	var candidates []candidate
	seq := 0

	for len(paths) < maxK {
		prev := paths[len(paths)-1]

		for i := 0; i < len(prev)-1; i++ {
			spurNode := prev[i].Node
			rootPath := prev[:i+1]

			excludedEdges := map[string]bool{}
			for e := range opts.ExcludedEdges {
				excludedEdges[e] = true
			}
			for _, p := range paths {
				if pathHasRootPrefix(p, rootPath) && i < len(p)-1 {
					for _, eid := range p[i].Edges {
						excludedEdges[eid] = true
					}
				}
			}

			excludedNodes := map[string]bool{}
			for n := range opts.ExcludedNodes {
				excludedNodes[n] = true
			}
			for j := 0; j < i; j++ {
				excludedNodes[rootPath[j].Node] = true
			}

			spur, err := shortestSinglePath(g, spurNode, dst, sel, opts.Multipath, excludedEdges, excludedNodes)
			if err != nil || spur == nil {
				continue
			}

			total := append(append(Path{}, rootPath[:i]...), *spur...)
			key := total.canonicalKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			candidates = append(candidates, candidate{cost: total.Cost(g), seq: seq, path: total})
			seq++
		}

		if len(candidates) == 0 {
			break
		}

		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].cost != candidates[b].cost {
				return candidates[a].cost < candidates[b].cost
			}

			return candidates[a].seq < candidates[b].seq
		})

		next := candidates[0]
		if next.cost > bound {
			break
		}
		candidates = candidates[1:]
		paths = append(paths, next.path)
		results = append(results, next.path.toResult(g))
	}

	return results, nil
}

func pathHasRootPrefix(p Path, root Path) bool {
	if len(p) < len(root) {
		return false
	}
	for i := range root {
		if p[i].Node != root[i].Node {
			return false
		}
	}

	return true
}

// shortestSinglePath runs Run and extracts one concrete shortest path
// (following the first recorded ECMP predecessor at each step), or nil
// if dst is unreachable.
func shortestSinglePath(g *core.Graph, src, dst string, sel edgeselect.Selector, multipath bool, excludedEdges, excludedNodes map[string]bool) (*Path, error) {
	res, err := Run(g, src, sel, multipath, excludedEdges, excludedNodes)
	if err != nil {
		return nil, err
	}
	if _, ok := res.Costs[dst]; !ok {
		return nil, nil
	}

	// rev walks backward from dst: rev[i].Edges are the edges used to
	// arrive at rev[i].Node from rev[i+1].Node.
	var rev Path
	node := dst
	for node != src {
		preds := res.Preds[node]
		if len(preds) == 0 {
			return nil, nil
		}
		p := preds[0]
		rev = append(rev, PathElement{Node: node, Edges: p.Edges})
		node = p.PrevNode
	}
	rev = append(rev, PathElement{Node: src})

	n := len(rev)
	out := make(Path, n)
	for k := 0; k < n; k++ {
		out[k].Node = rev[n-1-k].Node
		if k < n-1 {
			out[k].Edges = rev[n-2-k].Edges
		}
	}

	return &out, nil
}
