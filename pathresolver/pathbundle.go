package pathresolver

import (
	"errors"
	"sort"

	"github.com/ngflow/flowcore/spf"
)

// ErrDestinationUnreachable is returned when dst has no recorded
// predecessor bundle in the given spf.Result.
var ErrDestinationUnreachable = errors.New("pathresolver: destination unreachable")

// EdgeTuple identifies one hop (from, to) and the parallel edge IDs
// available at that hop within the bundle.
type EdgeTuple struct {
	From, To string
	Edges    []string
}

// PathBundle is the loop-free sub-DAG of all minimum-cost src→dst
// routes: every node and edge that lies on some shortest path is a
// member, with bundles of parallel equal-cost edges preserved per hop.
type PathBundle struct {
	Src, Dst string
	Cost     float64

	// pred restricts spf.Result.Preds to only the nodes reachable
	// backward from Dst.
	pred map[string][]spf.Pred
}

// NewPathBundle walks res.Preds backward from dst, collecting every
// node and edge bundle that participates in some shortest path from
// src. Complexity: O(V+E) over the reachable predecessor DAG.
func NewPathBundle(res *spf.Result, src, dst string) (*PathBundle, error) {
	cost, ok := res.Costs[dst]
	if !ok {
		return nil, ErrDestinationUnreachable
	}

	pb := &PathBundle{Src: src, Dst: dst, Cost: cost, pred: map[string][]spf.Pred{}}
	if src == dst {
		return pb, nil
	}

	visited := map[string]bool{dst: true}
	queue := []string{dst}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, p := range res.Preds[node] {
			pb.pred[node] = append(pb.pred[node], p)
			if !visited[p.PrevNode] {
				visited[p.PrevNode] = true
				if p.PrevNode != src {
					queue = append(queue, p.PrevNode)
				}
			}
		}
	}

	return pb, nil
}

// Nodes returns every node in the bundle, sorted.
func (pb *PathBundle) Nodes() []string {
	set := map[string]bool{pb.Dst: true}
	for node, preds := range pb.pred {
		set[node] = true
		for _, p := range preds {
			set[p.PrevNode] = true
		}
	}
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)

	return out
}

// EdgeTuples returns every (from, to, edges) hop in the bundle.
func (pb *PathBundle) EdgeTuples() []EdgeTuple {
	var out []EdgeTuple
	for node, preds := range pb.pred {
		for _, p := range preds {
			out = append(out, EdgeTuple{From: p.PrevNode, To: node, Edges: append([]string(nil), p.Edges...)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})

	return out
}

// Edges returns every edge ID in the bundle, sorted.
func (pb *PathBundle) Edges() []string {
	var out []string
	for _, t := range pb.EdgeTuples() {
		out = append(out, t.Edges...)
	}
	sort.Strings(out)

	return out
}

// ContainsNode reports whether id is a member of the bundle.
func (pb *PathBundle) ContainsNode(id string) bool {
	for _, n := range pb.Nodes() {
		if n == id {
			return true
		}
	}

	return false
}

// ContainsEdge reports whether eid is a member of the bundle.
func (pb *PathBundle) ContainsEdge(eid string) bool {
	for _, e := range pb.Edges() {
		if e == eid {
			return true
		}
	}

	return false
}

// IsSubsetOf reports whether every edge of pb is also in other.
func (pb *PathBundle) IsSubsetOf(other *PathBundle) bool {
	otherEdges := map[string]bool{}
	for _, e := range other.Edges() {
		otherEdges[e] = true
	}
	for _, e := range pb.Edges() {
		if !otherEdges[e] {
			return false
		}
	}

	return true
}

// IsDisjointFrom reports whether pb and other share no edges.
func (pb *PathBundle) IsDisjointFrom(other *PathBundle) bool {
	otherEdges := map[string]bool{}
	for _, e := range other.Edges() {
		otherEdges[e] = true
	}
	for _, e := range pb.Edges() {
		if otherEdges[e] {
			return false
		}
	}

	return true
}
