package pathresolver

import "github.com/ngflow/flowcore/spf"

// forwardHop is one outgoing hop discovered by inverting pb.pred.
type forwardHop struct {
	next  string
	edges []string
}

// buildForward inverts the bundle's backward predecessor map into a
// forward adjacency suitable for stack-based expansion from Src.
func (pb *PathBundle) buildForward() map[string][]forwardHop {
	fwd := map[string][]forwardHop{}
	for node, preds := range pb.pred {
		for _, p := range preds {
			fwd[p.PrevNode] = append(fwd[p.PrevNode], forwardHop{next: node, edges: p.Edges})
		}
	}

	return fwd
}

// frame is one entry of the explicit backtracking stack used by
// ResolvePaths, avoiding recursion so arbitrarily long bundles cannot
// overflow the call stack.
type frame struct {
	node string
	path spf.Path
}

// ResolvePaths expands a PathBundle into its constituent simple paths
// from Src to Dst, via an explicit stack (no recursion) with a seen set
// guarding against unexpected cycles. When splitParallelEdges is true,
// every parallel edge within a hop yields a separate path (Cartesian
// expansion over bundles); otherwise each hop keeps its full parallel
// edge list as one PathElement.
//
// Complexity: O(P * L) where P is the number of resolved paths and L
// the path length; exponential in the worst ECMP fan-out case.
func ResolvePaths(pb *PathBundle, splitParallelEdges bool) ([]spf.Path, error) {
	if pb.Src == pb.Dst {
		return []spf.Path{{{Node: pb.Src}}}, nil
	}

	fwd := pb.buildForward()
	var results []spf.Path

	stack := []frame{{node: pb.Src, path: spf.Path{{Node: pb.Src}}}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.node == pb.Dst {
			results = append(results, cur.path)
			continue
		}

		// seen holds the nodes already on this path; a hop back to one
		// of them would close a cycle.
		seen := make(map[string]bool, len(cur.path))
		for _, el := range cur.path {
			seen[el.Node] = true
		}

		for _, hop := range fwd[cur.node] {
			if seen[hop.next] {
				continue
			}
			if splitParallelEdges {
				for _, eid := range hop.edges {
					nextPath := extendPath(cur.path, hop.next, []string{eid})
					stack = append(stack, frame{node: hop.next, path: nextPath})
				}
			} else {
				nextPath := extendPath(cur.path, hop.next, hop.edges)
				stack = append(stack, frame{node: hop.next, path: nextPath})
			}
		}
	}

	return results, nil
}

// extendPath returns a copy of path with its last element's Edges set
// to edges and a new terminal element for next appended.
func extendPath(path spf.Path, next string, edges []string) spf.Path {
	out := make(spf.Path, len(path), len(path)+1)
	copy(out, path)
	out[len(out)-1].Edges = edges
	out = append(out, spf.PathElement{Node: next})

	return out
}
