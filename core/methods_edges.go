// File: methods_edges.go
// Role: Edge lifecycle & queries: AddEdge/RemoveEdge/HasEdge/GetEdge/
//       Edges/EdgeCount/EdgesBetween, plus adjacency helpers and
//       nextEdgeIDStr().
// Determinism:
//   - Edges() returns edges sorted by Edge.ID asc.
//   - nextEdgeIDStr() is monotonic and stable ("e" + decimal).
// Concurrency:
//   - Mutations under muEdgeAdj write lock.
//   - Read queries under muEdgeAdj read lock.

package core

import (
	"sort"
	"strconv"
	"sync/atomic"
)

const edgeIDPrefix = 'e'

// AddEdge creates a new edge from→to with the given cost, applying any
// EdgeOptions (e.g. WithCapacity). Endpoints are created via AddNode if
// they do not already exist; use AddEdgeStrict when missing endpoints
// should be an error instead.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(from, to string, cost float64, opts ...EdgeOption) (string, error) {
	if from == "" || to == "" {
		return "", ErrEmptyNodeID
	}
	if cost < 0 {
		return "", ErrNegativeCost
	}
	if from == to && !g.allowLoops {
		return "", ErrLoopNotAllowed
	}

	if err := g.AddNode(from); err != nil {
		return "", err
	}
	if err := g.AddNode(to); err != nil {
		return "", err
	}

	e := &Edge{From: from, To: to, Cost: cost, Flows: make(map[FlowIndex]float64)}
	for _, opt := range opts {
		opt(e)
	}
	if e.Capacity < 0 {
		return "", ErrNegativeCapacity
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	e.ID = nextEdgeIDStr(g)
	g.edges[e.ID] = e
	ensureAdjacency(g, from, to)
	g.adjacencyList[from][to][e.ID] = struct{}{}

	return e.ID, nil
}

// AddEdgeStrict is like AddEdge but requires both endpoints to already
// exist, returning ErrNodeNotFound otherwise. Use this when topology
// construction must not silently create nodes.
func (g *Graph) AddEdgeStrict(from, to string, cost float64, opts ...EdgeOption) (string, error) {
	if !g.HasNode(from) || !g.HasNode(to) {
		return "", ErrNodeNotFound
	}

	return g.AddEdge(from, to, cost, opts...)
}

// AddEdgeWithID is like AddEdge but uses a caller-supplied edge ID,
// returning ErrDuplicateEdgeKey if it is already in use.
func (g *Graph) AddEdgeWithID(id, from, to string, cost, capacity float64) error {
	if id == "" || from == "" || to == "" {
		return ErrEmptyNodeID
	}
	if cost < 0 {
		return ErrNegativeCost
	}
	if capacity < 0 {
		return ErrNegativeCapacity
	}
	if from == to && !g.allowLoops {
		return ErrLoopNotAllowed
	}
	if err := g.AddNode(from); err != nil {
		return err
	}
	if err := g.AddNode(to); err != nil {
		return err
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	if _, ok := g.edges[id]; ok {
		return ErrDuplicateEdgeKey
	}
	e := &Edge{ID: id, From: from, To: to, Cost: cost, Capacity: capacity, Flows: make(map[FlowIndex]float64)}
	g.edges[id] = e
	ensureAdjacency(g, from, to)
	g.adjacencyList[from][to][id] = struct{}{}

	return nil
}

// RemoveEdge deletes one edge.
// Complexity: O(1) removal + O(V+E) cleanup, since the whole adjacency
// index is scanned for empty buckets on every call.
func (g *Graph) RemoveEdge(eid string) error {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	e, ok := g.edges[eid]
	if !ok {
		return ErrEdgeNotFound
	}
	delete(g.edges, eid)
	removeAdjacency(g, e)
	cleanupAdjacency(g)

	return nil
}

// RemoveEdgeKeyed removes exactly the edge eid, verifying that it runs
// from→to. Returns ErrEdgeNotFound if eid does not exist and
// ErrEdgeEndpointMismatch if it exists but connects a different node
// pair, rather than silently removing another edge.
func (g *Graph) RemoveEdgeKeyed(from, to, eid string) error {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	e, ok := g.edges[eid]
	if !ok {
		return ErrEdgeNotFound
	}
	if e.From != from || e.To != to {
		return ErrEdgeEndpointMismatch
	}
	delete(g.edges, eid)
	removeAdjacency(g, e)
	cleanupAdjacency(g)

	return nil
}

// RemoveEdgesBetween removes every edge from→to, returning how many
// were removed. Removing between nodes with no connecting edge is a
// no-op, not an error.
func (g *Graph) RemoveEdgesBetween(from, to string) int {
	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()
	bucket := g.adjacencyList[from][to]
	removed := 0
	for eid := range bucket {
		e := g.edges[eid]
		delete(g.edges, eid)
		removeAdjacency(g, e)
		removed++
	}
	cleanupAdjacency(g)

	return removed
}

// HasEdge reports whether at least one edge from→to exists.
// Complexity: O(1).
func (g *Graph) HasEdge(from, to string) bool {
	if from == "" || to == "" {
		return false
	}
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	return len(g.adjacencyList[from][to]) > 0
}

// GetEdge returns a pointer to the Edge with the given edgeID, or
// ErrEdgeNotFound. The returned *Edge must be treated as read-only by
// callers other than FlowPlacer.
// Complexity: O(1).
func (g *Graph) GetEdge(edgeID string) (*Edge, error) {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	e, ok := g.edges[edgeID]
	if !ok {
		return nil, ErrEdgeNotFound
	}

	return e, nil
}

// Edges returns all edges sorted by Edge.ID asc.
// Complexity: O(E log E).
func (g *Graph) Edges() []*Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]*Edge, 0, len(g.edges))
	var e *Edge
	for _, e = range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// EdgesBetween returns every edge id from→to, sorted, so that
// EdgeSelect strategies can enumerate the parallel-edge bundle.
// Complexity: O(k log k) where k is the bundle size.
func (g *Graph) EdgesBetween(from, to string) []string {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	inner := g.adjacencyList[from][to]
	out := make([]string, 0, len(inner))
	var eid string
	for eid = range inner {
		out = append(out, eid)
	}
	sort.Strings(out)

	return out
}

// Neighbors returns the distinct node IDs reachable via a direct edge
// from id, sorted.
// Complexity: O(deg(id) log deg(id)).
func (g *Graph) Neighbors(id string) []string {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]string, 0, len(g.adjacencyList[id]))
	var to string
	for to = range g.adjacencyList[id] {
		out = append(out, to)
	}
	sort.Strings(out)

	return out
}

// EdgeCount returns total number of edges.
// Complexity: O(1).
func (g *Graph) EdgeCount() int {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	return len(g.edges)
}

// nextEdgeIDStr returns a new unique textual edge ID ("e1", "e2", ...).
// Avoids fmt.Sprintf to keep AddEdge allocation-light.
func nextEdgeIDStr(g *Graph) string {
	n := atomic.AddUint64(&g.nextEdgeID, 1)
	buf := make([]byte, 0, 1+20)
	buf = append(buf, edgeIDPrefix)
	buf = strconv.AppendUint(buf, n, 10)

	return string(buf)
}

// ensureAdjacency lazily initializes the nested adjacency maps for from.
// Caller must hold muEdgeAdj.
func ensureAdjacency(g *Graph, from, to string) {
	if g.adjacencyList[from] == nil {
		g.adjacencyList[from] = make(map[string]map[string]struct{})
	}
	if g.adjacencyList[from][to] == nil {
		g.adjacencyList[from][to] = make(map[string]struct{})
	}
}

// removeAdjacency deletes e's entry from the adjacency index.
// Caller must hold muEdgeAdj.
func removeAdjacency(g *Graph, e *Edge) {
	if inner, ok := g.adjacencyList[e.From]; ok {
		if bucket, ok2 := inner[e.To]; ok2 {
			delete(bucket, e.ID)
		}
	}
}

// cleanupAdjacency prunes empty inner maps left behind by removals.
// Caller must hold muEdgeAdj.
func cleanupAdjacency(g *Graph) {
	for from, inner := range g.adjacencyList {
		for to, bucket := range inner {
			if len(bucket) == 0 {
				delete(inner, to)
			}
		}
		if len(inner) == 0 {
			delete(g.adjacencyList, from)
		}
	}
}
