package flow

import (
	"math"
	"sort"

	"github.com/ngflow/flowcore/core"
)

// sortedKeys returns m's keys in ascending order, keeping traversal
// order independent of Go's randomized map iteration.
func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// reverseGraphData is the reversed-orientation working state built by
// initGraphData: one fresh residual structure per CalcGraphCapacity
// call, never backed by pointers into the caller's graph.
type reverseGraphData struct {
	succ     map[string]map[string][]string // forward adjacency: prevNode -> node -> edges
	levels   map[string]int
	residual map[string]map[string]float64 // residual capacity: node -> prevNode for Proportional, prevNode -> node for EqualBalanced
	flowDict map[string]map[string]float64 // reversed net flow
}

// initGraphData walks pred backward from dst (the forward destination,
// which becomes the reversed-graph source), building the forward
// successor map, residual capacities, and zeroed flow map.
func initGraphData(g *core.Graph, pred PredMap, dst string, placement Placement) *reverseGraphData {
	data := &reverseGraphData{
		succ:     map[string]map[string][]string{},
		levels:   map[string]int{},
		residual: map[string]map[string]float64{},
		flowDict: map[string]map[string]float64{},
	}

	ensure := func(m map[string]map[string]float64, a string) {
		if m[a] == nil {
			m[a] = map[string]float64{}
		}
	}

	visited := map[string]bool{}
	queue := []string{dst}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if visited[node] {
			continue
		}
		visited[node] = true
		if _, ok := data.levels[node]; !ok {
			data.levels[node] = -1
		}

		for adjNode, edgeList := range pred[node] {
			if data.succ[adjNode] == nil {
				data.succ[adjNode] = map[string][]string{}
			}
			if _, ok := data.succ[adjNode][node]; !ok {
				data.succ[adjNode][node] = edgeList
			}

			var capacities []float64
			for _, eid := range edgeList {
				e, err := g.GetEdge(eid)
				if err != nil {
					continue
				}
				c := e.Capacity - e.Flow
				if c < 0 {
					c = 0
				}
				capacities = append(capacities, c)
			}

			ensure(data.residual, node)
			ensure(data.residual, adjNode)
			ensure(data.flowDict, node)
			ensure(data.flowDict, adjNode)

			switch placement {
			case Proportional:
				var sum float64
				for _, c := range capacities {
					sum += c
				}
				if sum >= MinCap {
					data.residual[node][adjNode] = sum
				} else {
					data.residual[node][adjNode] = 0
				}
				data.residual[adjNode][node] = 0
			case EqualBalanced:
				if len(capacities) > 0 {
					min := capacities[0]
					for _, c := range capacities[1:] {
						if c < min {
							min = c
						}
					}
					revCap := min * float64(len(capacities))
					if revCap >= MinCap {
						data.residual[adjNode][node] = revCap
					} else {
						data.residual[adjNode][node] = 0
					}
				} else {
					data.residual[adjNode][node] = 0
				}
				data.residual[node][adjNode] = 0
			}

			data.flowDict[node][adjNode] = 0
			data.flowDict[adjNode][node] = 0

			if !visited[adjNode] {
				queue = append(queue, adjNode)
			}
		}
	}

	for _, n := range g.Nodes() {
		if data.succ[n.ID] == nil {
			data.succ[n.ID] = map[string][]string{}
		}
	}

	return data
}

// setLevelsBFS assigns Dinic levels in the reversed residual graph
// starting from start, considering only edges with residual >= MinCap.
func setLevelsBFS(start string, levels map[string]int, residual map[string]map[string]float64) {
	for nd := range levels {
		levels[nd] = -1
	}
	levels[start] = 0
	queue := []string{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range sortedKeys(residual[u]) {
			if residual[u][v] >= MinCap && levels[v] < 0 {
				levels[v] = levels[u] + 1
				queue = append(queue, v)
			}
		}
	}
}

// pushFlowDFS recursively pushes flow from current toward sink along
// the reversed level graph, only descending to nodes exactly one level
// deeper.
func pushFlowDFS(current, sink string, flowIn float64, residual, flowDict map[string]map[string]float64, levels map[string]int) float64 {
	if current == sink {
		return flowIn
	}

	var totalPushed float64
	for _, nxNode := range sortedKeys(residual[current]) {
		nxCap := residual[current][nxNode]
		if nxCap < MinCap {
			continue
		}
		if lv, ok := levels[nxNode]; !ok || lv != levels[current]+1 {
			continue
		}

		toPush := math.Min(flowIn, nxCap)
		if toPush < MinFlow {
			continue
		}

		pushed := pushFlowDFS(nxNode, sink, toPush, residual, flowDict, levels)
		if pushed >= MinFlow {
			residual[current][nxNode] -= pushed
			residual[nxNode][current] += pushed
			flowDict[current][nxNode] += pushed
			flowDict[nxNode][current] -= pushed

			flowIn -= pushed
			totalPushed += pushed

			if flowIn < MinFlow {
				break
			}
		}
	}

	return totalPushed
}

// equalBalanceBFS distributes a nominal flow of 1.0 from src over the
// forward adjacency succ, splitting equally among parallel edges.
func equalBalanceBFS(src string, succ map[string]map[string][]string, flowDict map[string]map[string]float64) {
	nodeSplit := map[string]int{}
	for node, neighbors := range succ {
		count := 0
		for _, edges := range neighbors {
			count += len(edges)
		}
		nodeSplit[node] = count
	}

	type item struct {
		node string
		flow float64
	}
	queue := []item{{src, 1.0}}
	visited := map[string]bool{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited[cur.node] = true

		splitCount := nodeSplit[cur.node]
		if splitCount <= 0 || cur.flow < MinFlow {
			continue
		}

		for _, nxt := range sortedKeys(succ[cur.node]) {
			edges := succ[cur.node][nxt]
			if len(edges) == 0 {
				continue
			}
			push := (cur.flow * float64(len(edges))) / float64(splitCount)
			if push < MinFlow {
				continue
			}

			flowDict[cur.node][nxt] += push
			flowDict[nxt][cur.node] -= push

			if !visited[nxt] {
				queue = append(queue, item{nxt, push})
			}
		}
	}
}

// CalcGraphCapacity computes the maximum feasible flow from src to dst
// given a forward predecessor map (as produced by spf.Run, converted
// via buildPredMap), and the net forward flow fraction contributed by
// each (node, adjNode) pair, normalized to sum to 1.0 across the
// augmenting structure.
//
// Complexity: O(V*E) worst case for the Dinic-like PROPORTIONAL pass;
// O(V+E) for EQUAL_BALANCED.
func CalcGraphCapacity(g *core.Graph, src, dst string, pred PredMap, placement Placement) (float64, map[string]map[string]float64, error) {
	if !g.HasNode(src) {
		return 0, nil, ErrSourceNotFound
	}
	if !g.HasNode(dst) {
		return 0, nil, ErrSinkNotFound
	}

	data := initGraphData(g, pred, dst, placement)
	var totalFlow float64

	switch placement {
	case Proportional:
		for {
			setLevelsBFS(dst, data.levels, data.residual)
			if lv, ok := data.levels[src]; !ok || lv <= 0 {
				break
			}
			pushed := pushFlowDFS(dst, src, math.Inf(1), data.residual, data.flowDict, data.levels)
			if pushed < MinFlow {
				break
			}
			totalFlow += pushed
		}

		if totalFlow < MinFlow {
			totalFlow = 0
			for u := range data.flowDict {
				for v := range data.flowDict[u] {
					data.flowDict[u][v] = 0
				}
			}
		} else {
			for u := range data.flowDict {
				for v := range data.flowDict[u] {
					data.flowDict[u][v] = -(data.flowDict[u][v] / totalFlow)
				}
			}
		}

	case EqualBalanced:
		equalBalanceBFS(src, data.succ, data.flowDict)

		minRatio := math.Inf(1)
		for u, neighbors := range data.succ {
			for v := range neighbors {
				assigned := data.flowDict[u][v]
				if assigned >= MinFlow && assigned > 0 {
					capUV := data.residual[u][v]
					ratio := capUV / assigned
					if ratio < minRatio {
						minRatio = ratio
					}
				}
			}
		}

		if math.IsInf(minRatio, 1) || minRatio < MinFlow {
			totalFlow = 0
		} else {
			totalFlow = minRatio
			for u := range data.flowDict {
				for v := range data.flowDict[u] {
					val := data.flowDict[u][v] * totalFlow
					if math.Abs(val) < MinFlow {
						val = 0
					}
					data.flowDict[u][v] = val
				}
			}
			for u := range data.flowDict {
				for v := range data.flowDict[u] {
					data.flowDict[u][v] /= totalFlow
				}
			}
		}

	default:
		return 0, nil, ErrUnsupportedPlacement
	}

	for u := range data.flowDict {
		for v := range data.flowDict[u] {
			if math.Abs(data.flowDict[u][v]) < MinFlow {
				data.flowDict[u][v] = 0
			}
		}
	}

	return totalFlow, data.flowDict, nil
}
