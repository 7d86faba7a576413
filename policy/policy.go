package policy

import (
	"math"
	"sort"

	"github.com/ngflow/flowcore/core"
	"github.com/ngflow/flowcore/edgeselect"
	"github.com/ngflow/flowcore/flow"
	"github.com/ngflow/flowcore/pathresolver"
	"github.com/ngflow/flowcore/spf"
)

// FlowPolicy converts a (src, dst, volume) demand into one or more Flow
// objects realized on a Graph, subject to the capacity constraints of
// the graph and the path-selection/placement strategy in Config.
//
// A FlowPolicy is not safe for concurrent use; callers placing several
// demands concurrently must use independent Graph/FlowPolicy pairs.
type FlowPolicy struct {
	// Config holds this policy's immutable placement configuration.
	Config Config

	flows []core.FlowIndex // insertion order, doubles as the processing queue seed
	byIdx map[core.FlowIndex]*Flow

	bestPathCost *float64
	nextFlowSeq  int
}

// NewFlowPolicy validates cfg and constructs an empty FlowPolicy.
//
// Returns ErrInvalidSelectorConfig if cfg.Select is Custom with no
// SelectFunc, ErrStaticPathCountMismatch if cfg.MaxFlowCount disagrees
// with len(cfg.StaticPaths), or ErrMaxFlowCountRequired if
// cfg.Placement is EqualBalanced with no bound on flow count.
func NewFlowPolicy(cfg Config) (*FlowPolicy, error) {
	if cfg.Select == edgeselect.Custom && cfg.SelectFunc == nil {
		return nil, ErrInvalidSelectorConfig
	}

	if len(cfg.StaticPaths) > 0 {
		if cfg.MaxFlowCount != nil && *cfg.MaxFlowCount != len(cfg.StaticPaths) {
			return nil, ErrStaticPathCountMismatch
		}
		n := len(cfg.StaticPaths)
		cfg.MaxFlowCount = &n
	}

	if cfg.Placement == flow.EqualBalanced && cfg.MaxFlowCount == nil {
		return nil, ErrMaxFlowCountRequired
	}

	return &FlowPolicy{
		Config: cfg,
		byIdx:  map[core.FlowIndex]*Flow{},
	}, nil
}

// FlowCount returns the number of flows currently tracked.
func (fp *FlowPolicy) FlowCount() int { return len(fp.byIdx) }

// Flows returns the tracked flows, keyed by FlowIndex. The returned map
// is owned by the policy; callers must not mutate it.
func (fp *FlowPolicy) Flows() map[core.FlowIndex]*Flow { return fp.byIdx }

// PlacedDemand sums PlacedFlow across every tracked flow.
func (fp *FlowPolicy) PlacedDemand() float64 {
	var total float64
	for _, f := range fp.byIdx {
		total += f.PlacedFlow
	}

	return total
}

func (fp *FlowPolicy) newFlowIndex(src, dst string, class int) core.FlowIndex {
	idx := core.FlowIndex{Src: src, Dst: dst, Class: class, Seq: fp.nextFlowSeq}
	fp.nextFlowSeq++

	return idx
}

func (fp *FlowPolicy) register(idx core.FlowIndex, f *Flow) {
	fp.byIdx[idx] = f
	fp.flows = append(fp.flows, idx)
}

// selectorFor builds the Selector this policy's path-finding uses,
// overriding the residual-capacity threshold with minFlow when given
// so a re-optimized flow only accepts paths with enough headroom.
func (fp *FlowPolicy) selectorFor(minFlow *float64) edgeselect.Selector {
	sel := edgeselect.Selector{Kind: fp.Config.Select, SelectFunc: fp.Config.SelectFunc}
	if minFlow != nil {
		sel.MinCap = *minFlow
	} else if fp.Config.SelectMinCap != 0 {
		sel.MinCap = fp.Config.SelectMinCap
	}

	return sel
}

// getPathBundle runs SPF from src under this policy's selector and
// returns the resulting PathBundle to dst, enforcing MaxPathCost and
// MaxPathCostFactor. Returns (nil, nil) when dst is unreachable or the
// reachable cost exceeds the configured bound — unreachability is a
// normal outcome, not an error.
func (fp *FlowPolicy) getPathBundle(g *core.Graph, src, dst string, minFlow *float64, excludedEdges, excludedNodes map[string]bool) (*pathresolver.PathBundle, error) {
	res, err := spf.Run(g, src, fp.selectorFor(minFlow), fp.Config.Multipath, excludedEdges, excludedNodes)
	if err != nil {
		return nil, err
	}

	dstCost, ok := res.Costs[dst]
	if !ok {
		return nil, nil
	}

	if fp.bestPathCost == nil || dstCost < *fp.bestPathCost {
		fp.bestPathCost = &dstCost
	}

	if fp.Config.MaxPathCost != nil || fp.Config.MaxPathCostFactor != nil {
		bound := math.Inf(1)
		if fp.Config.MaxPathCost != nil {
			bound = *fp.Config.MaxPathCost
		}
		if fp.Config.MaxPathCostFactor != nil {
			bound = math.Min(bound, *fp.bestPathCost**fp.Config.MaxPathCostFactor)
		}
		if dstCost > bound {
			return nil, nil
		}
	}

	return pathresolver.NewPathBundle(res, src, dst)
}

// createFlow finds one new path bundle and registers a Flow for it.
// Returns (nil, nil) when no admissible path exists.
func (fp *FlowPolicy) createFlow(g *core.Graph, src, dst string, class int, minFlow *float64) (*Flow, error) {
	pb, err := fp.getPathBundle(g, src, dst, minFlow, nil, nil)
	if err != nil {
		return nil, err
	}
	if pb == nil {
		return nil, nil
	}

	idx := fp.newFlowIndex(src, dst, class)
	f := newFlow(pb, idx, map[string]bool{}, map[string]bool{})
	fp.register(idx, f)

	return f, nil
}

// createInitialFlows populates an empty policy's flow set: one Flow per
// StaticPaths entry if configured, otherwise MinFlowCount freshly
// path-found flows.
func (fp *FlowPolicy) createInitialFlows(g *core.Graph, src, dst string, class int, minFlow *float64) error {
	if len(fp.Config.StaticPaths) > 0 {
		for _, pb := range fp.Config.StaticPaths {
			if pb.Src != src || pb.Dst != dst {
				return ErrStaticPathEndpointMismatch
			}
			idx := fp.newFlowIndex(src, dst, class)
			fp.register(idx, newFlow(pb, idx, map[string]bool{}, map[string]bool{}))
		}

		return nil
	}

	for i := 0; i < fp.Config.MinFlowCount; i++ {
		if _, err := fp.createFlow(g, src, dst, class, minFlow); err != nil {
			return err
		}
	}

	return nil
}

// sameEdgeSet reports whether a and b traverse exactly the same set of
// edge IDs, used to detect a no-op re-optimization.
func sameEdgeSet(a, b *pathresolver.PathBundle) bool {
	ea, eb := a.Edges(), b.Edges()
	if len(ea) != len(eb) {
		return false
	}
	sort.Strings(ea)
	sort.Strings(eb)
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}

	return true
}

// reoptimizeFlow removes idx's current placement, searches for a
// strictly better path with headroom additional volume, and either
// swaps in the better PathBundle (restoring the flow's volume on it)
// or reverts to the original placement when no better path is found.
//
// Returns the replacement Flow on success, or (nil, nil) when the flow
// reverted (not an error).
func (fp *FlowPolicy) reoptimizeFlow(g *core.Graph, idx core.FlowIndex, headroom float64) (*Flow, error) {
	f := fp.byIdx[idx]
	volume := f.PlacedFlow
	minVolume := volume + headroom
	f.removeFlow(g)

	pb, err := fp.getPathBundle(g, f.PathBundle.Src, f.PathBundle.Dst, &minVolume, f.ExcludedEdges, f.ExcludedNodes)
	if err != nil {
		return nil, err
	}

	if pb == nil || sameEdgeSet(pb, f.PathBundle) {
		f.placeFlow(g, volume, fp.Config.Placement)

		return nil, nil
	}

	newF := newFlow(pb, idx, f.ExcludedEdges, f.ExcludedNodes)
	newF.placeFlow(g, volume, fp.Config.Placement)
	fp.byIdx[idx] = newF

	return newF, nil
}

// PlaceDemand places up to volume units of traffic from src to dst
// under class, creating, reusing, and re-optimizing flows as needed.
// targetVolume, if non-nil, caps the volume any single flow is asked to
// carry (defaults to volume); minFlow, if non-nil, seeds the initial
// path search's capacity threshold.
//
// Returns the total volume actually placed this call and the volume
// that remains unplaced. Fails with ErrPolicyLoop if the placement loop
// exceeds its hard iteration guard (a misconfigured policy that never
// converges), or with ErrStaticPathEndpointMismatch if StaticPaths
// don't match (src, dst).
//
// Complexity: O(flows_created * spf) where spf is O((V+E) log V).
func (fp *FlowPolicy) PlaceDemand(g *core.Graph, src, dst string, class int, volume float64, targetVolume *float64, minFlow *float64) (float64, float64, error) {
	if len(fp.byIdx) == 0 {
		if err := fp.createInitialFlows(g, src, dst, class, minFlow); err != nil {
			return 0, volume, err
		}
	}

	target := volume
	if targetVolume != nil {
		target = *targetVolume
	}

	queue := append([]core.FlowIndex(nil), fp.flows...)
	var totalPlaced float64
	iterations := 0

	for volume >= flow.MinFlow && len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		f := fp.byIdx[idx]

		placed, _ := f.placeFlow(g, math.Min(target, volume), fp.Config.Placement)
		volume -= placed
		totalPlaced += placed

		if target-f.PlacedFlow >= flow.MinFlow && len(fp.Config.StaticPaths) == 0 {
			var newF *Flow
			var err error
			if fp.Config.MaxFlowCount == nil || len(fp.byIdx) < *fp.Config.MaxFlowCount {
				newF, err = fp.createFlow(g, src, dst, class, nil)
			} else {
				newF, err = fp.reoptimizeFlow(g, idx, flow.MinFlow)
			}
			if err != nil {
				return totalPlaced, volume, err
			}
			if newF != nil {
				queue = append(queue, newF.Index)
			}
		}

		iterations++
		if iterations > maxPolicyLoopIterations {
			return totalPlaced, volume, ErrPolicyLoop
		}
	}

	if fp.Config.Placement == flow.EqualBalanced && len(fp.byIdx) > 0 {
		perFlow := fp.PlacedDemand() / float64(len(fp.byIdx))
		rebalanceNeeded := false
		for _, f := range fp.byIdx {
			if math.Abs(perFlow-f.PlacedFlow) >= flow.MinFlow {
				rebalanceNeeded = true

				break
			}
		}
		if rebalanceNeeded {
			placedAfter, excess, err := fp.rebalanceDemand(g, src, dst, class, perFlow)
			if err != nil {
				return totalPlaced, volume, err
			}
			totalPlaced = placedAfter
			volume += excess
		}
	}

	if fp.Config.ReoptimizeFlowsOnEachPlacement {
		for idx := range fp.byIdx {
			if _, err := fp.reoptimizeFlow(g, idx, 0); err != nil {
				return totalPlaced, volume, err
			}
		}
	}

	return totalPlaced, volume, nil
}

// rebalanceDemand removes every flow's graph contribution (keeping the
// Flow objects) and re-enters PlaceDemand with the saved aggregate
// volume and a per-flow target, used to restore equal per-flow volumes
// after EqualBalanced placement drifts apart.
func (fp *FlowPolicy) rebalanceDemand(g *core.Graph, src, dst string, class int, targetPerFlow float64) (float64, float64, error) {
	volume := fp.PlacedDemand()
	fp.RemoveDemand(g)

	return fp.PlaceDemand(g, src, dst, class, volume, &targetPerFlow, nil)
}

// RemoveDemand zeroes every tracked flow's contribution to g but keeps
// the Flow objects (and their PathBundles) for subsequent re-placement.
func (fp *FlowPolicy) RemoveDemand(g *core.Graph) {
	for _, f := range fp.byIdx {
		f.removeFlow(g)
	}
}
