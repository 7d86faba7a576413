package edgeselect

import (
	"errors"
	"math"

	"github.com/ngflow/flowcore/core"
)

// ErrCustomFuncRequired is returned when Kind is Custom but no
// SelectFunc was supplied.
var ErrCustomFuncRequired = errors.New("edgeselect: Kind Custom requires SelectFunc")

// minCapEpsilon (2^-12) is the default remaining-capacity threshold
// below which an edge is treated as saturated for selection purposes.
const minCapEpsilon = 1.0 / 4096

// costTieTolerance is the absolute tolerance used to treat two edge
// costs as tied.
const costTieTolerance = 1e-12

// Kind enumerates the selection strategies. The zero value is
// AllMinCost.
type Kind int

const (
	// AllMinCost returns every edge at the minimum cost among all
	// candidates, ignoring capacity.
	AllMinCost Kind = iota
	// SingleMinCost returns exactly one edge: the first encountered
	// at the minimum cost.
	SingleMinCost
	// AllMinCostWithCapRemaining returns every edge at the minimum
	// cost among those with residual capacity >= MinCap.
	AllMinCostWithCapRemaining
	// AllAnyCostWithCapRemaining returns every edge with residual
	// capacity >= MinCap, regardless of cost (reporting the minimum
	// cost found among them).
	AllAnyCostWithCapRemaining
	// SingleMinCostWithCapRemaining returns exactly one edge: the
	// minimum-cost edge among those with residual capacity >= MinCap.
	SingleMinCostWithCapRemaining
	// SingleMinCostWithCapRemainingLoadFactored returns exactly one
	// edge, ranking by cost*100 + round(flow/capacity*10) among
	// edges with residual capacity >= MinCap.
	SingleMinCostWithCapRemainingLoadFactored
	// Custom dispatches to a caller-supplied SelectFunc.
	Custom
)

// SelectFunc is the signature a Custom selector must implement.
type SelectFunc func(edges []*core.Edge, excluded map[string]bool) (cost float64, chosen []string)

// Selector configures one edge-selection strategy.
type Selector struct {
	// Kind chooses the built-in strategy, or Custom.
	Kind Kind

	// MinCap overrides the default residual-capacity threshold
	// (minCapEpsilon) used by the *WithCapRemaining variants. Zero
	// means "use the default".
	MinCap float64

	// SelectFunc is required when Kind == Custom.
	SelectFunc SelectFunc
}

// Select evaluates the configured strategy over the parallel edges from
// one node to a neighbor, returning the hop's cost and the chosen edge
// IDs. excluded, when non-nil, removes edges from consideration
// entirely (used by KSP to forbid previously used edges).
func (s Selector) Select(edges []*core.Edge, excluded map[string]bool) (float64, []string, error) {
	minCap := s.MinCap
	if minCap == 0 {
		minCap = minCapEpsilon
	}

	switch s.Kind {
	case AllMinCost:
		cost, ids := allMinCost(edges, excluded)
		return cost, ids, nil
	case SingleMinCost:
		cost, ids := singleMinCost(edges, excluded)
		return cost, ids, nil
	case AllMinCostWithCapRemaining:
		cost, ids := allMinCostWithCap(edges, excluded, minCap)
		return cost, ids, nil
	case AllAnyCostWithCapRemaining:
		cost, ids := allAnyCostWithCap(edges, excluded, minCap)
		return cost, ids, nil
	case SingleMinCostWithCapRemaining:
		cost, ids := singleMinCostWithCap(edges, excluded, minCap)
		return cost, ids, nil
	case SingleMinCostWithCapRemainingLoadFactored:
		cost, ids := singleMinCostWithCapLoadFactored(edges, excluded, minCap)
		return cost, ids, nil
	case Custom:
		if s.SelectFunc == nil {
			return math.Inf(1), nil, ErrCustomFuncRequired
		}
		cost, ids := s.SelectFunc(edges, excluded)
		return cost, ids, nil
	default:
		return math.Inf(1), nil, ErrCustomFuncRequired
	}
}

func allMinCost(edges []*core.Edge, excluded map[string]bool) (float64, []string) {
	minCost := math.Inf(1)
	var ids []string
	for _, e := range edges {
		if excluded[e.ID] {
			continue
		}
		switch {
		case e.Cost < minCost:
			minCost = e.Cost
			ids = []string{e.ID}
		case math.Abs(e.Cost-minCost) <= costTieTolerance:
			ids = append(ids, e.ID)
		}
	}

	return minCost, ids
}

func singleMinCost(edges []*core.Edge, excluded map[string]bool) (float64, []string) {
	minCost := math.Inf(1)
	var chosen []string
	for _, e := range edges {
		if excluded[e.ID] {
			continue
		}
		if e.Cost < minCost {
			minCost = e.Cost
			chosen = []string{e.ID}
		}
	}

	return minCost, chosen
}

func allAnyCostWithCap(edges []*core.Edge, excluded map[string]bool, minCap float64) (float64, []string) {
	minCost := math.Inf(1)
	var ids []string
	for _, e := range edges {
		if excluded[e.ID] {
			continue
		}
		if e.ResidualCap() >= minCap {
			if e.Cost < minCost {
				minCost = e.Cost
			}
			ids = append(ids, e.ID)
		}
	}

	return minCost, ids
}

func allMinCostWithCap(edges []*core.Edge, excluded map[string]bool, minCap float64) (float64, []string) {
	minCost := math.Inf(1)
	var ids []string
	for _, e := range edges {
		if excluded[e.ID] {
			continue
		}
		if e.ResidualCap() >= minCap {
			switch {
			case e.Cost < minCost:
				minCost = e.Cost
				ids = []string{e.ID}
			case math.Abs(e.Cost-minCost) <= costTieTolerance:
				ids = append(ids, e.ID)
			}
		}
	}

	return minCost, ids
}

func singleMinCostWithCap(edges []*core.Edge, excluded map[string]bool, minCap float64) (float64, []string) {
	minCost := math.Inf(1)
	var chosen []string
	for _, e := range edges {
		if excluded[e.ID] {
			continue
		}
		if e.ResidualCap() >= minCap && e.Cost < minCost {
			minCost = e.Cost
			chosen = []string{e.ID}
		}
	}

	return minCost, chosen
}

func singleMinCostWithCapLoadFactored(edges []*core.Edge, excluded map[string]bool, minCap float64) (float64, []string) {
	minCostFactor := math.Inf(1)
	var chosen []string
	for _, e := range edges {
		if excluded[e.ID] {
			continue
		}
		if e.ResidualCap() < minCap {
			continue
		}
		baseCost := e.Cost * 100
		var loadFactor float64
		if e.Capacity != 0 {
			loadFactor = math.Round((e.Flow / e.Capacity) * 10)
		} else {
			loadFactor = 999999
		}
		costVal := baseCost + loadFactor
		if costVal < minCostFactor {
			minCostFactor = costVal
			chosen = []string{e.ID}
		}
	}

	return minCostFactor, chosen
}
