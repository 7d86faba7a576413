package edgeselect_test

import (
	"math"
	"testing"

	"github.com/ngflow/flowcore/core"
	"github.com/ngflow/flowcore/edgeselect"
	"github.com/stretchr/testify/require"
)

func edges(specs ...[3]float64) []*core.Edge {
	out := make([]*core.Edge, len(specs))
	for i, s := range specs {
		out[i] = &core.Edge{ID: string(rune('a' + i)), Cost: s[0], Capacity: s[1], Flow: s[2]}
	}

	return out
}

func TestAllMinCost(t *testing.T) {
	es := edges([3]float64{1, 0, 0}, [3]float64{1, 0, 0}, [3]float64{2, 0, 0})
	sel := edgeselect.Selector{Kind: edgeselect.AllMinCost}
	cost, ids, err := sel.Select(es, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, cost)
	require.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestSingleMinCost(t *testing.T) {
	es := edges([3]float64{2, 0, 0}, [3]float64{1, 0, 0})
	sel := edgeselect.Selector{Kind: edgeselect.SingleMinCost}
	cost, ids, err := sel.Select(es, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, cost)
	require.Equal(t, []string{"b"}, ids)
}

func TestAllMinCostWithCapRemaining_ExcludesSaturated(t *testing.T) {
	es := edges([3]float64{1, 5, 5}, [3]float64{1, 5, 0})
	sel := edgeselect.Selector{Kind: edgeselect.AllMinCostWithCapRemaining}
	_, ids, err := sel.Select(es, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids)
}

func TestAllAnyCostWithCapRemaining_IgnoresCost(t *testing.T) {
	es := edges([3]float64{2, 5, 0}, [3]float64{1, 5, 5})
	sel := edgeselect.Selector{Kind: edgeselect.AllAnyCostWithCapRemaining}
	cost, ids, err := sel.Select(es, nil)
	require.NoError(t, err)
	require.Equal(t, 2.0, cost)
	require.Equal(t, []string{"a"}, ids)
}

func TestSingleMinCostWithCapRemaining_PicksCheapestWithHeadroom(t *testing.T) {
	es := edges([3]float64{1, 5, 5}, [3]float64{2, 5, 0})
	sel := edgeselect.Selector{Kind: edgeselect.SingleMinCostWithCapRemaining}
	cost, ids, err := sel.Select(es, nil)
	require.NoError(t, err)
	require.Equal(t, 2.0, cost)
	require.Equal(t, []string{"b"}, ids)
}

func TestLoadFactored_ZeroCapacityEdgeExcluded(t *testing.T) {
	es := edges([3]float64{1, 0, 0})
	sel := edgeselect.Selector{Kind: edgeselect.SingleMinCostWithCapRemainingLoadFactored}
	_, ids, err := sel.Select(es, nil)
	require.NoError(t, err)
	require.Empty(t, ids) // zero capacity never clears residual >= minCap
}

func TestCustom_RequiresFunc(t *testing.T) {
	sel := edgeselect.Selector{Kind: edgeselect.Custom}
	_, _, err := sel.Select(nil, nil)
	require.ErrorIs(t, err, edgeselect.ErrCustomFuncRequired)
}

func TestLoadFactored_PrefersLessLoadedAtEqualCost(t *testing.T) {
	// cost*100 + round(flow/capacity*10): edge a scores 100+8, edge b 100+2.
	es := edges([3]float64{1, 10, 8}, [3]float64{1, 10, 2})
	sel := edgeselect.Selector{Kind: edgeselect.SingleMinCostWithCapRemainingLoadFactored}
	_, ids, err := sel.Select(es, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, ids)
}

func TestSelect_ExcludedEdgesAreInvisible(t *testing.T) {
	es := edges([3]float64{1, 5, 0}, [3]float64{2, 5, 0})
	sel := edgeselect.Selector{Kind: edgeselect.AllMinCost}
	cost, ids, err := sel.Select(es, map[string]bool{"a": true})
	require.NoError(t, err)
	require.Equal(t, 2.0, cost)
	require.Equal(t, []string{"b"}, ids)
}

func TestSelect_AllCandidatesExcludedReturnsInfinity(t *testing.T) {
	es := edges([3]float64{1, 5, 0})
	sel := edgeselect.Selector{Kind: edgeselect.AllMinCost}
	cost, ids, err := sel.Select(es, map[string]bool{"a": true})
	require.NoError(t, err)
	require.True(t, math.IsInf(cost, 1))
	require.Empty(t, ids)
}
