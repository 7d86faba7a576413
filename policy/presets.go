package policy

import (
	"errors"

	"github.com/ngflow/flowcore/edgeselect"
	"github.com/ngflow/flowcore/flow"
)

// ErrUnknownPreset is returned by NewPresetFlowPolicy for an
// unrecognized Preset value.
var ErrUnknownPreset = errors.New("policy: unknown preset")

// Preset names one of the five standard FlowPolicy configurations.
type Preset int

const (
	// ShortestPathsECMP: SPF, EqualBalanced, AllMinCost, multipath,
	// one flow. Models hop-by-hop ECMP IP forwarding.
	ShortestPathsECMP Preset = iota
	// ShortestPathsUCMP: SPF, Proportional, AllMinCost, multipath, one
	// flow. Models hop-by-hop UCMP IP forwarding.
	ShortestPathsUCMP
	// TEUCMPUnlimited: SPF, Proportional,
	// AllMinCostWithCapRemaining, single-path, unbounded flow count.
	// Models "ideal" TE with UCMP-split LSPs.
	TEUCMPUnlimited
	// TEECMPUpTo256LSP: SPF, EqualBalanced,
	// SingleMinCostWithCapRemainingLoadFactored, single-path, up to
	// 256 flows, reoptimized after each placement.
	TEECMPUpTo256LSP
	// TEECMP16LSP: same as TEECMPUpTo256LSP with exactly 16 flows.
	TEECMP16LSP
)

func intPtr(n int) *int { return &n }

// NewPresetFlowPolicy constructs a FlowPolicy pre-configured for one of
// the standard presets.
func NewPresetFlowPolicy(preset Preset) (*FlowPolicy, error) {
	switch preset {
	case ShortestPathsECMP:
		return NewFlowPolicy(Config{
			Placement:    flow.EqualBalanced,
			Select:       edgeselect.AllMinCost,
			Multipath:    true,
			MinFlowCount: 1,
			MaxFlowCount: intPtr(1),
		})
	case ShortestPathsUCMP:
		return NewFlowPolicy(Config{
			Placement:    flow.Proportional,
			Select:       edgeselect.AllMinCost,
			Multipath:    true,
			MinFlowCount: 1,
			MaxFlowCount: intPtr(1),
		})
	case TEUCMPUnlimited:
		return NewFlowPolicy(Config{
			Placement:    flow.Proportional,
			Select:       edgeselect.AllMinCostWithCapRemaining,
			Multipath:    false,
			MinFlowCount: 1,
		})
	case TEECMPUpTo256LSP:
		return NewFlowPolicy(Config{
			Placement:                      flow.EqualBalanced,
			Select:                         edgeselect.SingleMinCostWithCapRemainingLoadFactored,
			Multipath:                      false,
			MinFlowCount:                   1,
			MaxFlowCount:                   intPtr(256),
			ReoptimizeFlowsOnEachPlacement: true,
		})
	case TEECMP16LSP:
		return NewFlowPolicy(Config{
			Placement:                      flow.EqualBalanced,
			Select:                         edgeselect.SingleMinCostWithCapRemainingLoadFactored,
			Multipath:                      false,
			MinFlowCount:                   16,
			MaxFlowCount:                   intPtr(16),
			ReoptimizeFlowsOnEachPlacement: true,
		})
	default:
		return nil, ErrUnknownPreset
	}
}
