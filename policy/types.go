package policy

import (
	"errors"

	"github.com/ngflow/flowcore/edgeselect"
	"github.com/ngflow/flowcore/flow"
	"github.com/ngflow/flowcore/pathresolver"
)

// ErrStaticPathCountMismatch is returned when MaxFlowCount is set
// explicitly and disagrees with the number of supplied static paths.
var ErrStaticPathCountMismatch = errors.New("policy: max flow count must equal the number of static paths")

// ErrMaxFlowCountRequired is returned when EqualBalanced placement is
// requested without a bounded MaxFlowCount.
var ErrMaxFlowCountRequired = errors.New("policy: max flow count must be set for EqualBalanced placement")

// ErrStaticPathEndpointMismatch is returned when a static path's
// src/dst does not match the demand being placed.
var ErrStaticPathEndpointMismatch = errors.New("policy: static path src/dst does not match demand")

// ErrPolicyLoop is returned when PlaceDemand exceeds its hard
// iteration guard, signaling a policy configuration that never
// converges (e.g. a selector/placement combination that never
// exhausts volume or flows).
var ErrPolicyLoop = errors.New("policy: exceeded maximum placement iterations")

// ErrNoPolicyAttached is returned by Demand.Place when no FlowPolicy
// has been attached to the demand.
var ErrNoPolicyAttached = errors.New("policy: demand has no attached FlowPolicy")

// ErrInvalidSelectorConfig is returned when a Config names an
// unsupported or incomplete edge-selection setup.
var ErrInvalidSelectorConfig = errors.New("policy: invalid edge selector configuration")

// maxPolicyLoopIterations bounds PlaceDemand's flow queue loop; a
// policy that exceeds it is misconfigured, not slow.
const maxPolicyLoopIterations = 10000

// Config configures one FlowPolicy. Build it with DefaultConfig and
// functional With* options, following the package's With-option idiom.
type Config struct {
	// Placement selects how volume is distributed among a flow's
	// parallel equal-cost edges.
	Placement flow.Placement
	// Select chooses the edge-selection strategy SPF uses when
	// finding paths for new or re-optimized flows.
	Select edgeselect.Kind
	// SelectFunc is required when Select == edgeselect.Custom.
	SelectFunc edgeselect.SelectFunc
	// SelectMinCap overrides the default residual-capacity threshold
	// used by capacity-aware selectors.
	SelectMinCap float64
	// Multipath allows SPF to record multiple ECMP predecessors per
	// hop; false restricts each hop to a single predecessor.
	Multipath bool
	// MinFlowCount is the number of flows created up front for a new
	// demand (ignored when StaticPaths is set).
	MinFlowCount int
	// MaxFlowCount bounds how many flows a demand may grow to. Nil
	// means unbounded.
	MaxFlowCount *int
	// MaxPathCost rejects any candidate path whose cost exceeds this
	// absolute bound. Nil disables the bound.
	MaxPathCost *float64
	// MaxPathCostFactor rejects any candidate path whose cost exceeds
	// BestPathCost * MaxPathCostFactor. Nil disables the bound.
	MaxPathCostFactor *float64
	// StaticPaths, if set, forces every flow of a demand onto one of
	// these precomputed bundles instead of running path-finding.
	StaticPaths []*pathresolver.PathBundle
	// ReoptimizeFlowsOnEachPlacement re-runs path-finding for every
	// flow after each PlaceDemand call, seeking a fresher solution.
	ReoptimizeFlowsOnEachPlacement bool
}

// Option is a functional option for configuring a Config.
type Option func(*Config)

// DefaultConfig returns a Config with sensible defaults: Proportional
// placement, AllMinCost selection, single-path SPF, one initial flow
// per demand, no upper bound on the flow count.
func DefaultConfig() Config {
	return Config{
		Placement:    flow.Proportional,
		Select:       edgeselect.AllMinCost,
		Multipath:    false,
		MinFlowCount: 1,
	}
}

// WithPlacement sets the flow placement strategy.
func WithPlacement(p flow.Placement) Option {
	return func(c *Config) { c.Placement = p }
}

// WithEdgeSelect sets the edge-selection strategy.
func WithEdgeSelect(k edgeselect.Kind) Option {
	return func(c *Config) { c.Select = k }
}

// WithEdgeSelectFunc supplies a custom selector, implying Select ==
// edgeselect.Custom.
func WithEdgeSelectFunc(fn edgeselect.SelectFunc) Option {
	return func(c *Config) {
		c.Select = edgeselect.Custom
		c.SelectFunc = fn
	}
}

// WithEdgeSelectMinCap overrides the capacity-aware selectors'
// residual-capacity threshold.
func WithEdgeSelectMinCap(minCap float64) Option {
	return func(c *Config) { c.SelectMinCap = minCap }
}

// WithMultipath enables ECMP-aware SPF (multiple tied predecessors per
// hop).
func WithMultipath(b bool) Option {
	return func(c *Config) { c.Multipath = b }
}

// WithMinFlowCount sets how many flows are created up front for a new
// demand.
func WithMinFlowCount(n int) Option {
	return func(c *Config) { c.MinFlowCount = n }
}

// WithMaxFlowCount bounds the number of flows a demand may grow to.
func WithMaxFlowCount(n int) Option {
	return func(c *Config) { c.MaxFlowCount = &n }
}

// WithMaxPathCost rejects candidate paths costing more than max.
func WithMaxPathCost(max float64) Option {
	return func(c *Config) { c.MaxPathCost = &max }
}

// WithMaxPathCostFactor rejects candidate paths costing more than
// factor * BestPathCost.
func WithMaxPathCostFactor(factor float64) Option {
	return func(c *Config) { c.MaxPathCostFactor = &factor }
}

// WithStaticPaths forces every flow onto one of the given precomputed
// bundles; MaxFlowCount is implicitly set to len(paths).
func WithStaticPaths(paths ...*pathresolver.PathBundle) Option {
	return func(c *Config) { c.StaticPaths = paths }
}

// WithReoptimizeOnEachPlacement enables a re-optimization pass over
// every flow after each PlaceDemand call.
func WithReoptimizeOnEachPlacement() Option {
	return func(c *Config) { c.ReoptimizeFlowsOnEachPlacement = true }
}
