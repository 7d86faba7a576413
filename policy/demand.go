package policy

import (
	"math"

	"github.com/ngflow/flowcore/core"
)

// demandEpsilon is the threshold below which placed/remaining demand is
// treated as zero, matching MIN_FLOW = 2**-12.
const demandEpsilon = 1.0 / 4096

// DemandStatus derives a Demand's placement state from its volume and
// cumulative placed_demand.
type DemandStatus int

const (
	// DemandNotPlaced means placed_demand < epsilon.
	DemandNotPlaced DemandStatus = iota
	// DemandPartial means some but not all of volume has been placed.
	DemandPartial
	// DemandPlaced means volume - placed_demand < epsilon.
	DemandPlaced
)

// String renders the status for logging/debugging.
func (s DemandStatus) String() string {
	switch s {
	case DemandNotPlaced:
		return "NOT_PLACED"
	case DemandPlaced:
		return "PLACED"
	default:
		return "PARTIAL"
	}
}

// Demand is a (src, dst, volume) traffic matrix entry realized through
// an attached FlowPolicy's Flows. The same FlowPolicy may in principle
// back several Demands, but the typical usage is one policy per demand.
type Demand struct {
	Src, Dst string
	Volume   float64
	Class    int

	// Policy is the FlowPolicy that realizes this demand. Place fails
	// with ErrNoPolicyAttached when nil.
	Policy *FlowPolicy

	// PlacedDemand is the cumulative volume placed across all Place
	// calls so far.
	PlacedDemand float64
}

// NewDemand constructs a Demand with zero PlacedDemand and no attached
// policy; set Policy before calling Place.
func NewDemand(src, dst string, volume float64, class int) *Demand {
	return &Demand{Src: src, Dst: dst, Volume: volume, Class: class}
}

// Status derives the demand's current placement state.
func (d *Demand) Status() DemandStatus {
	switch {
	case d.PlacedDemand < demandEpsilon:
		return DemandNotPlaced
	case d.Volume-d.PlacedDemand < demandEpsilon:
		return DemandPlaced
	default:
		return DemandPartial
	}
}

// Place attempts to place up to
//
//	min(Volume - PlacedDemand, maxPlacement, Volume * maxFraction)
//
// of this demand's remaining volume via the attached Policy, updating
// PlacedDemand from the policy's new total.
//
// As a special case, maxFraction == 0 with an infinite Volume places
// the entire (infinite) volume; maxFraction == 0 with a finite Volume
// places nothing. maxPlacement, when nil, imposes no additional cap.
//
// Returns the volume placed by this call and the volume that remains
// unplaced. Fails with ErrNoPolicyAttached if Policy is nil.
func (d *Demand) Place(g *core.Graph, maxFraction float64, maxPlacement *float64) (float64, float64, error) {
	if d.Policy == nil {
		return 0, 0, ErrNoPolicyAttached
	}

	toPlace := d.Volume - d.PlacedDemand
	if maxPlacement != nil {
		toPlace = math.Min(toPlace, *maxPlacement)
	}

	if maxFraction > 0 {
		toPlace = math.Min(toPlace, d.Volume*maxFraction)
	} else if math.IsInf(d.Volume, 1) {
		toPlace = d.Volume
	} else {
		toPlace = 0
	}

	if _, _, err := d.Policy.PlaceDemand(g, d.Src, d.Dst, d.Class, toPlace, nil, nil); err != nil {
		return 0, 0, err
	}

	placed := d.Policy.PlacedDemand() - d.PlacedDemand
	d.PlacedDemand = d.Policy.PlacedDemand()
	remaining := toPlace - placed

	return placed, remaining, nil
}
