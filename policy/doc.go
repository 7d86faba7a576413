// Package policy converts a (source, sink, volume) demand into one or
// more tracked Flow objects placed on a Graph, subject to capacity
// constraints and a caller-chosen placement/path-selection strategy.
//
// A FlowPolicy owns a set of Flows and knows how to grow, shrink, and
// rebalance that set as volume is placed or removed; a Demand wraps a
// FlowPolicy with the bookkeeping (PlacedDemand, Status) needed to
// track one traffic matrix entry across repeated placement attempts.
//
// Complexity is dominated by the underlying path-finding (spf.Run) and
// flow placement (flow.PlaceFlow) calls; PlaceDemand itself runs in
// O(flows * spf) per call, bounded by a hard iteration guard
// (maxPolicyLoopIterations) against misconfigured policies that never
// converge.
package policy
