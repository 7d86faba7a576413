// Package flow computes feasible flow capacity between two nodes of a
// core.Graph and places (or removes) concrete flow along the resulting
// paths, using either a reversed-orientation Dinic-style blocking-flow
// algorithm (PROPORTIONAL) or a nominal-flow BFS distribution scaled to
// fit capacity (EQUAL_BALANCED).
//
// MaxFlow repeatedly augments along shortest capacity-constrained paths
// until no further flow can be placed, mirroring Ford-Fulkerson driven
// by spf rather than a single specialized max-flow algorithm; this
// keeps edge-selection (cost, ECMP, capacity) pluggable between calls.
//
// Complexity summary:
//
//	Function            Time                          Space
//	CalcGraphCapacity   O(V*E) worst case (Dinic-like) O(V+E)
//	PlaceFlow           O(V+E)                         O(V+E)
//	MaxFlow             O(augmentations * (V+E)log V)  O(V+E)
package flow
