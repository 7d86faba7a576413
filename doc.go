// Package flowcore is a network flow engine for multigraphs with
// per-edge cost and capacity.
//
// It brings together:
//
//   - core       — thread-safe directed multigraph with cost/capacity/flow
//   - edgeselect — pluggable edge-selection strategies for path-finding
//   - spf        — shortest-path-first (ECMP-aware Dijkstra) and Yen's KSP
//   - pathresolver — path bundle derivation and DAG-to-paths expansion
//   - flow       — max-flow capacity calculation and flow placement
//   - policy     — stateful demand-to-flow placement policies
//
// Under the hood, flow is placed and removed against a core.Graph's
// cost/capacity/flow attributes; every algorithm package operates on a
// *core.Graph passed in by the caller rather than owning its own copy.
//
//	go get github.com/ngflow/flowcore
package flowcore
