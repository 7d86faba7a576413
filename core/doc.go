// Package core provides the directed multigraph that every other
// flowcore package operates on: Node, Edge, and Graph, with per-edge
// cost/capacity/flow and thread-safe mutation.
//
// Complexity summary:
//
//	Operation        Time         Space
//	AddNode          O(1)         O(1)
//	AddEdge          O(1)         O(1)
//	RemoveNode       O(V+E)       O(deg(v))
//	RemoveEdge       O(V+E)       O(1)
//	Nodes/Edges      O(n log n)   O(n)
//	Clone            O(V+E)       O(V+E)
//	ResetFlows       O(V+E)       O(1)
package core
