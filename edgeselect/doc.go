// Package edgeselect implements the edge-selection strategies used by
// spf, flow and policy to decide, for a given (src, neighbor) hop, which
// of possibly several parallel edges are eligible candidates and what
// cost the path-finding algorithm should use for that hop.
//
// Selection is a tagged variant (Kind + Select dispatch), not function
// pointers: callers pick a Kind (and, for Custom, supply their own
// SelectFunc), and Select switches on it. This keeps zero-value
// Selector{} meaningful (Kind defaults to AllMinCost) and avoids the
// nil-function-pointer footgun of a purely functional design.
//
// Complexity summary:
//
//	Kind                                            Time per hop
//	AllMinCost / SingleMinCost                       O(k)
//	*WithCapRemaining / LoadFactored                 O(k)
//
// where k is the number of parallel edges between the two nodes.
package edgeselect
