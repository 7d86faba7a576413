// Package pathresolver derives concrete PathBundles and expands them
// into individual Paths, starting from the predecessor DAG produced by
// spf.Run.
//
// A PathBundle is a loop-free sub-DAG from src to dst at a fixed total
// cost: every node and edge on some shortest path is a member. ResolvePaths
// expands that DAG into individual simple paths via an explicit
// backtracking stack (no recursion, so arbitrarily deep graphs cannot
// overflow the Go call stack), with an optional Cartesian expansion
// over parallel edges within each hop.
package pathresolver
