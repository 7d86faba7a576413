// Package spf implements shortest-path-first routing: a Dijkstra
// variant that records every equal-cost predecessor edge bundle (ECMP),
// and Yen's algorithm for k-shortest loopless paths built on top of it.
//
// Complexity summary:
//
//	Function   Time              Space
//	Run        O((V+E) log V)    O(V+E)
//	KSP        O(K * V * (V+E) log V)  O(K*V)
package spf
