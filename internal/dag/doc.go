// Package dag holds the workspace dependency graph and everything derived
// from it: strongly connected components, the stage plan, and the dependency
// closure of a single package.
//
// Nodes are package names. An edge A -> B means "B declares A as a
// dependency", so walking edges from the sources visits packages in build
// order. A cycle is a strongly connected component with two or more members;
// when any exists the planner emits no stages at all.
package dag
